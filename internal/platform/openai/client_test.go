package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/yungbote/rango-rater-backend/internal/platform/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func outputBody(text string) string {
	b, _ := json.Marshal(map[string]any{
		"output": []any{
			map[string]any{
				"type": "message",
				"role": "assistant",
				"content": []any{
					map[string]any{"type": "output_text", "text": text},
				},
			},
		},
	})
	return string(b)
}

func newTestClient(t *testing.T, srv *httptest.Server, temp *float64) *client {
	t.Helper()
	c, err := NewClient(testLogger(t), Config{
		APIKey:      "sk-test",
		BaseURL:     srv.URL,
		Model:       "test-model",
		Timeout:     5 * time.Second,
		MaxRetries:  2,
		Temperature: temp,
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	cc := c.(*client)
	cc.retryBase = time.Millisecond
	return cc
}

func TestGenerateJSON(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path != "/v1/responses" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("unexpected auth header %q", got)
		}
		var req responsesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Text.Format["type"] != "json_schema" || req.Text.Format["strict"] != true {
			t.Errorf("unexpected format %+v", req.Text.Format)
		}
		_, _ = io.WriteString(w, outputBody(`{"activities":["Museum"]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, nil)
	raw, err := c.GenerateJSON(context.Background(), "system", "user", "tourism", map[string]any{"type": "object"})
	if err != nil {
		t.Fatalf("GenerateJSON: %v", err)
	}
	if string(raw) != `{"activities":["Museum"]}` {
		t.Fatalf("GenerateJSON: unexpected output %s", raw)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected 1 call, got %d", calls.Load())
	}
}

func TestGenerateJSONRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, outputBody(`{"ok":true}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, nil)
	if _, err := c.GenerateJSON(context.Background(), "s", "u", "x", map[string]any{}); err != nil {
		t.Fatalf("GenerateJSON: %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 calls, got %d", calls.Load())
	}
}

func TestGenerateJSONDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, nil)
	_, err := c.GenerateJSON(context.Background(), "s", "u", "x", map[string]any{})
	var httpErr *openAIHTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 error, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected 1 call, got %d", calls.Load())
	}
}

func TestGenerateJSONRejectsInvalidOutput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, outputBody(`not json`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, nil)
	if _, err := c.GenerateJSON(context.Background(), "s", "u", "x", map[string]any{}); err == nil {
		t.Fatalf("expected an error for non-JSON output")
	}
}

func TestTemperatureFallback(t *testing.T) {
	var withTemp, withoutTemp atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if strings.Contains(string(body), `"temperature"`) {
			withTemp.Add(1)
			http.Error(w, `{"error":{"message":"Unsupported parameter: 'temperature'"}}`, http.StatusBadRequest)
			return
		}
		withoutTemp.Add(1)
		_, _ = io.WriteString(w, outputBody("hello"))
	}))
	defer srv.Close()

	temp := 0.2
	c := newTestClient(t, srv, &temp)
	for i := 0; i < 2; i++ {
		text, err := c.GenerateText(context.Background(), "s", "u")
		if err != nil {
			t.Fatalf("GenerateText: %v", err)
		}
		if text != "hello" {
			t.Fatalf("GenerateText: unexpected %q", text)
		}
	}
	if withTemp.Load() != 1 || withoutTemp.Load() != 2 {
		t.Fatalf("expected one rejected call then temperature-free calls, got %d/%d", withTemp.Load(), withoutTemp.Load())
	}
}

type failingClient struct {
	calls atomic.Int32
}

func (f *failingClient) GenerateJSON(ctx context.Context, system, user, schemaName string, schema map[string]any) (json.RawMessage, error) {
	f.calls.Add(1)
	return nil, errors.New("boom")
}

func (f *failingClient) GenerateText(ctx context.Context, system, user string) (string, error) {
	f.calls.Add(1)
	return "", errors.New("boom")
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	inner := &failingClient{}
	c := WithBreaker(inner, testLogger(t), BreakerConfig{Name: "ai-test", ConsecutiveFailures: 2, Timeout: time.Minute})

	for i := 0; i < 2; i++ {
		if _, err := c.GenerateJSON(context.Background(), "s", "u", "x", nil); err == nil {
			t.Fatalf("call %d: expected error", i)
		}
	}
	_, err := c.GenerateJSON(context.Background(), "s", "u", "x", nil)
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("expected ErrOpenState, got %v", err)
	}
	if inner.calls.Load() != 2 {
		t.Fatalf("expected the open breaker to skip the inner client, got %d calls", inner.calls.Load())
	}
}

func TestBreakerDisabled(t *testing.T) {
	inner := &failingClient{}
	if c := WithBreaker(inner, testLogger(t), BreakerConfig{}); c != Client(inner) {
		t.Fatalf("expected the inner client when the breaker is disabled")
	}
}
