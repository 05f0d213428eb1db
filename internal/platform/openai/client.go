package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/yungbote/rango-rater-backend/internal/observability"
	"github.com/yungbote/rango-rater-backend/internal/pkg/httpx"
	"github.com/yungbote/rango-rater-backend/internal/platform/envutil"
	"github.com/yungbote/rango-rater-backend/internal/platform/logger"
	"github.com/yungbote/rango-rater-backend/internal/platform/promptstyle"
)

// Client is the subset of the OpenAI Responses API used for classification and question generation.
type Client interface {
	// GenerateJSON returns the raw JSON text produced under a strict json_schema format.
	GenerateJSON(ctx context.Context, system string, user string, schemaName string, schema map[string]any) (json.RawMessage, error)
	GenerateText(ctx context.Context, system string, user string) (string, error)
}

type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Timeout     time.Duration
	MaxRetries  int
	Temperature *float64
}

// ConfigFromEnv reads OPENAI_* variables. OPENAI_TEMPERATURE=off omits the parameter.
func ConfigFromEnv() Config {
	cfg := Config{
		APIKey:     envutil.String("OPENAI_API_KEY", ""),
		BaseURL:    envutil.String("OPENAI_BASE_URL", "https://api.openai.com"),
		Model:      envutil.String("OPENAI_MODEL", "gpt-4o-mini"),
		Timeout:    envutil.Duration("OPENAI_TIMEOUT_SECONDS", 60*time.Second),
		MaxRetries: envutil.Int("OPENAI_MAX_RETRIES", 3),
	}
	raw := strings.ToLower(envutil.String("OPENAI_TEMPERATURE", "0.2"))
	switch raw {
	case "off", "none", "nil", "false":
	default:
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			cfg.Temperature = &f
		}
	}
	return cfg
}

type client struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	maxRetries int
	retryBase  time.Duration

	temperature *float64

	// Models that rejected the temperature parameter once are sent without it afterwards.
	noTempMu   sync.RWMutex
	noTempSeen map[string]bool
}

func NewClient(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("missing OPENAI_API_KEY")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "gpt-4o-mini"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &client{
		log:         log.With("service", "OpenAIClient"),
		baseURL:     baseURL,
		apiKey:      apiKey,
		model:       model,
		httpClient:  &http.Client{Timeout: timeout},
		maxRetries:  maxRetries,
		retryBase:   time.Second,
		temperature: cfg.Temperature,
		noTempSeen:  map[string]bool{},
	}, nil
}

type openAIHTTPError struct {
	StatusCode int
	Body       string
}

func (e *openAIHTTPError) Error() string {
	return fmt.Sprintf("openai http %d: %s", e.StatusCode, e.Body)
}

func (e *openAIHTTPError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

func isUnsupportedTemperatureParam(err error) bool {
	var httpErr *openAIHTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusBadRequest {
		return false
	}
	msg := strings.ToLower(httpErr.Body)
	if !strings.Contains(msg, "temperature") {
		return false
	}
	for _, frag := range []string{"unsupported", "unknown parameter", "unrecognized", "not supported", "does not support", "only the default"} {
		if strings.Contains(msg, frag) {
			return true
		}
	}
	return false
}

func (c *client) modelIsNoTemp(model string) bool {
	c.noTempMu.RLock()
	defer c.noTempMu.RUnlock()
	return c.noTempSeen[strings.ToLower(model)]
}

func (c *client) noteNoTempModel(model string) {
	c.noTempMu.Lock()
	c.noTempSeen[strings.ToLower(model)] = true
	c.noTempMu.Unlock()
	c.log.Warn("Model rejected temperature; omitting it from now on", "model", model)
}

func (c *client) applyTemperature(req *responsesRequest) {
	if req == nil || c.temperature == nil || c.modelIsNoTemp(req.Model) {
		return
	}
	req.Temperature = c.temperature
}

func (c *client) doOnce(ctx context.Context, method, path string, body any) (*http.Response, []byte, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}

	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return resp, nil, readErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, raw, &openAIHTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return resp, raw, nil
}

func (c *client) do(ctx context.Context, method, path string, body any, out any) error {
	backoff := c.retryBase
	start := time.Now()

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		resp, raw, err := c.doOnce(ctx, method, path, body)
		if err == nil {
			observability.Current().ObserveExternalCall("openai", "ok", time.Since(start))
			if out == nil {
				return nil
			}
			if uErr := json.Unmarshal(raw, out); uErr != nil {
				return fmt.Errorf("openai decode error: %w", uErr)
			}
			return nil
		}

		if !httpx.IsRetryableError(err) || attempt == c.maxRetries {
			observability.Current().ObserveExternalCall("openai", "error", time.Since(start))
			return err
		}

		sleepFor := httpx.RetryAfterDuration(resp, backoff, 10*time.Second)
		sleepFor = httpx.JitterSleep(sleepFor)

		c.log.Warn("OpenAI request retrying",
			"path", path,
			"attempt", attempt+1,
			"max_retries", c.maxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)

		if err := httpx.SleepContext(ctx, sleepFor); err != nil {
			return err
		}
		backoff *= 2
	}

	return fmt.Errorf("unreachable retry loop")
}

// doResponses retries exactly once without temperature if the model rejects it.
func (c *client) doResponses(ctx context.Context, req *responsesRequest, out any) error {
	err := c.do(ctx, http.MethodPost, "/v1/responses", req, out)
	if err == nil || req.Temperature == nil || !isUnsupportedTemperatureParam(err) {
		return err
	}
	c.noteNoTempModel(req.Model)
	req.Temperature = nil
	return c.do(ctx, http.MethodPost, "/v1/responses", req, out)
}

type inputMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responsesRequest struct {
	Model string         `json:"model"`
	Input []inputMessage `json:"input"`

	Text struct {
		Format map[string]any `json:"format,omitempty"`
	} `json:"text,omitempty"`

	Temperature *float64 `json:"temperature,omitempty"`
}

type responsesResponse struct {
	Output []struct {
		Type    string `json:"type"`
		Role    string `json:"role,omitempty"`
		Content []struct {
			Type    string `json:"type"`
			Text    string `json:"text,omitempty"`
			Refusal string `json:"refusal,omitempty"`
		} `json:"content,omitempty"`
	} `json:"output"`
	Refusal string `json:"refusal,omitempty"`
}

func extractOutputText(resp responsesResponse) (string, string) {
	var out strings.Builder
	refusal := resp.Refusal
	for _, item := range resp.Output {
		if item.Type != "message" || item.Role != "assistant" {
			continue
		}
		for _, c := range item.Content {
			switch {
			case c.Type == "output_text" && c.Text != "":
				out.WriteString(c.Text)
			case c.Type == "refusal" && c.Refusal != "":
				refusal = c.Refusal
			}
		}
	}
	return out.String(), refusal
}

func (c *client) GenerateJSON(ctx context.Context, system string, user string, schemaName string, schema map[string]any) (json.RawMessage, error) {
	if schemaName == "" {
		return nil, errors.New("schemaName required")
	}
	if schema == nil {
		return nil, errors.New("schema required")
	}

	req := responsesRequest{
		Model: c.model,
		Input: []inputMessage{
			{Role: "system", Content: promptstyle.ApplySystem(system, "json")},
			{Role: "user", Content: user},
		},
	}
	c.applyTemperature(&req)
	req.Text.Format = map[string]any{
		"type":   "json_schema",
		"name":   schemaName,
		"schema": schema,
		"strict": true,
	}

	var resp responsesResponse
	if err := c.doResponses(ctx, &req, &resp); err != nil {
		return nil, err
	}
	text, refusal := extractOutputText(resp)
	if refusal != "" {
		return nil, fmt.Errorf("model refused: %s", refusal)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("no output_text found in response")
	}
	if !json.Valid([]byte(text)) {
		return nil, fmt.Errorf("model output is not valid JSON: %.200s", text)
	}
	return json.RawMessage(text), nil
}

func (c *client) GenerateText(ctx context.Context, system string, user string) (string, error) {
	req := responsesRequest{
		Model: c.model,
		Input: []inputMessage{
			{Role: "system", Content: promptstyle.ApplySystem(system, "text")},
			{Role: "user", Content: user},
		},
	}
	c.applyTemperature(&req)

	var resp responsesResponse
	if err := c.doResponses(ctx, &req, &resp); err != nil {
		return "", err
	}
	text, refusal := extractOutputText(resp)
	if refusal != "" {
		return "", fmt.Errorf("model refused: %s", refusal)
	}
	return strings.TrimSpace(text), nil
}
