package gcp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"google.golang.org/api/calendar/v3"

	apperrors "github.com/yungbote/rango-rater-backend/internal/pkg/errors"
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

func TestFilterGmailSummaries(t *testing.T) {
	events := []*calendar.Event{
		{Summary: "Flight to Rome", EventType: EventTypeFromGmail},
		{Summary: "Team standup", EventType: "default"},
		nil,
		{Summary: "  ", EventType: EventTypeFromGmail},
		{Summary: "Colosseum Tour", EventType: EventTypeFromGmail},
		{Summary: "Flight to Rome", EventType: EventTypeFromGmail},
	}
	got := FilterGmailSummaries(events)
	want := []string{"Flight to Rome", "Colosseum Tour", "Flight to Rome"}
	if len(got) != len(want) {
		t.Fatalf("FilterGmailSummaries: expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("FilterGmailSummaries[%d]: expected %q, got %q", i, want[i], got[i])
		}
	}
	if out := FilterGmailSummaries(nil); len(out) != 0 {
		t.Fatalf("FilterGmailSummaries(nil): expected empty, got %v", out)
	}
}

func TestCalendarEventSummaries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/calendars/primary/events") {
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer user-token" {
			t.Errorf("unexpected auth header %q", got)
		}
		q := r.URL.Query()
		if q.Get("singleEvents") != "true" || q.Get("orderBy") != "startTime" {
			t.Errorf("unexpected query %v", q)
		}
		if q.Get("timeMin") == "" || q.Get("timeMax") == "" {
			t.Errorf("missing time window: %v", q)
		}
		w.Header().Set("Content-Type", "application/json")
		if q.Get("pageToken") == "" {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"items": []any{
					map[string]any{"summary": "Museum Visit", "eventType": "fromGmail"},
					map[string]any{"summary": "Dentist", "eventType": "default"},
				},
				"nextPageToken": "p2",
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"items": []any{
				map[string]any{"summary": "Park Tour", "eventType": "fromGmail"},
			},
		})
	}))
	defer srv.Close()

	cal, err := NewCalendar(testLogger(t), Config{CalendarEndpoint: srv.URL + "/calendar/v3/"})
	if err != nil {
		t.Fatalf("NewCalendar: %v", err)
	}
	now := time.Now()
	got, err := cal.EventSummaries(context.Background(), "user-token", now.AddDate(0, 0, -30), now)
	if err != nil {
		t.Fatalf("EventSummaries: %v", err)
	}
	if len(got) != 2 || got[0] != "Museum Visit" || got[1] != "Park Tour" {
		t.Fatalf("EventSummaries: unexpected %v", got)
	}
}

func TestCalendarEventSummariesErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":401,"message":"invalid credentials"}}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	cal, err := NewCalendar(testLogger(t), Config{CalendarEndpoint: srv.URL + "/calendar/v3/"})
	if err != nil {
		t.Fatalf("NewCalendar: %v", err)
	}
	_, err = cal.EventSummaries(context.Background(), "expired", time.Now().Add(-time.Hour), time.Now())
	if !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Fatalf("EventSummaries: expected ErrUnauthorized, got %v", err)
	}

	_, err = cal.EventSummaries(context.Background(), " ", time.Now().Add(-time.Hour), time.Now())
	if !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Fatalf("EventSummaries (no token): expected ErrUnauthorized, got %v", err)
	}
}
