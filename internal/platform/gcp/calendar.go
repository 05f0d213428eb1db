package gcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"

	"github.com/yungbote/rango-rater-backend/internal/observability"
	apperrors "github.com/yungbote/rango-rater-backend/internal/pkg/errors"
	"github.com/yungbote/rango-rater-backend/internal/platform/ctxutil"
	"github.com/yungbote/rango-rater-backend/internal/platform/logger"
)

// EventTypeFromGmail marks events Google created from reservation emails.
const EventTypeFromGmail = "fromGmail"

type Calendar interface {
	// EventSummaries lists the primary calendar between from and to and returns the
	// summaries of Gmail-derived events in start time order.
	EventSummaries(ctx context.Context, accessToken string, from, to time.Time) ([]string, error)
}

type calendarService struct {
	log      *logger.Logger
	endpoint string
	pageSize int64
}

func NewCalendar(log *logger.Logger, cfg Config) (Calendar, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &calendarService{
		log:      log.With("service", "gcp.Calendar"),
		endpoint: cfg.CalendarEndpoint,
		pageSize: 250,
	}, nil
}

func (s *calendarService) EventSummaries(ctx context.Context, accessToken string, from, to time.Time) ([]string, error) {
	if strings.TrimSpace(accessToken) == "" {
		return nil, fmt.Errorf("missing access token: %w", apperrors.ErrUnauthorized)
	}
	ctx = ctxutil.Default(ctx)
	start := time.Now()

	svc, err := calendar.NewService(ctx, userClientOptions(accessToken, s.endpoint)...)
	if err != nil {
		return nil, fmt.Errorf("%w: calendar client: %w", apperrors.ErrExternalService, err)
	}

	var events []*calendar.Event
	err = svc.Events.List("primary").
		TimeMin(from.UTC().Format(time.RFC3339)).
		TimeMax(to.UTC().Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(s.pageSize).
		Pages(ctx, func(page *calendar.Events) error {
			events = append(events, page.Items...)
			return nil
		})
	if err != nil {
		observability.Current().ObserveExternalCall("google_calendar", "error", time.Since(start))
		if isAuthError(err) {
			return nil, fmt.Errorf("calendar events: %w: %w", apperrors.ErrUnauthorized, err)
		}
		return nil, fmt.Errorf("%w: calendar events: %w", apperrors.ErrExternalService, err)
	}
	observability.Current().ObserveExternalCall("google_calendar", "ok", time.Since(start))

	summaries := FilterGmailSummaries(events)
	s.log.Debug("Fetched calendar events", "events", len(events), "gmail_events", len(summaries))
	return summaries, nil
}

// FilterGmailSummaries keeps events of type fromGmail with a non-blank summary, in input order.
func FilterGmailSummaries(events []*calendar.Event) []string {
	out := make([]string, 0, len(events))
	for _, ev := range events {
		if ev == nil || ev.EventType != EventTypeFromGmail {
			continue
		}
		summary := strings.TrimSpace(ev.Summary)
		if summary == "" {
			continue
		}
		out = append(out, summary)
	}
	return out
}

func isAuthError(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusUnauthorized || gerr.Code == http.StatusForbidden
	}
	return false
}
