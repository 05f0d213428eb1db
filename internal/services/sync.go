package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/singleflight"

	"github.com/yungbote/rango-rater-backend/internal/observability"
	"github.com/yungbote/rango-rater-backend/internal/pkg/dbctx"
	apperrors "github.com/yungbote/rango-rater-backend/internal/pkg/errors"
	"github.com/yungbote/rango-rater-backend/internal/platform/gcp"
	"github.com/yungbote/rango-rater-backend/internal/platform/logger"
)

// DefaultCalendarLookback is how far back a sync reads the calendar.
const DefaultCalendarLookback = 30 * 24 * time.Hour

// sharedSyncTimeout bounds a collapsed sync run, which no longer follows any
// single caller's cancellation.
const sharedSyncTimeout = 2 * time.Minute

// SyncResult is what one calendar sync produced. ActivityIDs is empty when
// nothing new was ingested, including when ingestion rolled back.
type SyncResult struct {
	Labels      []string `json:"labels"`
	ActivityIDs []int64  `json:"activity_ids"`
}

type SyncService interface {
	// FetchLabels returns the Gmail-derived event summaries of the lookback window.
	// Calendar failures yield an empty list.
	FetchLabels(ctx context.Context, accessToken string) []string
	// IngestSummaries classifies summaries and ingests the tourism ones for userID.
	// It shares a run with any in-flight sync of the same user.
	IngestSummaries(ctx context.Context, userID int64, summaries []string) (*SyncResult, error)
	// SyncCalendar runs FetchLabels then IngestSummaries. Concurrent calls for the
	// same user share one run.
	SyncCalendar(ctx context.Context, userID int64, accessToken string) (*SyncResult, error)
}

type syncService struct {
	log        *logger.Logger
	calendar   gcp.Calendar
	classifier ActivityClassifier
	ingestion  IngestionService
	lookback   time.Duration
	now        func() time.Time
	runTimeout time.Duration
	group      singleflight.Group
}

func NewSyncService(
	log *logger.Logger,
	calendar gcp.Calendar,
	classifier ActivityClassifier,
	ingestion IngestionService,
	lookback time.Duration,
) SyncService {
	if lookback <= 0 {
		lookback = DefaultCalendarLookback
	}
	return &syncService{
		log:        log.With("service", "SyncService"),
		calendar:   calendar,
		classifier: classifier,
		ingestion:  ingestion,
		lookback:   lookback,
		now:        time.Now,
		runTimeout: sharedSyncTimeout,
	}
}

func (s *syncService) FetchLabels(ctx context.Context, accessToken string) []string {
	now := s.now()
	labels, err := s.calendar.EventSummaries(ctx, accessToken, now.Add(-s.lookback), now)
	if err != nil {
		s.log.Warn("Calendar fetch failed; continuing with no events", "error", err)
		return []string{}
	}
	return labels
}

func (s *syncService) IngestSummaries(ctx context.Context, userID int64, summaries []string) (*SyncResult, error) {
	if userID == 0 {
		return emptySyncResult(), fmt.Errorf("sync: missing user: %w", apperrors.ErrInvalidArgument)
	}
	if len(summaries) == 0 {
		return emptySyncResult(), nil
	}
	return s.shared(ctx, userID, func(runCtx context.Context) (*SyncResult, error) {
		return s.ingest(runCtx, userID, summaries)
	})
}

func (s *syncService) SyncCalendar(ctx context.Context, userID int64, accessToken string) (*SyncResult, error) {
	if userID == 0 {
		return emptySyncResult(), fmt.Errorf("sync: missing user: %w", apperrors.ErrInvalidArgument)
	}
	return s.shared(ctx, userID, func(runCtx context.Context) (*SyncResult, error) {
		return s.ingest(runCtx, userID, s.FetchLabels(runCtx, accessToken))
	})
}

// shared runs fn once per user at a time. The run is detached from the
// cancellation of whichever caller started it; each caller stops waiting when
// its own ctx is done.
func (s *syncService) shared(ctx context.Context, userID int64, fn func(context.Context) (*SyncResult, error)) (*SyncResult, error) {
	ch := s.group.DoChan(strconv.FormatInt(userID, 10), func() (any, error) {
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.runTimeout)
		defer cancel()
		return fn(runCtx)
	})
	select {
	case <-ctx.Done():
		s.log.Debug("Caller left in-flight calendar sync", "user_id", userID, "error", ctx.Err())
		return emptySyncResult(), ctx.Err()
	case r := <-ch:
		if r.Shared {
			s.log.Debug("Joined in-flight calendar sync", "user_id", userID)
		}
		res, _ := r.Val.(*SyncResult)
		if res == nil {
			res = emptySyncResult()
		}
		return res, r.Err
	}
}

func (s *syncService) ingest(ctx context.Context, userID int64, summaries []string) (*SyncResult, error) {
	ctx, span := observability.StartSpan(ctx, "sync.IngestSummaries",
		attribute.Int64("user_id", userID),
		attribute.Int("summaries", len(summaries)),
	)
	defer span.End()

	res := emptySyncResult()
	if len(summaries) == 0 {
		return res, nil
	}

	labels, err := s.classifier.FilterToTourism(ctx, summaries)
	if err != nil {
		// Only cancellation gets through a degrading classifier.
		return res, err
	}
	res.Labels = labels

	ids, err := s.ingestion.IngestActivities(dbctx.Context{Ctx: ctx}, labels, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrTransactionAborted) {
			s.log.Warn("Ingestion aborted; no activities added", "user_id", userID, "error", err)
			return res, nil
		}
		return res, err
	}
	res.ActivityIDs = ids
	return res, nil
}

func emptySyncResult() *SyncResult {
	return &SyncResult{Labels: []string{}, ActivityIDs: []int64{}}
}
