package services

import (
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/yungbote/rango-rater-backend/internal/data/repos"
	jobsrepo "github.com/yungbote/rango-rater-backend/internal/data/repos/jobs"
	types "github.com/yungbote/rango-rater-backend/internal/domain"
	"github.com/yungbote/rango-rater-backend/internal/domain/jobs"
	"github.com/yungbote/rango-rater-backend/internal/domain/rating"
	"github.com/yungbote/rango-rater-backend/internal/observability"
	"github.com/yungbote/rango-rater-backend/internal/pkg/dbctx"
	apperrors "github.com/yungbote/rango-rater-backend/internal/pkg/errors"
	"github.com/yungbote/rango-rater-backend/internal/platform/logger"
)

// QuestionScope decides when an activity that already exists gets questions.
type QuestionScope string

const (
	// ScopeActivity generates questions only when the activity row is new.
	ScopeActivity QuestionScope = "activity"
	// ScopeUser also generates questions when this user has none for an existing activity.
	ScopeUser QuestionScope = "user"
)

func ParseQuestionScope(s string) QuestionScope {
	if QuestionScope(strings.ToLower(strings.TrimSpace(s))) == ScopeUser {
		return ScopeUser
	}
	return ScopeActivity
}

type IngestionService interface {
	// IngestActivities stores labels as activities and their generated questions for
	// userID inside one transaction. It returns the ids of the activities that got
	// questions in this call. Any failure rolls back every row of the call and returns
	// an empty list with an error wrapping ErrTransactionAborted.
	IngestActivities(dbc dbctx.Context, labels []string, userID int64) ([]int64, error)
}

type ingestionService struct {
	db           *gorm.DB
	log          *logger.Logger
	activityRepo repos.ActivityRepo
	ratingRepo   repos.RatingRepo
	syncRunRepo  repos.SyncRunRepo
	generator    QuestionGenerator
	scope        QuestionScope
}

func NewIngestionService(
	db *gorm.DB,
	log *logger.Logger,
	activityRepo repos.ActivityRepo,
	ratingRepo repos.RatingRepo,
	syncRunRepo repos.SyncRunRepo,
	generator QuestionGenerator,
	scope QuestionScope,
) IngestionService {
	if scope == "" {
		scope = ScopeActivity
	}
	return &ingestionService{
		db:           db,
		log:          log.With("service", "IngestionService"),
		activityRepo: activityRepo,
		ratingRepo:   ratingRepo,
		syncRunRepo:  syncRunRepo,
		generator:    generator,
		scope:        scope,
	}
}

func (s *ingestionService) IngestActivities(dbc dbctx.Context, labels []string, userID int64) ([]int64, error) {
	ctx, span := observability.StartSpan(dbc.Context(), "ingestion.IngestActivities",
		attribute.Int("labels", len(labels)),
		attribute.String("scope", string(s.scope)),
	)
	defer span.End()
	dbc.Ctx = ctx

	if userID == 0 {
		return []int64{}, fmt.Errorf("ingest: missing user: %w", apperrors.ErrInvalidArgument)
	}
	if len(labels) == 0 {
		s.record(dbc, userID, labels, nil, jobs.SyncOutcomeEmpty, nil)
		return []int64{}, nil
	}

	var (
		activityIDs []int64
		questions   int64
	)
	err := dbc.DB(s.db).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: ctx, Tx: tx}
		activityIDs = activityIDs[:0]
		questions = 0
		seen := make(map[string]struct{}, len(labels))

		for _, raw := range labels {
			label := strings.TrimSpace(raw)
			if label == "" {
				continue
			}
			if _, dup := seen[label]; dup {
				continue
			}
			seen[label] = struct{}{}

			created, err := s.activityRepo.InsertIgnore(inner, label)
			if err != nil {
				return err
			}
			activityID, err := s.activityRepo.GetIDByLabel(inner, label)
			if err != nil {
				return err
			}
			if !created {
				if s.scope != ScopeUser {
					continue
				}
				n, err := s.ratingRepo.CountForUserActivity(inner, userID, activityID)
				if err != nil {
					return err
				}
				if n > 0 {
					continue
				}
			}
			activityIDs = append(activityIDs, activityID)

			items, err := s.generator.GenerateQuestions(ctx, label)
			if err != nil {
				return fmt.Errorf("generate questions for %q: %w", label, err)
			}
			rows := make([]*types.RatingQuestion, 0, len(items))
			for _, it := range items {
				rows = append(rows, &types.RatingQuestion{
					UserID:     userID,
					ActivityID: activityID,
					Topic:      it.Topic,
					Question:   it.Question,
					Rating:     rating.Unrated,
				})
			}
			n, err := s.ratingRepo.InsertIgnoreBatch(inner, rows)
			if err != nil {
				return err
			}
			questions += n
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "rolled back")
		s.log.Error("Ingestion rolled back",
			"user_id", userID,
			"labels", len(labels),
			"error", err,
		)
		observability.Current().IncIngestion(jobs.SyncOutcomeRolledBack, 0)
		s.record(dbc, userID, labels, nil, jobs.SyncOutcomeRolledBack, err)
		return []int64{}, fmt.Errorf("%w: %w", apperrors.ErrTransactionAborted, err)
	}

	out := append([]int64{}, activityIDs...)
	s.log.Info("Ingestion committed",
		"user_id", userID,
		"labels", len(labels),
		"activities", len(out),
		"questions", questions,
	)
	observability.Current().IncIngestion(jobs.SyncOutcomeCommitted, questions)
	s.record(dbc, userID, labels, out, jobs.SyncOutcomeCommitted, nil)
	return out, nil
}

// record appends the audit row after the ingestion transaction has settled.
func (s *ingestionService) record(dbc dbctx.Context, userID int64, labels []string, activityIDs []int64, outcome string, cause error) {
	if s.syncRunRepo == nil {
		return
	}
	run := &types.SyncRun{
		UserID:      userID,
		Labels:      jobsrepo.JSONList(labels),
		ActivityIDs: jobsrepo.JSONList(activityIDs),
		Outcome:     outcome,
	}
	if cause != nil {
		run.Error = cause.Error()
	}
	if _, err := s.syncRunRepo.Create(dbc, run); err != nil {
		s.log.Warn("Failed to record sync run", "user_id", userID, "outcome", outcome, "error", err)
	}
}
