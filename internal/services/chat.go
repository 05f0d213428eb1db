package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/yungbote/rango-rater-backend/internal/data/repos"
	types "github.com/yungbote/rango-rater-backend/internal/domain"
	"github.com/yungbote/rango-rater-backend/internal/modules/session"
	"github.com/yungbote/rango-rater-backend/internal/observability"
	"github.com/yungbote/rango-rater-backend/internal/pkg/dbctx"
	apperrors "github.com/yungbote/rango-rater-backend/internal/pkg/errors"
	"github.com/yungbote/rango-rater-backend/internal/platform/ctxutil"
	"github.com/yungbote/rango-rater-backend/internal/platform/logger"
)

// ChatService keeps one rating queue per signed-in user. The caller is taken
// from the request data on ctx.
type ChatService interface {
	// Queue reloads the caller's questions from the store and returns the derived views.
	Queue(ctx context.Context) (session.Snapshot, error)
	RecordPending(ctx context.Context, questionID int64, value int) (session.Snapshot, error)
	// Submit writes the staged rating of questionID. applied is false when nothing
	// was staged or the write failed.
	Submit(ctx context.Context, questionID int64, firstUnrated bool) (applied bool, snap session.Snapshot, err error)
}

// DefaultMaxQueues caps how many users keep an in-memory queue.
const DefaultMaxQueues = 10000

type queueEntry struct {
	queue    *session.Queue
	lastUsed time.Time
}

type chatService struct {
	log        *logger.Logger
	ratingRepo repos.RatingRepo
	maxQueues  int
	now        func() time.Time

	mu     sync.Mutex
	queues map[int64]*queueEntry
}

func NewChatService(log *logger.Logger, ratingRepo repos.RatingRepo) ChatService {
	return &chatService{
		log:        log.With("service", "ChatService"),
		ratingRepo: ratingRepo,
		maxQueues:  DefaultMaxQueues,
		now:        time.Now,
		queues:     map[int64]*queueEntry{},
	}
}

func (cs *chatService) Queue(ctx context.Context) (session.Snapshot, error) {
	userID := ctxutil.UserID(ctx)
	if userID == 0 {
		return session.Snapshot{}, apperrors.ErrUnauthorized
	}
	list, err := cs.load(ctx, userID)
	if err != nil {
		cs.forget(userID)
		return session.Snapshot{}, err
	}
	q := cs.queueFor(userID, list)
	q.Reload(list)
	return q.Snapshot(), nil
}

func (cs *chatService) RecordPending(ctx context.Context, questionID int64, value int) (session.Snapshot, error) {
	q, err := cs.current(ctx)
	if err != nil {
		return session.Snapshot{}, err
	}
	if !q.Contains(questionID) {
		return q.Snapshot(), fmt.Errorf("question %d: %w", questionID, apperrors.ErrNotFound)
	}
	q.RecordPendingRating(questionID, value)
	return q.Snapshot(), nil
}

func (cs *chatService) Submit(ctx context.Context, questionID int64, firstUnrated bool) (bool, session.Snapshot, error) {
	q, err := cs.current(ctx)
	if err != nil {
		return false, session.Snapshot{}, err
	}
	if !q.Contains(questionID) {
		return false, q.Snapshot(), fmt.Errorf("question %d: %w", questionID, apperrors.ErrNotFound)
	}
	applied, err := q.SubmitRating(ctx, questionID, firstUnrated)
	m := observability.Current()
	switch {
	case err != nil:
		m.IncRatingSubmission("failed")
	case applied:
		m.IncRatingSubmission("applied")
	default:
		m.IncRatingSubmission("noop")
	}
	return applied, q.Snapshot(), err
}

// current returns the caller's queue, loading it from the store on first use.
func (cs *chatService) current(ctx context.Context) (*session.Queue, error) {
	userID := ctxutil.UserID(ctx)
	if userID == 0 {
		return nil, apperrors.ErrUnauthorized
	}
	cs.mu.Lock()
	e := cs.queues[userID]
	if e != nil {
		e.lastUsed = cs.now()
	}
	cs.mu.Unlock()
	if e != nil {
		return e.queue, nil
	}
	list, err := cs.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return cs.queueFor(userID, list), nil
}

// queueFor returns the existing queue for userID or registers a new one built from list.
func (cs *chatService) queueFor(userID int64, list []session.Question) *session.Queue {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if e := cs.queues[userID]; e != nil {
		e.lastUsed = cs.now()
		return e.queue
	}
	if cs.maxQueues > 0 && len(cs.queues) >= cs.maxQueues {
		cs.evictOldestLocked()
	}
	q := session.NewQueue(cs.writer(), cs.log, list)
	cs.queues[userID] = &queueEntry{queue: q, lastUsed: cs.now()}
	return q
}

// forget drops the caller's queue so the next request rebuilds it from the store.
func (cs *chatService) forget(userID int64) {
	cs.mu.Lock()
	delete(cs.queues, userID)
	cs.mu.Unlock()
}

func (cs *chatService) evictOldestLocked() {
	var (
		oldestID int64
		oldest   time.Time
		found    bool
	)
	for id, e := range cs.queues {
		if !found || e.lastUsed.Before(oldest) {
			oldestID, oldest, found = id, e.lastUsed, true
		}
	}
	if found {
		delete(cs.queues, oldestID)
		cs.log.Debug("Evicted idle rating queue", "user_id", oldestID)
	}
}

func (cs *chatService) writer() session.Writer {
	return session.WriterFunc(func(ctx context.Context, questionID int64, value int) error {
		return cs.ratingRepo.UpdateRating(dbctx.Context{Ctx: ctx}, questionID, value)
	})
}

func (cs *chatService) load(ctx context.Context, userID int64) ([]session.Question, error) {
	rows, err := cs.ratingRepo.ListByUser(dbctx.Context{Ctx: ctx}, userID)
	if err != nil {
		cs.log.Warn("Failed to load questions", "user_id", userID, "error", err)
		return nil, err
	}
	return toSessionQuestions(rows), nil
}

func toSessionQuestions(rows []*types.RatingQuestion) []session.Question {
	out := make([]session.Question, 0, len(rows))
	for _, r := range rows {
		if r == nil {
			continue
		}
		q := session.Question{
			ID:         r.ID,
			ActivityID: r.ActivityID,
			Topic:      r.Topic,
			Question:   r.Question,
			Rating:     r.Rating,
		}
		if r.Activity != nil {
			q.Activity = r.Activity.Label
		}
		out = append(out, q)
	}
	return out
}
