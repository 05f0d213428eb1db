package session

import (
	"context"
	"sync"

	"github.com/yungbote/rango-rater-backend/internal/domain/rating"
	"github.com/yungbote/rango-rater-backend/internal/platform/logger"
)

// Question is the queue's view of one stored rating row.
type Question struct {
	ID         int64  `json:"id"`
	ActivityID int64  `json:"activity_id"`
	Activity   string `json:"activity"`
	Topic      string `json:"topic"`
	Question   string `json:"question"`
	Rating     int    `json:"rating"`
}

func (q Question) Rated() bool { return q.Rating != rating.Unrated }

// Writer persists one rating value.
type Writer interface {
	UpdateRating(ctx context.Context, questionID int64, value int) error
}

type WriterFunc func(ctx context.Context, questionID int64, value int) error

func (f WriterFunc) UpdateRating(ctx context.Context, questionID int64, value int) error {
	return f(ctx, questionID, value)
}

// Snapshot is an immutable copy of the queue state.
type Snapshot struct {
	Unrated []Question `json:"unrated"`
	Rated   []Question `json:"rated"`
	// Current is the head of Unrated, the question the user is asked next.
	Current       *Question     `json:"current"`
	CurrentRating int           `json:"current_rating"`
	Pending       map[int64]int `json:"pending"`
	ScaleLabels   []string      `json:"scale_labels"`
}

// Derive splits list into unrated and rated questions, both in list order.
// Every question lands in exactly one of the two.
func Derive(list []Question) (unrated []Question, rated []Question) {
	unrated = make([]Question, 0, len(list))
	rated = make([]Question, 0, len(list))
	for _, q := range list {
		if q.Rated() {
			rated = append(rated, q)
		} else {
			unrated = append(unrated, q)
		}
	}
	return unrated, rated
}

// Queue holds one user's questions. The list is the only state the views are
// derived from; it changes only after a store write succeeds.
type Queue struct {
	mu      sync.Mutex
	writer  Writer
	log     *logger.Logger
	list    []Question
	pending map[int64]int
	// currentRating mirrors the stars shown for the head question.
	currentRating int
}

func NewQueue(writer Writer, log *logger.Logger, list []Question) *Queue {
	q := &Queue{
		writer: writer,
		log:    log.With("component", "session.Queue"),
	}
	q.reset(list)
	return q
}

// Reload replaces the list with a fresh read from the store and drops staged ratings.
func (q *Queue) Reload(list []Question) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.reset(list)
}

func (q *Queue) reset(list []Question) {
	q.list = append([]Question(nil), list...)
	q.pending = make(map[int64]int, len(list))
	for _, item := range q.list {
		if item.Rated() {
			q.pending[item.ID] = item.Rating
		}
	}
	q.currentRating = rating.Unrated
}

func (q *Queue) indexOf(id int64) int {
	for i := range q.list {
		if q.list[i].ID == id {
			return i
		}
	}
	return -1
}

// Contains reports whether questionID belongs to this queue.
func (q *Queue) Contains(questionID int64) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.indexOf(questionID) >= 0
}

func (q *Queue) head() *Question {
	for i := range q.list {
		if !q.list[i].Rated() {
			return &q.list[i]
		}
	}
	return nil
}

func (q *Queue) Snapshot() Snapshot {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.snapshotLocked()
}

func (q *Queue) snapshotLocked() Snapshot {
	unrated, rated := Derive(q.list)
	snap := Snapshot{
		Unrated:       unrated,
		Rated:         rated,
		CurrentRating: q.currentRating,
		Pending:       make(map[int64]int, len(q.pending)),
		ScaleLabels:   append([]string(nil), rating.ScaleLabels[:]...),
	}
	if len(unrated) > 0 {
		head := unrated[0]
		snap.Current = &head
	}
	for id, v := range q.pending {
		snap.Pending[id] = v
	}
	return snap
}

// RecordPendingRating stages value for questionID without touching the store.
func (q *Queue) RecordPendingRating(questionID int64, value int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending[questionID] = value
	if h := q.head(); h != nil && h.ID == questionID {
		q.currentRating = value
	}
}

// SubmitRating writes the staged value for questionID. It reports whether the
// list changed. Without a staged value it does nothing. On a failed write the
// question keeps its previous rating and the error is returned after logging.
func (q *Queue) SubmitRating(ctx context.Context, questionID int64, isFirstUnrated bool) (bool, error) {
	q.mu.Lock()
	value, ok := q.pending[questionID]
	h := q.head()
	wasHead := h != nil && h.ID == questionID
	q.mu.Unlock()
	if !ok {
		q.log.Debug("No staged rating; nothing to submit", "question_id", questionID)
		return false, nil
	}

	if err := q.writer.UpdateRating(ctx, questionID, value); err != nil {
		q.log.Warn("Rating write failed; question left unchanged",
			"question_id", questionID,
			"rating", value,
			"error", err,
		)
		return false, err
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	i := q.indexOf(questionID)
	if i < 0 {
		return false, nil
	}
	q.list[i].Rating = value
	// Only popping the head clears the stars shown for it.
	if isFirstUnrated && wasHead {
		q.currentRating = rating.Unrated
	}
	return true, nil
}
