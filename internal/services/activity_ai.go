package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	redisclient "github.com/yungbote/rango-rater-backend/internal/clients/redis"
	"github.com/yungbote/rango-rater-backend/internal/observability"
	apperrors "github.com/yungbote/rango-rater-backend/internal/pkg/errors"
	"github.com/yungbote/rango-rater-backend/internal/platform/logger"
	"github.com/yungbote/rango-rater-backend/internal/platform/openai"
)

// MaxQuestionsPerActivity caps what the generator may return for one label.
const MaxQuestionsPerActivity = 5

// QuestionItem is one generated (topic, question) pair, in storage order.
type QuestionItem struct {
	Question string `json:"question" validate:"required,max=500"`
	Topic    string `json:"topic" validate:"required,max=200"`
}

// ActivityClassifier narrows calendar labels to tourism activities.
type ActivityClassifier interface {
	FilterToTourism(ctx context.Context, labels []string) ([]string, error)
}

// QuestionGenerator produces rating questions for one activity label.
type QuestionGenerator interface {
	GenerateQuestions(ctx context.Context, label string) ([]QuestionItem, error)
}

// ValidationError is returned when an external payload does not have the expected shape.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "malformed response: " + e.Reason
	}
	return fmt.Sprintf("malformed response: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return apperrors.ErrMalformedResponse }

var payloadValidator = validator.New(validator.WithRequiredStructEnabled())

type tourismPayload struct {
	Activities []string `json:"activities"`
}

// ParseTourismLabels decodes the classifier payload and keeps only labels that were
// part of input, in the classifier's order, without blanks or repeats.
func ParseTourismLabels(raw json.RawMessage, input []string) ([]string, error) {
	var payload tourismPayload
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&payload); err != nil {
		return nil, &ValidationError{Reason: err.Error()}
	}
	if payload.Activities == nil {
		return nil, &ValidationError{Field: "activities", Reason: "missing"}
	}

	allowed := make(map[string]struct{}, len(input))
	for _, l := range input {
		allowed[strings.TrimSpace(l)] = struct{}{}
	}
	out := make([]string, 0, len(payload.Activities))
	seen := map[string]struct{}{}
	for _, l := range payload.Activities {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		if _, ok := allowed[l]; !ok {
			continue
		}
		if _, dup := seen[l]; dup {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out, nil
}

type questionsPayload struct {
	Questions []QuestionItem `json:"questions" validate:"required,dive"`
}

// ParseQuestions decodes the generator payload. Any malformed item rejects the whole
// payload; items past MaxQuestionsPerActivity are dropped.
func ParseQuestions(raw json.RawMessage) ([]QuestionItem, error) {
	var payload questionsPayload
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&payload); err != nil {
		return nil, &ValidationError{Reason: err.Error()}
	}
	for i := range payload.Questions {
		payload.Questions[i].Question = strings.TrimSpace(payload.Questions[i].Question)
		payload.Questions[i].Topic = strings.TrimSpace(payload.Questions[i].Topic)
	}
	if err := payloadValidator.Struct(payload); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return nil, &ValidationError{Field: verrs[0].Namespace(), Reason: verrs[0].Tag()}
		}
		return nil, &ValidationError{Reason: err.Error()}
	}
	if len(payload.Questions) > MaxQuestionsPerActivity {
		payload.Questions = payload.Questions[:MaxQuestionsPerActivity]
	}
	return payload.Questions, nil
}

const classifierSystem = "You filter a traveller's calendar events down to tourism activities."

const generatorSystem = "You write short rating questions for tourism activities."

var tourismSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"activities": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
	},
	"required":             []string{"activities"},
	"additionalProperties": false,
}

var questionsSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"questions": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"question": map[string]any{"type": "string", "description": "question to ask the user"},
					"topic":    map[string]any{"type": "string", "description": "topic of the question"},
				},
				"required":             []string{"question", "topic"},
				"additionalProperties": false,
			},
		},
	},
	"required":             []string{"questions"},
	"additionalProperties": false,
}

// ActivityAI implements both collaborators on top of the OpenAI Responses API.
// Its methods return errors; wrap it with Degrade* for the silent behaviour.
type ActivityAI struct {
	client openai.Client
	log    *logger.Logger
}

func NewActivityAI(client openai.Client, log *logger.Logger) *ActivityAI {
	return &ActivityAI{client: client, log: log.With("service", "ActivityAI")}
}

func (a *ActivityAI) FilterToTourism(ctx context.Context, labels []string) ([]string, error) {
	if len(labels) == 0 {
		return []string{}, nil
	}
	encoded, err := json.Marshal(labels)
	if err != nil {
		return nil, err
	}
	user := fmt.Sprintf("This is a list of events I have attended: %s. "+
		"Filter this list to only events related to tourism, excluding flights. "+
		"Return the matching events exactly as written.", encoded)

	raw, err := a.client.GenerateJSON(ctx, classifierSystem, user, "tourism_events", tourismSchema)
	if err != nil {
		return nil, fmt.Errorf("%w: classifier: %w", apperrors.ErrExternalService, err)
	}
	return ParseTourismLabels(raw, labels)
}

func (a *ActivityAI) GenerateQuestions(ctx context.Context, label string) ([]QuestionItem, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return []QuestionItem{}, nil
	}
	user := fmt.Sprintf("List the top %d topics that a user can review for %q. "+
		"Phrase each topic as a question asking the user to rate it on a scale of 1 (bad) to 5 (great).",
		MaxQuestionsPerActivity, label)

	raw, err := a.client.GenerateJSON(ctx, generatorSystem, user, "rating_questions", questionsSchema)
	if err != nil {
		return nil, fmt.Errorf("%w: generator: %w", apperrors.ErrExternalService, err)
	}
	return ParseQuestions(raw)
}

type degradingClassifier struct {
	inner ActivityClassifier
	log   *logger.Logger
}

// DegradeClassifier turns classifier failures into an empty result. Cancellation still propagates.
func DegradeClassifier(inner ActivityClassifier, log *logger.Logger) ActivityClassifier {
	return &degradingClassifier{inner: inner, log: log.With("service", "ActivityClassifier")}
}

func (d *degradingClassifier) FilterToTourism(ctx context.Context, labels []string) ([]string, error) {
	start := time.Now()
	out, err := d.inner.FilterToTourism(ctx, labels)
	if err == nil {
		observability.Current().ObserveExternalCall("classifier", "ok", time.Since(start))
		return out, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	observability.Current().ObserveExternalCall("classifier", "degraded", time.Since(start))
	d.log.Warn("Classifier failed; continuing with no activities", "labels", len(labels), "error", err)
	return []string{}, nil
}

type degradingGenerator struct {
	inner QuestionGenerator
	log   *logger.Logger
}

// DegradeGenerator turns generator failures into an empty question list. Cancellation still propagates.
func DegradeGenerator(inner QuestionGenerator, log *logger.Logger) QuestionGenerator {
	return &degradingGenerator{inner: inner, log: log.With("service", "QuestionGenerator")}
}

func (d *degradingGenerator) GenerateQuestions(ctx context.Context, label string) ([]QuestionItem, error) {
	start := time.Now()
	out, err := d.inner.GenerateQuestions(ctx, label)
	if err == nil {
		observability.Current().ObserveExternalCall("generator", "ok", time.Since(start))
		return out, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	observability.Current().ObserveExternalCall("generator", "degraded", time.Since(start))
	d.log.Warn("Question generator failed; continuing with no questions", "activity", label, "error", err)
	return []QuestionItem{}, nil
}

type cachedGenerator struct {
	inner QuestionGenerator
	cache redisclient.Cache
	log   *logger.Logger
}

// CacheGenerator serves repeated labels from Redis. Cache errors fall through to inner.
// Empty results are not cached.
func CacheGenerator(inner QuestionGenerator, cache redisclient.Cache, log *logger.Logger) QuestionGenerator {
	if cache == nil {
		return inner
	}
	return &cachedGenerator{inner: inner, cache: cache, log: log.With("service", "QuestionCache")}
}

func (c *cachedGenerator) GenerateQuestions(ctx context.Context, label string) ([]QuestionItem, error) {
	m := observability.Current()
	if raw, ok, err := c.cache.Get(ctx, label); err != nil {
		m.IncQuestionCache("error")
		c.log.Warn("Question cache read failed", "activity", label, "error", err)
	} else if ok {
		if items, perr := ParseQuestions(raw); perr == nil {
			m.IncQuestionCache("hit")
			return items, nil
		}
		m.IncQuestionCache("invalid")
	} else {
		m.IncQuestionCache("miss")
	}

	items, err := c.inner.GenerateQuestions(ctx, label)
	if err != nil || len(items) == 0 {
		return items, err
	}
	raw, merr := json.Marshal(questionsPayload{Questions: items})
	if merr == nil {
		if serr := c.cache.Set(ctx, label, raw); serr != nil {
			c.log.Warn("Question cache write failed", "activity", label, "error", serr)
		}
	}
	return items, nil
}
