package openai

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/yungbote/rango-rater-backend/internal/observability"
	"github.com/yungbote/rango-rater-backend/internal/platform/logger"
)

type BreakerConfig struct {
	Name string
	// ConsecutiveFailures opens the breaker. Zero disables the breaker.
	ConsecutiveFailures uint32
	// Timeout is how long the breaker stays open before a trial request.
	Timeout time.Duration
}

type breakerClient struct {
	inner Client
	log   *logger.Logger
	cb    *gobreaker.CircuitBreaker[any]
	name  string
}

// WithBreaker wraps inner so that repeated failures short-circuit with
// gobreaker.ErrOpenState instead of reaching the API.
func WithBreaker(inner Client, log *logger.Logger, cfg BreakerConfig) Client {
	if inner == nil || cfg.ConsecutiveFailures == 0 {
		return inner
	}
	name := cfg.Name
	if name == "" {
		name = "openai"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	bl := log.With("service", "OpenAIBreaker", "breaker", name)
	threshold := cfg.ConsecutiveFailures

	observability.Current().SetBreakerState(name, 0)
	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// Caller cancellation says nothing about the health of the API.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			bl.Warn("Circuit breaker state change", "from", from.String(), "to", to.String())
			observability.Current().SetBreakerState(name, stateToFloat(to))
		},
	})
	return &breakerClient{inner: inner, log: bl, cb: cb, name: name}
}

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateOpen:
		return 1
	case gobreaker.StateHalfOpen:
		return 2
	default:
		return 0
	}
}

func (b *breakerClient) execute(fn func() (any, error)) (any, error) {
	out, err := b.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		observability.Current().ObserveExternalCall(b.name, "rejected", 0)
	}
	return out, err
}

func (b *breakerClient) GenerateJSON(ctx context.Context, system string, user string, schemaName string, schema map[string]any) (json.RawMessage, error) {
	out, err := b.execute(func() (any, error) {
		return b.inner.GenerateJSON(ctx, system, user, schemaName, schema)
	})
	if err != nil {
		return nil, err
	}
	raw, _ := out.(json.RawMessage)
	return raw, nil
}

func (b *breakerClient) GenerateText(ctx context.Context, system string, user string) (string, error) {
	out, err := b.execute(func() (any, error) {
		return b.inner.GenerateText(ctx, system, user)
	})
	if err != nil {
		return "", err
	}
	text, _ := out.(string)
	return text, nil
}
