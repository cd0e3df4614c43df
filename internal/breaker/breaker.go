// Package breaker wraps calls to external collaborators in a circuit breaker
// and a per-call timeout. An open breaker fails fast so callers reach their
// fallback without waiting on a dead upstream.
package breaker

import (
	"context"
	"errors"
	"time"

	errx "github.com/Market-intel-core-v1/server/internal/core/error"
	"github.com/Market-intel-core-v1/server/internal/market/model"
	"github.com/Market-intel-core-v1/server/internal/metrics"
	logx "github.com/Market-intel-core-v1/server/pkg/logger"
	gobreaker "github.com/sony/gobreaker/v2"
)

// Breaker guards one external service.
type Breaker[T any] struct {
	name    string
	timeout time.Duration
	cb      *gobreaker.CircuitBreaker[T]
}

// New builds a breaker that opens after cfg.FailureThreshold consecutive failures.
func New[T any](name string, timeout time.Duration, cfg model.BreakerConfig) *Breaker[T] {
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}
	metrics.BreakerState.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.HalfOpenRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.OpenTimeout,
		IsSuccessful: func(err error) bool {
			var gone *callerGone
			return err == nil || errors.As(err, &gone)
		},
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logx.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
			metrics.BreakerState.WithLabelValues(name).Set(stateValue(to))
		},
	})

	return &Breaker[T]{name: name, timeout: timeout, cb: cb}
}

// Execute runs fn under the breaker with the configured timeout applied to ctx.
// Failures come back as errx.Unavailable. Errors caused by the caller's own
// context ending are returned but never counted against the upstream.
func (b *Breaker[T]) Execute(ctx context.Context, fn func(ctx context.Context) (T, error)) (T, error) {
	if err := ctx.Err(); err != nil {
		var zero T
		return zero, errx.Unavailable(b.name, err)
	}

	v, err := b.cb.Execute(func() (T, error) {
		callCtx := ctx
		if b.timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, b.timeout)
			defer cancel()
		}
		v, err := fn(callCtx)
		if err != nil && ctx.Err() != nil {
			return v, &callerGone{err: err}
		}
		return v, err
	})
	if err != nil {
		var gone *callerGone
		if errors.As(err, &gone) {
			err = gone.err
		}
		return v, errx.Unavailable(b.name, err)
	}
	return v, nil
}

// callerGone marks an error raised after the caller's context ended.
type callerGone struct {
	err error
}

func (e *callerGone) Error() string { return e.err.Error() }

func (e *callerGone) Unwrap() error { return e.err }

// State reports the breaker state name, e.g. "closed" or "open".
func (b *Breaker[T]) State() string {
	return b.cb.State().String()
}

func (b *Breaker[T]) Name() string {
	return b.name
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
