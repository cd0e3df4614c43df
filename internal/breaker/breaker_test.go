package breaker

import (
	"context"
	"errors"
	"testing"
	"time"

	errx "github.com/Market-intel-core-v1/server/internal/core/error"
	"github.com/Market-intel-core-v1/server/internal/market/model"
	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() model.BreakerConfig {
	return model.BreakerConfig{FailureThreshold: 2, OpenTimeout: time.Minute, Interval: time.Minute, HalfOpenRequests: 1}
}

func TestExecutePassesResult(t *testing.T) {
	b := New[string]("test-ok", time.Second, testConfig())

	got, err := b.Execute(context.Background(), func(ctx context.Context) (string, error) {
		return "label", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "label", got)
	assert.Equal(t, "closed", b.State())
	assert.Equal(t, "test-ok", b.Name())
}

func TestExecuteAppliesTimeout(t *testing.T) {
	b := New[int]("test-timeout", 10*time.Millisecond, testConfig())

	_, err := b.Execute(context.Background(), func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, errx.KindUnavailable, errx.KindOf(err))
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	b := New[int]("test-open", time.Second, testConfig())
	boom := errors.New("upstream down")
	calls := 0
	fail := func(ctx context.Context) (int, error) {
		calls++
		return 0, boom
	}

	for i := 0; i < 2; i++ {
		_, err := b.Execute(context.Background(), fail)
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, errx.KindUnavailable, errx.KindOf(err))
	}
	assert.Equal(t, "open", b.State())

	_, err := b.Execute(context.Background(), fail)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 2, calls)
}

func TestCancelledCallerDoesNotTrip(t *testing.T) {
	b := New[int]("test-cancelled", time.Second, testConfig())

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	for i := 0; i < 5; i++ {
		_, err := b.Execute(cancelled, func(ctx context.Context) (int, error) {
			calls++
			return 0, ctx.Err()
		})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, errx.KindUnavailable, errx.KindOf(err))
	}
	assert.Zero(t, calls)
	assert.Equal(t, "closed", b.State())

	got, err := b.Execute(context.Background(), func(ctx context.Context) (int, error) {
		return 1, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, got)
}

func TestCallerCancelledMidCallDoesNotTrip(t *testing.T) {
	b := New[int]("test-disconnect", time.Second, testConfig())

	for i := 0; i < 5; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		_, err := b.Execute(ctx, func(ctx context.Context) (int, error) {
			cancel()
			<-ctx.Done()
			return 0, ctx.Err()
		})
		assert.ErrorIs(t, err, context.Canceled)
	}
	assert.Equal(t, "closed", b.State())
}

func TestOwnTimeoutStillTrips(t *testing.T) {
	b := New[int]("test-slow", 5*time.Millisecond, testConfig())
	slow := func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	}

	for i := 0; i < 2; i++ {
		_, err := b.Execute(context.Background(), slow)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	}
	assert.Equal(t, "open", b.State())
}
