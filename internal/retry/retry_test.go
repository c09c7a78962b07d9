package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTransient = errors.New("transient")

func TestExponential(t *testing.T) {
	assert.Equal(t, 10*time.Millisecond, Exponential(10*time.Millisecond, 0))
	assert.Equal(t, 80*time.Millisecond, Exponential(10*time.Millisecond, 3))
	assert.Equal(t, 10*time.Millisecond, Exponential(10*time.Millisecond, -4))
	assert.Equal(t, time.Duration(0), Exponential(0, 3))
	assert.Positive(t, Exponential(time.Hour, 200), "saturates instead of overflowing")
}

func TestFullJitter_StaysInRange(t *testing.T) {
	for i := 0; i < 100; i++ {
		d := FullJitter(50 * time.Millisecond)
		assert.GreaterOrEqual(t, d, time.Duration(0))
		assert.Less(t, d, 50*time.Millisecond)
	}
	assert.Equal(t, time.Duration(0), FullJitter(0))
}

func TestDo_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := Do(context.Background(), Policy{MaxAttempts: 4, BaseDelay: time.Millisecond}, func(context.Context) error {
		calls++
		if calls < 3 {
			return errTransient
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_StopsOnNonRetryable(t *testing.T) {
	permanent := errors.New("permanent")
	calls := 0
	err := Do(context.Background(),
		Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, Retryable: func(err error) bool { return errors.Is(err, errTransient) }},
		func(context.Context) error {
			calls++
			return permanent
		})
	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	calls := 0
	err := Do(context.Background(), Policy{MaxAttempts: 3, BaseDelay: time.Millisecond}, func(context.Context) error {
		calls++
		return errTransient
	})
	assert.ErrorIs(t, err, errTransient)
	assert.Contains(t, err.Error(), "after 3 attempts")
	assert.Equal(t, 3, calls)
}

func TestDo_HonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Do(ctx, Policy{MaxAttempts: 5, BaseDelay: time.Second}, func(context.Context) error {
		return errTransient
	})
	assert.ErrorIs(t, err, context.Canceled)
}
