package retry

import (
	"context"
	"fmt"
	"time"
)

// Policy bounds a retry loop.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	// Retryable decides whether err is worth another attempt. A nil
	// Retryable retries every error.
	Retryable func(err error) bool
}

// Do runs fn until it succeeds, returns a non-retryable error, or the
// attempts run out. The last error is returned wrapped with the attempt count.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err
		if p.Retryable != nil && !p.Retryable(err) {
			return err
		}
		if attempt == attempts-1 {
			break
		}
		if waitErr := Wait(ctx, FullJitter(Exponential(p.BaseDelay, attempt))); waitErr != nil {
			return fmt.Errorf("retry wait interrupted: %w", waitErr)
		}
	}
	return fmt.Errorf("after %d attempts: %w", attempts, lastErr)
}
