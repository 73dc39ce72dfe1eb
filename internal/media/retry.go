package media

import (
	"context"
	"time"
)

// BackoffFunc returns how long to wait before the given retry attempt.
// Attempts are 1-based; the wait happens after attempt n fails, before n+1.
type BackoffFunc func(attempt int) time.Duration

// ExponentialBackoff doubles the base delay after every failed attempt:
// base, 2*base, 4*base, ...
func ExponentialBackoff(base time.Duration) BackoffFunc {
	return func(attempt int) time.Duration {
		return base << (attempt - 1)
	}
}

// SleepFunc waits for the given duration or until the context is done.
// Tests substitute a recording no-op.
type SleepFunc func(ctx context.Context, d time.Duration) error

// DefaultSleep blocks on a timer, honoring context cancellation
func DefaultSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// RetryPolicy parameterizes any retried upstream call
type RetryPolicy struct {
	MaxAttempts int
	Backoff     BackoffFunc
	Sleep       SleepFunc
}

// DefaultRetryPolicy is the upload pipeline default: 3 attempts,
// exponential backoff starting at one second.
func DefaultRetryPolicy(maxAttempts int) RetryPolicy {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return RetryPolicy{
		MaxAttempts: maxAttempts,
		Backoff:     ExponentialBackoff(time.Second),
		Sleep:       DefaultSleep,
	}
}

// Do runs op up to MaxAttempts times, sleeping per the backoff function
// between attempts. The first success short-circuits; exhausting all
// attempts returns the last error.
func (p RetryPolicy) Do(ctx context.Context, op func() error) error {
	var lastErr error

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = op()
		if lastErr == nil {
			return nil
		}

		if attempt < p.MaxAttempts {
			if err := p.Sleep(ctx, p.Backoff(attempt)); err != nil {
				return err
			}
		}
	}

	return lastErr
}
