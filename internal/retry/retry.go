package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"
)

// Config controls how Do spaces and bounds its attempts.
type Config struct {
	Attempts  int
	BaseDelay time.Duration
	MaxDelay  time.Duration
	Jitter    time.Duration
	// Backoff doubles the delay after every failed attempt. Without it every wait is BaseDelay.
	Backoff bool
	// Retryable decides whether an error is worth another attempt. Nil retries everything.
	Retryable func(error) bool
}

// DelayError lets an attempt request a specific wait before the next one,
// e.g. until a rate limit window resets.
type DelayError struct {
	Err   error
	After time.Duration
}

func (e *DelayError) Error() string {
	return e.Err.Error()
}

func (e *DelayError) Unwrap() error {
	return e.Err
}

// After wraps err so that Do waits d before retrying.
func After(err error, d time.Duration) error {
	return &DelayError{Err: err, After: d}
}

func Do(ctx context.Context, config Config, fn func() error) error {
	attempts := config.Attempts
	if attempts <= 0 {
		attempts = 1
	}
	baseDelay := config.BaseDelay
	if baseDelay <= 0 {
		baseDelay = 200 * time.Millisecond
	}
	maxDelay := config.MaxDelay
	if maxDelay <= 0 {
		maxDelay = 2 * time.Second
	}
	if maxDelay < baseDelay {
		maxDelay = baseDelay
	}

	var lastErr error
	delay := baseDelay
	for attempt := 0; attempt < attempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if config.Retryable != nil && !config.Retryable(err) {
			return err
		}
		if attempt == attempts-1 {
			break
		}

		sleep := delay
		if config.Jitter > 0 {
			sleep += time.Duration(rand.Int63n(int64(config.Jitter)))
		}
		if sleep > maxDelay {
			sleep = maxDelay
		}
		var delayErr *DelayError
		if errors.As(err, &delayErr) && delayErr.After > 0 {
			sleep = min(delayErr.After, maxDelay)
		}
		if err := Wait(ctx, sleep); err != nil {
			return err
		}
		if config.Backoff {
			delay = min(delay*2, maxDelay)
		}
	}
	return fmt.Errorf("retry failed after %d attempts: %w", attempts, lastErr)
}

// Wait blocks for d or until ctx is done.
func Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
