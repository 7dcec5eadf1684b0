package util

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"
)

// ErrRetriesExhausted wraps the last error once every attempt failed.
var ErrRetriesExhausted = errors.New("retries exhausted")

// RetryConfig holds configuration for retry logic
type RetryConfig struct {
	MaxRetries      int
	BaseDelay       time.Duration
	MaxDelay        time.Duration
	ShouldRetryFunc func(error) bool
}

// DefaultRetryConfig provides sensible defaults for retry operations
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 5,
		BaseDelay:  10 * time.Millisecond,
		MaxDelay:   1 * time.Second,
	}
}

// Backoff returns the delay before the given retry (1-based): BaseDelay
// doubled per attempt and capped at MaxDelay, without jitter.
func (c RetryConfig) Backoff(retry int) time.Duration {
	if retry < 1 {
		return 0
	}
	delay := c.BaseDelay
	for i := 1; i < retry; i++ {
		delay *= 2
		if delay >= c.MaxDelay {
			return c.MaxDelay
		}
	}
	return min(delay, c.MaxDelay)
}

// Retry runs operation until it succeeds, returns an error ShouldRetryFunc
// rejects, or MaxRetries retries have failed. Waits use exponential
// backoff with up to 10% jitter and stop early when ctx is done.
func Retry(ctx context.Context, config RetryConfig, operation func() error) error {
	var lastErr error

	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := config.Backoff(attempt)
			delay += time.Duration(rand.Float64() * float64(delay) * 0.1)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		err := operation()
		if err == nil {
			return nil
		}
		lastErr = err

		if config.ShouldRetryFunc == nil || !config.ShouldRetryFunc(err) {
			return err
		}
	}

	return fmt.Errorf("operation failed after %d retries: %w: %w", config.MaxRetries, ErrRetriesExhausted, lastErr)
}
