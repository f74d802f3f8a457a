// Package retry retries fallible operations with exponential backoff.
package retry

import (
	"context"
	"fmt"
	"time"

	"instant-translator/internal/config"
)

// Policy configures retry behavior.
type Policy struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	BackoffFactor float64
}

// DefaultPolicy returns the default retry configuration.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:   config.DefaultMaxRetries,
		InitialDelay:  config.DefaultRetryDelayBase,
		BackoffFactor: 2.0,
	}
}

// Func is an operation that can be retried.
type Func[T any] func(ctx context.Context) (T, error)

// Do runs fn until it succeeds, attempts run out, or ctx is done.
func Do[T any](ctx context.Context, p Policy, fn Func[T]) (T, error) {
	var zero T
	var lastErr error
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.BackoffFactor < 1 {
		p.BackoffFactor = 1
	}
	delay := p.InitialDelay

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		// Check context before attempt
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		// Wait before retry
		if attempt < p.MaxAttempts {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return zero, ctx.Err()
			case <-timer.C:
			}
			delay = time.Duration(float64(delay) * p.BackoffFactor)
		}
	}

	return zero, fmt.Errorf("failed after %d attempts: %w", p.MaxAttempts, lastErr)
}
