// Package retry executes operations under an explicit bounded-retry policy.
package retry

import (
	"context"
	"time"
)

// Policy describes how often and how quickly an operation may be retried.
// Retryable decides per error whether another attempt is worthwhile; a nil
// predicate retries every error.
type Policy struct {
	MaxAttempts int
	Delay       time.Duration
	Backoff     float64
	Retryable   func(error) bool
}

// DefaultPolicy matches the storefront's network-call retry behavior.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		Delay:       time.Second,
		Backoff:     1,
	}
}

// Do runs op until it succeeds, the policy is exhausted, the error is not
// retryable, or ctx is done. The last error is returned.
func (p Policy) Do(ctx context.Context, op func(context.Context) error) error {
	maxAttempts := p.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	delay := p.Delay
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}

		if p.Retryable != nil && !p.Retryable(lastErr) {
			return lastErr
		}

		if attempt == maxAttempts {
			break
		}

		if delay > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}

			if p.Backoff > 1 {
				delay = time.Duration(float64(delay) * p.Backoff)
			}
		}
	}

	return lastErr
}

// DoValue is Do for operations that produce a value.
func DoValue[T any](ctx context.Context, p Policy, op func(context.Context) (T, error)) (T, error) {
	var result T
	err := p.Do(ctx, func(ctx context.Context) error {
		var opErr error
		result, opErr = op(ctx)
		return opErr
	})
	return result, err
}
