// Package retry provides a fixed-delay retry combinator with a bounded
// attempt count.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrExhausted is returned when every attempt failed. The last attempt's
// error is wrapped alongside it.
var ErrExhausted = errors.New("retry: attempts exhausted")

// Fixed calls fn up to attempts times, sleeping delay between attempts.
// The first nil-error result is returned. Context cancellation aborts the
// wait between attempts. When all attempts fail the zero value is returned
// with an error wrapping both ErrExhausted and the final attempt's error.
func Fixed[T any](ctx context.Context, attempts int, delay time.Duration, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for i := 0; i < attempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(delay):
			}
		}

		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err
	}

	return zero, fmt.Errorf("%w after %d attempts: %w", ErrExhausted, attempts, lastErr)
}
