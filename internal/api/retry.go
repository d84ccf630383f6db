package api

import (
	"context"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"
)

// nonTransient statuses are returned to the caller on the first failure.
var nonTransient = map[int]bool{
	http.StatusBadRequest:   true,
	http.StatusUnauthorized: true,
	http.StatusForbidden:    true,
	http.StatusNotFound:     true,
}

// linearBackoff waits base, 2×base, 3×base, ... between attempts.
func linearBackoff(base time.Duration) retry.Backoff {
	var attempt int64
	return retry.BackoffFunc(func() (time.Duration, bool) {
		attempt++
		return base * time.Duration(attempt), false
	})
}

// Retry calls fn up to maxAttempts times. A failure carrying status 400, 401,
// 403 or 404 stops immediately; any other failure waits baseDelay × attempt
// before the next try. The last error is returned once attempts run out.
// Cancelling ctx aborts a pending wait with ctx.Err().
func Retry[T any](ctx context.Context, maxAttempts int, baseDelay time.Duration, fn func(context.Context) (T, error)) (T, error) {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	backoff := retry.WithMaxRetries(uint64(maxAttempts-1), linearBackoff(baseDelay))

	var result T
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err == nil {
			result = v
			return nil
		}
		if nonTransient[StatusCode(err)] {
			return err
		}
		return retry.RetryableError(err)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}
