package fetch

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when the API answers 404.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for transport failures and 5xx responses.
	ErrNetwork = errors.New("network error")

	// ErrBadRequest is returned for 4xx responses other than 404 and 429.
	ErrBadRequest = errors.New("request rejected")
)

// RetryableError marks a failure worth another attempt: transport errors
// and 5xx responses.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retry runs fn up to attempts times, doubling delay after each retryable
// failure. Errors not wrapped in [RetryableError] are returned at once.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var lastErr error

	for i := range attempts {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !IsRetryable(err) {
			return err
		}

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}

// IsRetryable reports whether err is wrapped in a [RetryableError].
func IsRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}
