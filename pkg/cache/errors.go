package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNetwork is returned when a remote backend cannot be reached.
var ErrNetwork = errors.New("network error")

// RetryableError marks an error that should trigger a retry.
type RetryableError struct{ Err error }

// Retryable wraps err as a RetryableError. Nil stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether err is wrapped with RetryableError.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// retryDelay is the first backoff delay; it doubles per attempt.
var retryDelay = time.Second

// RetryWithBackoff runs fn up to three times, doubling the delay between
// attempts. Only errors wrapped with Retryable are retried.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	const attempts = 3
	delay := retryDelay
	var lastErr error

	for i := range attempts {
		err := fn()
		if err == nil {
			return nil
		}
		if lastErr = err; !IsRetryable(err) {
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
