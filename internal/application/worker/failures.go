package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/rezkam/fiscal/internal/domain"
)

// RetryableError marks a job failure worth one immediate retry.
type RetryableError struct {
	Err error
}

func (e RetryableError) Error() string { return e.Err.Error() }
func (e RetryableError) Unwrap() error { return e.Err }

// Transient marks err as retryable.
func Transient(err error) error {
	return RetryableError{Err: err}
}

// IsRetryable reports whether err carries a RetryableError.
func IsRetryable(err error) bool {
	return errors.As(err, new(RetryableError))
}

// PanicError is what a recovered job panic becomes. It is never retried.
type PanicError struct {
	Value      any
	StackTrace string
}

func (e PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// IsPanic reports whether err carries a PanicError.
func IsPanic(err error) bool {
	return errors.As(err, new(PanicError))
}

// classify decides what a failed monthly run deserves. The job only creates
// successors that do not exist yet, so running it twice is safe and any
// unrecognized failure is treated as transient.
func classify(err error) error {
	if err == nil || IsRetryable(err) || !retryCandidate(err) {
		return err
	}
	return Transient(err)
}

func retryCandidate(err error) bool {
	for _, final := range []error{domain.ErrJobLocked, context.Canceled, context.DeadlineExceeded} {
		if errors.Is(err, final) {
			return false
		}
	}
	return !IsPanic(err)
}
