package queue

import (
	"errors"
	"time"
)

// RetryPolicy is the per-queue retry configuration: a fixed attempt ceiling
// and exponential backoff starting at InitialDelay, multiplied by
// BackoffFactor per retry.
type RetryPolicy struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	BackoffFactor float64
}

// Delay returns the backoff before the next attempt, given how many attempts
// have already run.
func (p RetryPolicy) Delay(attempts int) time.Duration {
	d := float64(p.InitialDelay)
	for i := 1; i < attempts; i++ {
		d *= p.BackoffFactor
	}
	return time.Duration(d)
}

type nonRetryableError struct {
	err error
}

func (e *nonRetryableError) Error() string { return e.err.Error() }
func (e *nonRetryableError) Unwrap() error { return e.err }

// NonRetryable marks a job failure as terminal: validation errors such as an
// empty document are failed immediately instead of burning retry attempts.
func NonRetryable(err error) error {
	if err == nil {
		return nil
	}
	return &nonRetryableError{err: err}
}

// IsNonRetryable reports whether err was marked with NonRetryable.
func IsNonRetryable(err error) bool {
	var nr *nonRetryableError
	return errors.As(err, &nr)
}
