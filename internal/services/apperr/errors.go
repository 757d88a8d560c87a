package apperr

import "errors"

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrRateLimited     = errors.New("rate limited")
)

// RateLimitError carries the wait time back to the transport layer.
type RateLimitError struct {
	RetryAfterSec int64
}

func (e *RateLimitError) Error() string {
	return "rate limited"
}

func (e *RateLimitError) Unwrap() error {
	return ErrRateLimited
}
