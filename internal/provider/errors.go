package provider

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Sentinel errors for gateway operations.
var (
	ErrUnknownTier     = errors.New("unknown tier")
	ErrEmptyCompletion = errors.New("provider returned empty completion")
)

// Error is a typed provider failure. Transient errors are retried by the
// gateway; fatal errors surface immediately.
type Error struct {
	Transient bool
	Status    int
	Err       error
}

func (e *Error) Error() string {
	kind := "fatal"
	if e.Transient {
		kind = "transient"
	}
	if e.Status != 0 {
		return fmt.Sprintf("provider %s error (status %d): %v", kind, e.Status, e.Err)
	}
	return fmt.Sprintf("provider %s error: %v", kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewTransient wraps err as a retryable provider error.
func NewTransient(status int, err error) *Error {
	return &Error{Transient: true, Status: status, Err: err}
}

// NewFatal wraps err as a non-retryable provider error.
func NewFatal(status int, err error) *Error {
	return &Error{Transient: false, Status: status, Err: err}
}

// IsTransient reports whether err is a retryable provider failure.
// Network timeouts count as transient even when unwrapped; cancellation
// never does.
func IsTransient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var pe *Error
	if errors.As(err, &pe) {
		return pe.Transient
	}

	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}

	return false
}

// classifyStatus wraps an HTTP failure status as transient or fatal.
// Rate limiting and server-side failures are retryable; everything else
// (auth, malformed request) is not.
func classifyStatus(status int, err error) *Error {
	if status == http.StatusTooManyRequests || status >= http.StatusInternalServerError {
		return NewTransient(status, err)
	}
	return NewFatal(status, err)
}

// MapHTTPStatus maps provider errors to HTTP status codes for surfacing.
func MapHTTPStatus(err error) int {
	var pe *Error
	if errors.As(err, &pe) {
		return http.StatusBadGateway
	}
	if errors.Is(err, ErrUnknownTier) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
