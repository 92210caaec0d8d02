package proposals

import (
	"errors"
	"net/http"

	"github.com/quillworks/quill/internal/analyzer"
	"github.com/quillworks/quill/internal/ledger"
	"github.com/quillworks/quill/internal/provider"
)

// Domain errors for proposal operations.
var (
	ErrNotFound          = errors.New("proposal not found")
	ErrDuplicate         = errors.New("proposal already exists")
	ErrAlreadyInProgress = errors.New("generation already in progress for session")
	ErrInvalidRequest    = errors.New("invalid request")
	ErrBatchTooLarge     = errors.New("batch exceeds maximum size")
)

// ErrorCode is the machine-readable error code the desktop client switches
// on. It travels in the response body alongside the human-readable message.
type ErrorCode string

// Error codes for pipeline failures.
const (
	CodeTooShort          ErrorCode = "too_short"
	CodeTooLong           ErrorCode = "too_long"
	CodeBudgetExceeded    ErrorCode = "budget_exceeded"
	CodeProviderTransient ErrorCode = "provider_transient"
	CodeProviderFatal     ErrorCode = "provider_fatal"
	CodeAlreadyInProgress ErrorCode = "already_in_progress"
	CodeNotFound          ErrorCode = "not_found"
	CodeInvalidRequest    ErrorCode = "invalid_request"
	CodeInternal          ErrorCode = "internal"
)

// CodeFor maps a pipeline error to its client-facing code.
func CodeFor(err error) ErrorCode {
	switch {
	case errors.Is(err, analyzer.ErrTooShort):
		return CodeTooShort
	case errors.Is(err, analyzer.ErrTooLong):
		return CodeTooLong
	case errors.Is(err, ledger.ErrBudgetExceeded):
		return CodeBudgetExceeded
	case errors.Is(err, ErrAlreadyInProgress):
		return CodeAlreadyInProgress
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, ErrBatchTooLarge):
		return CodeInvalidRequest
	}

	var provErr *provider.Error
	if errors.As(err, &provErr) {
		if provErr.Transient {
			return CodeProviderTransient
		}
		return CodeProviderFatal
	}

	return CodeInternal
}

// MapHTTPStatus maps proposal domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate), errors.Is(err, ErrAlreadyInProgress):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, ErrBatchTooLarge):
		return http.StatusBadRequest
	case errors.Is(err, analyzer.ErrTooShort), errors.Is(err, analyzer.ErrTooLong):
		return analyzer.MapHTTPStatus(err)
	case errors.Is(err, ledger.ErrBudgetExceeded):
		return ledger.MapHTTPStatus(err)
	}

	var provErr *provider.Error
	if errors.As(err, &provErr) {
		return provider.MapHTTPStatus(err)
	}

	return http.StatusInternalServerError
}
