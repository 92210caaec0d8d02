package analyzer

import (
	"errors"
	"net/http"
)

// Validation errors for job post input. Both are recoverable by the caller
// editing the input.
var (
	ErrTooShort = errors.New("job post too short to analyze")
	ErrTooLong  = errors.New("job post too long; excerpt the relevant sections and retry")
)

// MapHTTPStatus maps analyzer domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrTooShort) || errors.Is(err, ErrTooLong) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
