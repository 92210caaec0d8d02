package profile

import (
	"errors"
	"net/http"
)

// Domain errors for profile operations.
var (
	ErrNotFound       = errors.New("voice profile not found")
	ErrDuplicate      = errors.New("voice profile already exists")
	ErrInvalidUserID  = errors.New("invalid user id")
	ErrInvalidCommand = errors.New("invalid calibration command")
)

// MapHTTPStatus maps profile domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrInvalidUserID) || errors.Is(err, ErrInvalidCommand) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
