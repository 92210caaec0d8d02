// Package handlers provides shared HTTP response helpers for domain handlers.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// ErrorResponse is the JSON body returned for all error responses.
// Code is a stable machine-readable identifier the caller can switch on.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// RespondJSON writes v as a JSON response with the given status code.
func RespondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// RespondError writes err as a JSON error response and logs server errors.
func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, err error) {
	RespondCodedError(w, logger, status, "", err)
}

// RespondCodedError writes err with a machine-readable code.
// Responses with 5xx status are logged at error level.
func RespondCodedError(w http.ResponseWriter, logger *slog.Logger, status int, code string, err error) {
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
	}

	RespondJSON(w, status, ErrorResponse{
		Error: err.Error(),
		Code:  code,
	})
}
