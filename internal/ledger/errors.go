package ledger

import (
	"errors"
	"net/http"
)

// Domain errors for ledger operations.
var (
	ErrBudgetExceeded = errors.New("budget ceiling reached")
	ErrAlreadySettled = errors.New("reservation already settled")
	ErrInvalidAmount  = errors.New("invalid amount")
)

// MapHTTPStatus maps ledger domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrBudgetExceeded) {
		return http.StatusPaymentRequired
	}
	if errors.Is(err, ErrInvalidAmount) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
