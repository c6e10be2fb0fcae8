package dto

import "net/http"

// Error codes used by the HTTP layer itself
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "INTERNAL"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeUnauthorized is used when authentication is missing or invalid
	ErrCodeUnauthorized = "UNAUTHORIZED"
	// ErrCodeRateLimited is used when the HTTP rate limit is exceeded
	ErrCodeRateLimited = "RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps domain error codes to HTTP status codes.
// Codes not listed fall through to 500.
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:     http.StatusInternalServerError,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeUnauthorized: http.StatusUnauthorized,

	// Lookups
	"NOT_FOUND":         http.StatusNotFound,
	"BID_NOT_FOUND":     http.StatusNotFound,
	"NO_ACTIVE_SESSION": http.StatusNotFound,

	// Access control
	"FORBIDDEN": http.StatusForbidden,

	// Conflicts
	"CONCURRENCY_CONFLICT": http.StatusConflict,
	"ORDER_ALREADY_OPEN":   http.StatusConflict,

	// Throttling
	"RATE_LIMITED": http.StatusTooManyRequests,

	// State violations -> 422 Unprocessable Entity
	"INVALID_STATE":     http.StatusUnprocessableEntity,
	"ORDER_UNAVAILABLE": http.StatusUnprocessableEntity,
	"ORDER_NOT_MATCHED": http.StatusUnprocessableEntity,
	"OWN_ORDER_BID":     http.StatusUnprocessableEntity,

	// Input validation -> 400 Bad Request
	"INVALID_INPUT":       http.StatusBadRequest,
	"INVALID_PRICE":       http.StatusBadRequest,
	"INVALID_LOCATION":    http.StatusBadRequest,
	"INVALID_PHONE":       http.StatusBadRequest,
	"INVALID_ROLE":        http.StatusBadRequest,
	"INVALID_SOURCE":      http.StatusBadRequest,
	"INVALID_DESCRIPTION": http.StatusBadRequest,
	"INVALID_CUSTOMER":    http.StatusBadRequest,
	"INVALID_REQUESTER":   http.StatusBadRequest,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
