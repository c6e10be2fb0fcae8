package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrForbidden           = NewDomainError("FORBIDDEN", "Access to this resource is forbidden")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")

	ErrOrderUnavailable = NewDomainError("ORDER_UNAVAILABLE", "Order does not exist or is no longer open")
	ErrOrderAlreadyOpen = NewDomainError("ORDER_ALREADY_OPEN", "Customer already has an open order")
	ErrBidNotFound      = NewDomainError("BID_NOT_FOUND", "No bid from this executor on the order")
	ErrInvalidPrice     = NewDomainError("INVALID_PRICE", "Price must be a positive number")
	ErrInvalidLocation  = NewDomainError("INVALID_LOCATION", "Provide either an address or coordinates, not both")
	ErrInvalidPhone     = NewDomainError("INVALID_PHONE", "Phone number must contain at least 7 digits")
	ErrNoActiveSession  = NewDomainError("NO_ACTIVE_SESSION", "No active relay session")
	ErrRateLimited      = NewDomainError("RATE_LIMITED", "Request was made too soon after the previous one")
)
