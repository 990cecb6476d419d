package api

import "net/http"

// Error categories. Clients branch on the category, not the message.
const (
	CategoryNotFound          = "NOT_FOUND"
	CategoryValidationError   = "VALIDATION_ERROR"
	CategoryUnauthorized      = "UNAUTHORIZED"
	CategoryForbidden         = "FORBIDDEN"
	CategoryTransactionFailed = "TRANSACTION_FAILED"
	CategoryInternalError     = "INTERNAL_ERROR"
)

// Error is the JSON error response body.
type Error struct {
	Status        string `json:"status"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlationId"`
	Category      string `json:"category"`
}

// NewNotFoundError creates a 404 error with the NOT_FOUND category.
func NewNotFoundError(message, correlationID string) *Error {
	return &Error{
		Status:        "error",
		Message:       message,
		CorrelationID: correlationID,
		Category:      CategoryNotFound,
	}
}

// NewValidationError creates a 400 error with the VALIDATION_ERROR category.
func NewValidationError(message, correlationID string) *Error {
	return &Error{
		Status:        "error",
		Message:       message,
		CorrelationID: correlationID,
		Category:      CategoryValidationError,
	}
}

// NewTransactionError creates a 422 error with the TRANSACTION_FAILED
// category. It signals that an operation batch was rolled back entirely.
func NewTransactionError(message, correlationID string) *Error {
	return &Error{
		Status:        "error",
		Message:       message,
		CorrelationID: correlationID,
		Category:      CategoryTransactionFailed,
	}
}

// NewInternalError creates a 500 error with the INTERNAL_ERROR category.
func NewInternalError(message, correlationID string) *Error {
	return &Error{
		Status:        "error",
		Message:       message,
		CorrelationID: correlationID,
		Category:      CategoryInternalError,
	}
}

// WriteError writes an Error as a JSON response with the given HTTP status code.
func WriteError(w http.ResponseWriter, statusCode int, apiErr *Error) {
	WriteJSON(w, statusCode, apiErr)
}
