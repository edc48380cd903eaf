package dto

import (
	"net/http"

	"github.com/invoicedesk/backend/internal/domain/shared"
)

// Error codes exposed over HTTP. Domain errors carry the same codes, so
// the mapping below covers both layers.
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = shared.CodeInternal
	// ErrCodeValidation is used when operation input fails validation
	ErrCodeValidation = shared.CodeValidation
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = shared.CodeInvalidInput
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = shared.CodeNotFound
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "INVALID_JSON"
)

// errorCodeHTTPStatus maps error codes to HTTP status codes
var errorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:     http.StatusInternalServerError,
	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeNotFound:     http.StatusNotFound,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500 Internal Server Error.
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
