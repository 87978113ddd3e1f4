package dto

import (
	"errors"
	"net/http"

	"github.com/emgea/siscalculo/internal/domain/shared"
)

// Error code constants
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeInputShape is used when an uploaded worksheet does not match
	// the expected layout
	ErrCodeInputShape = "ERR_INPUT_SHAPE"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeConflict is used when a write collides with the calculation
	// partition
	ErrCodeConflict = "ERR_PERSISTENCE_CONFLICT"
)

// Business rule error codes
const (
	// ErrCodeUnsupportedIndex is used for index ids outside the accepted set
	ErrCodeUnsupportedIndex = "ERR_UNSUPPORTED_INDEX"
	// ErrCodeBusinessRule is used for generic business rule violations
	ErrCodeBusinessRule = "ERR_DOMAIN_RULE"
	// ErrCodePrejudicePrecondition is used when a prejudice comparison lacks
	// a persisted run
	ErrCodePrejudicePrecondition = "ERR_PREJUDICE_PRECONDITION"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInputShape:   http.StatusUnprocessableEntity,

	ErrCodeNotFound: http.StatusNotFound,
	ErrCodeConflict: http.StatusConflict,

	ErrCodeUnsupportedIndex:      http.StatusBadRequest,
	ErrCodeBusinessRule:          http.StatusUnprocessableEntity,
	ErrCodePrejudicePrecondition: http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Returns 500 Internal Server Error if the error code is not found.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// domainErrorCodeMapping translates domain error codes to API error codes
var domainErrorCodeMapping = map[string]string{
	"NOT_FOUND":              ErrCodeNotFound,
	"INVALID_INPUT":          ErrCodeInvalidInput,
	"INPUT_SHAPE":            ErrCodeInputShape,
	"UNSUPPORTED_INDEX":      ErrCodeUnsupportedIndex,
	"DOMAIN_RULE":            ErrCodeBusinessRule,
	"PERSISTENCE_CONFLICT":   ErrCodeConflict,
	"PREJUDICE_PRECONDITION": ErrCodePrejudicePrecondition,
}

// MapDomainError resolves an error to an API error code and message. Errors
// that do not wrap a DomainError map to ERR_INTERNAL with a generic message.
func MapDomainError(err error) (string, string) {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		if code, ok := domainErrorCodeMapping[domainErr.Code]; ok {
			return code, err.Error()
		}
		return ErrCodeUnknown, err.Error()
	}
	return ErrCodeInternal, "internal server error"
}
