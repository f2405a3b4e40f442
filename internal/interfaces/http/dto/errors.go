package dto

import (
	"errors"
	"net/http"

	"github.com/travelpkg/backend/internal/domain/shared"
)

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
	// ErrCodeServiceUnavailable is used for transient infrastructure failures
	ErrCodeServiceUnavailable = "ERR_SERVICE_UNAVAILABLE"
)

// Validation error codes
const (
	ErrCodeValidation    = "ERR_VALIDATION"
	ErrCodeBadRequest    = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput  = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON   = "ERR_INVALID_JSON"
	ErrCodeRequestTooBig = "ERR_REQUEST_TOO_LARGE"
)

// Authentication error codes
const (
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
)

// Resource error codes
const (
	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConflict            = "ERR_CONFLICT"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
	ErrCodeDuplicateRequest    = "ERR_DUPLICATE_REQUEST"
)

// Business rule error codes
const (
	// ErrCodeInvalidTransition is used when a reservation status change is not allowed
	ErrCodeInvalidTransition = "ERR_INVALID_TRANSITION"
	// ErrCodeFeedNotConfigured is used when a feed sync is requested without a feed source
	ErrCodeFeedNotConfigured = "ERR_FEED_NOT_CONFIGURED"
)

// Messages sent in place of the domain message for infrastructure failures.
// The cause is logged, never returned to the client.
const (
	MessageServiceUnavailable = "Service temporarily unavailable"
	MessageInternal           = "An unexpected error occurred"
)

// KindHTTPStatus maps each error kind to its HTTP status code
var KindHTTPStatus = map[shared.ErrorKind]int{
	shared.KindValidation:        http.StatusBadRequest,
	shared.KindConflict:          http.StatusConflict,
	shared.KindInvalidTransition: http.StatusUnprocessableEntity,
	shared.KindNotFound:          http.StatusNotFound,
	shared.KindUnauthorized:      http.StatusUnauthorized,
	shared.KindForbidden:         http.StatusForbidden,
	shared.KindRetryable:         http.StatusServiceUnavailable,
	shared.KindFatal:             http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error kind.
// Unknown kinds map to 500.
func GetHTTPStatus(kind shared.ErrorKind) int {
	if status, ok := KindHTTPStatus[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to the API codes
var DomainErrorCodeMapping = map[string]string{
	"VALIDATION_ERROR":     ErrCodeValidation,
	"INVALID_INPUT":        ErrCodeInvalidInput,
	"NOT_FOUND":            ErrCodeNotFound,
	"ALREADY_EXISTS":       ErrCodeAlreadyExists,
	"CONFLICT":             ErrCodeConflict,
	"CONCURRENCY_CONFLICT": ErrCodeConcurrencyConflict,
	"DUPLICATE_REQUEST":    ErrCodeDuplicateRequest,
	"INVALID_TRANSITION":   ErrCodeInvalidTransition,
	"UNAUTHORIZED":         ErrCodeUnauthorized,
	"FORBIDDEN":            ErrCodeForbidden,
	"FEED_NOT_CONFIGURED":  ErrCodeFeedNotConfigured,
	"RETRYABLE":            ErrCodeServiceUnavailable,
	"FATAL":                ErrCodeInternal,
}

// NormalizeErrorCode converts a domain error code to the API format.
// Unknown codes are returned as-is.
func NormalizeErrorCode(code string) string {
	if newCode, ok := DomainErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}

// FromError converts err into a status code and error body. Retryable and
// fatal errors get a fixed message; errors outside the domain taxonomy are
// treated as fatal.
func FromError(err error) (int, *ErrorInfo) {
	var de *shared.DomainError
	if !errors.As(err, &de) {
		return http.StatusInternalServerError, &ErrorInfo{Code: ErrCodeInternal, Message: MessageInternal}
	}

	info := &ErrorInfo{Code: NormalizeErrorCode(de.Code), Message: de.Message}
	switch de.Kind {
	case shared.KindRetryable:
		info.Code, info.Message = ErrCodeServiceUnavailable, MessageServiceUnavailable
	case shared.KindFatal:
		info.Code, info.Message = ErrCodeInternal, MessageInternal
	case shared.KindValidation:
		info.Field = de.Field
	}
	return GetHTTPStatus(de.Kind), info
}
