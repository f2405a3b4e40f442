package shared

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a DomainError for propagation and presentation.
type ErrorKind string

const (
	KindValidation        ErrorKind = "VALIDATION"
	KindConflict          ErrorKind = "CONFLICT"
	KindInvalidTransition ErrorKind = "INVALID_TRANSITION"
	KindNotFound          ErrorKind = "NOT_FOUND"
	KindRetryable         ErrorKind = "RETRYABLE"
	KindFatal             ErrorKind = "FATAL"
	KindUnauthorized      ErrorKind = "UNAUTHORIZED"
	KindForbidden         ErrorKind = "FORBIDDEN"
)

// DomainError represents a domain-level error
type DomainError struct {
	Kind    ErrorKind `json:"-"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
	// Field is the path of the offending input field for validation errors
	Field string `json:"field,omitempty"`
	cause error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause, if any
func (e *DomainError) Unwrap() error {
	return e.cause
}

// Is matches domain errors by code so sentinel comparisons survive wrapping
func (e *DomainError) Is(target error) bool {
	var other *DomainError
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Kind:    KindValidation,
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a validation error attached to an input field path
func NewValidationError(field, message string) *DomainError {
	return &DomainError{
		Kind:    KindValidation,
		Code:    "VALIDATION_ERROR",
		Message: message,
		Field:   field,
	}
}

// NewConflictError creates a referential or uniqueness conflict error
func NewConflictError(message string) *DomainError {
	return &DomainError{Kind: KindConflict, Code: "CONFLICT", Message: message}
}

// NewInvalidTransitionError reports an illegal status change
func NewInvalidTransitionError(from, to string) *DomainError {
	return &DomainError{
		Kind:    KindInvalidTransition,
		Code:    "INVALID_TRANSITION",
		Message: fmt.Sprintf("cannot transition from %s to %s", from, to),
	}
}

// NewNotFoundError reports an unknown resource
func NewNotFoundError(resource string) *DomainError {
	return &DomainError{Kind: KindNotFound, Code: "NOT_FOUND", Message: resource + " not found"}
}

// NewRetryableError wraps a transient infrastructure failure
func NewRetryableError(cause error) *DomainError {
	return &DomainError{Kind: KindRetryable, Code: "RETRYABLE", Message: "temporarily unavailable", cause: cause}
}

// NewFatalError wraps an unclassified infrastructure failure
func NewFatalError(cause error) *DomainError {
	return &DomainError{Kind: KindFatal, Code: "FATAL", Message: "internal error", cause: cause}
}

// KindOf returns the kind of err, or KindFatal for errors outside the taxonomy
func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindFatal
}

// IsKind reports whether err is a DomainError of the given kind
func IsKind(err error, kind ErrorKind) bool {
	var de *DomainError
	return errors.As(err, &de) && de.Kind == kind
}

// Common domain errors
var (
	ErrNotFound            = &DomainError{Kind: KindNotFound, Code: "NOT_FOUND", Message: "Resource not found"}
	ErrAlreadyExists       = &DomainError{Kind: KindConflict, Code: "ALREADY_EXISTS", Message: "Resource already exists"}
	ErrInvalidInput        = &DomainError{Kind: KindValidation, Code: "INVALID_INPUT", Message: "Invalid input provided"}
	ErrConcurrencyConflict = &DomainError{Kind: KindConflict, Code: "CONCURRENCY_CONFLICT", Message: "Resource was modified by another process"}
	ErrUnauthorized        = &DomainError{Kind: KindUnauthorized, Code: "UNAUTHORIZED", Message: "Not authorized to perform this action"}
	ErrForbidden           = &DomainError{Kind: KindForbidden, Code: "FORBIDDEN", Message: "Access to this resource is forbidden"}
	ErrDuplicateRequest    = &DomainError{Kind: KindConflict, Code: "DUPLICATE_REQUEST", Message: "Request was already processed"}
)
