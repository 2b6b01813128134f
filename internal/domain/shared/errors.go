package shared

import "errors"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	kind    *DomainError
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target is this error or the category this error belongs to,
// so errors.Is(ErrOrderNotFound, shared.ErrNotFound) holds.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e == t || (e.kind != nil && e.kind == t)
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// newKindError creates an error that belongs to one of the common categories below
func newKindError(kind *DomainError, message string) *DomainError {
	return &DomainError{
		Code:    kind.Code,
		Message: message,
		kind:    kind,
	}
}

// NewValidationError creates a caller-input error
func NewValidationError(message string) *DomainError {
	return newKindError(ErrValidation, message)
}

// NewNotFoundError creates an unknown-reference error
func NewNotFoundError(message string) *DomainError {
	return newKindError(ErrNotFound, message)
}

// NewUnauthorizedError creates an authentication error
func NewUnauthorizedError(message string) *DomainError {
	return newKindError(ErrUnauthorized, message)
}

// NewInvalidStateError creates an error for operations not allowed in the current state
func NewInvalidStateError(message string) *DomainError {
	return newKindError(ErrInvalidState, message)
}

// NewUnavailableError creates an error for operations on a shut-down component
func NewUnavailableError(message string) *DomainError {
	return newKindError(ErrUnavailable, message)
}

// Common domain errors
var (
	ErrValidation   = NewDomainError("VALIDATION_ERROR", "Invalid input provided")
	ErrNotFound     = NewDomainError("NOT_FOUND", "Resource not found")
	ErrUnauthorized = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrInvalidState = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrUnavailable  = NewDomainError("UNAVAILABLE", "Emulator has been shut down")
)

// IsValidation reports whether err is a caller-input error
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsNotFound reports whether err is an unknown-reference error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsUnauthorized reports whether err is an authentication error
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsInvalidState reports whether err rejects an operation in the current state
func IsInvalidState(err error) bool {
	return errors.Is(err, ErrInvalidState)
}

// IsUnavailable reports whether err comes from a shut-down component
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
