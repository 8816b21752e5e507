package models

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is wrapped by lookups that miss. Resources owned by another
	// user are reported the same way.
	ErrNotFound = errors.New("not found")

	// ErrNotAuthenticated means no credentials were presented.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrAuthentication covers malformed, expired or unresolvable tokens.
	ErrAuthentication = errors.New("invalid token")

	// ErrInvalidCredentials is returned when email and password do not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError reports a rejected input value.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError formats a ValidationError.
func NewValidationError(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ConflictError reports a uniqueness violation such as a reused email.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}
