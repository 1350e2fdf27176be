// Package domain defines the core business entities and errors.
package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// The specific sentinels below all wrap it, so errors.Is against
	// ErrValidation catches any of them.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	// Deliberately not wrapping ErrValidation: malformed identifiers map to
	// a different HTTP status than entity validation failures.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidEmail is returned when an email address is malformed.
	ErrInvalidEmail = fmt.Errorf("%w: invalid email format", ErrValidation)

	// ErrInvalidUsername is returned when a username doesn't meet requirements.
	ErrInvalidUsername = fmt.Errorf("%w: invalid username", ErrValidation)

	// ErrInvalidPassword is returned when a password doesn't meet the policy.
	ErrInvalidPassword = fmt.Errorf("%w: invalid password", ErrValidation)

	// ErrInvalidRole is returned when a user role is not a known role.
	ErrInvalidRole = fmt.Errorf("%w: invalid role", ErrValidation)

	// ErrInvalidTaskStatus is returned when a task status is not valid.
	ErrInvalidTaskStatus = fmt.Errorf("%w: invalid task status", ErrValidation)

	// ErrInvalidTaskPriority is returned when a task priority is not valid.
	ErrInvalidTaskPriority = fmt.Errorf("%w: invalid task priority", ErrValidation)

	// ErrEmptyTitle is returned when a required title or name is empty.
	ErrEmptyTitle = fmt.Errorf("%w: title cannot be empty", ErrValidation)

	// ErrUnauthorized is returned when an operation is not permitted.
	ErrUnauthorized = errors.New("unauthorized operation")
)

// ValidationError wraps a sentinel domain error with the field that failed
// and a human-readable reason, so handlers can build precise messages
// without string matching.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Field + " " + e.Reason
}

// Unwrap returns the wrapped sentinel error to support errors.Is.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, reason string, err error) *ValidationError {
	return &ValidationError{Field: field, Reason: reason, Err: err}
}
