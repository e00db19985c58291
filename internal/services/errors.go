package services

import "errors"

var (
	// ErrValidation marks a payload missing a required field.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidCredentials is returned for a bad admin username/password pair.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthorized covers every session failure: missing, malformed,
	// tampered or expired tokens are not distinguished.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound is returned by FindByID when a record does not exist.
	ErrNotFound = errors.New("not found")
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
