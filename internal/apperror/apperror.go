// Package apperror defines the business failures the API reports to callers.
//
// Every failure a user can cause (a missing field, a bad date, a wrong password)
// is an *AppError wrapping one of the sentinels below. The HTTP layer reports
// those inside a result:false envelope. Anything that is NOT an *AppError is a
// storage or programming failure and becomes a 500.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("Validation Error")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")

	// ErrMissingField is a kind of ErrValidation; errors.Is matches both.
	ErrMissingField = fmt.Errorf("missing field: %w", ErrValidation)
)

type AppError struct {
	Err     error  // actual error
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound reports a missing resource, e.g. NotFound("User") → "User not found".
func NotFound(resource string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// MissingField reports a required JSON path that was absent from the request,
// using dotted notation for nested keys ("content.name").
func MissingField(path string) *AppError {
	return &AppError{
		Err:     ErrMissingField,
		Message: "Missing required field: " + path,
		Field:   path,
	}
}

// Conflict reports a resource that already exists, e.g. Conflict("User").
func Conflict(resource string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s already exists", resource),
	}
}

// Unauthorized reports a credential that did not check out: a wrong password
// or a token whose digest does not match.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// IsBusiness reports whether err carries an *AppError anywhere in its chain.
func IsBusiness(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}
