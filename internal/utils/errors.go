package utils

import (
	"errors"
	"fmt"
)

// ValidationError represents an error caused by invalid caller-supplied input.
// It is the only error class the calculation engine raises; everything else
// degrades to documented defaults.
type ValidationError struct {
	Message string
}

// Error returns the error message string.
func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a new ValidationError with a specific message.
func NewValidationError(message string) error {
	return &ValidationError{
		Message: message,
	}
}

// NewValidationErrorf creates a new ValidationError with a formatted message.
func NewValidationErrorf(format string, args ...interface{}) error {
	return &ValidationError{
		Message: fmt.Sprintf(format, args...),
	}
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
// Handlers use this to map engine input failures to 400 responses.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
