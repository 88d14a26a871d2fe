package utils

import "fmt"

// DataUnavailableError represents a failure to read or parse one of the
// configured series files. It is fatal at startup: without both input
// series the dashboard has nothing to serve.
type DataUnavailableError struct {
	Path    string
	Message string
	Err     error
}

// Error returns a user-facing description naming the offending file.
func (e *DataUnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("series data unavailable (%s): %s: %v", e.Path, e.Message, e.Err)
	}
	return fmt.Sprintf("series data unavailable (%s): %s", e.Path, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *DataUnavailableError) Unwrap() error {
	return e.Err
}

// NewDataUnavailableError creates a DataUnavailableError for the given file.
func NewDataUnavailableError(path, message string, err error) error {
	return &DataUnavailableError{
		Path:    path,
		Message: message,
		Err:     err,
	}
}

// NewDataUnavailableErrorf creates a DataUnavailableError with a formatted message.
func NewDataUnavailableErrorf(path string, err error, format string, args ...interface{}) error {
	return &DataUnavailableError{
		Path:    path,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// ValidationError represents an error occurring during request or
// configuration validation.
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
