package errors

import (
	"fmt"
)

// ErrorType classifies failures that happen while handling table data, as
// opposed to malformed requests
type ErrorType string

const (
	ErrTypeParsing ErrorType = "PARSING"
	ErrTypeExport  ErrorType = "EXPORT"
)

// AppError is a table-handling failure with the operation that hit it and
// any context worth echoing back to the client
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to reach the cause
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds a key that the problem renderer copies into the response
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

func newAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewParsingError reports an upload whose bytes could not be read. Rendered
// as 422.
func NewParsingError(message string, cause error) *AppError {
	return newAppError(ErrTypeParsing, message, cause)
}

// NewExportError reports a failure while writing an export. Rendered as 500.
func NewExportError(message string, cause error) *AppError {
	return newAppError(ErrTypeExport, message, cause)
}
