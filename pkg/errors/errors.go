// Package errors provides structured error types for topochart.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI and HTTP server
//   - Machine-readable error codes for programmatic handling
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - NOT_FOUND / UNKNOWN_*: Missing resources or names
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidDataset, "duplicate node id: %s", id)
//	if errors.Is(err, errors.ErrCodeInvalidDataset) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidFormat, origErr, "decode %s", path)
//
// The topology chart itself never returns errors: malformed datasets degrade
// the drawing instead. Everything around it (loading, storage, transport)
// uses the codes defined here.
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput     Code = "INVALID_INPUT"
	ErrCodeInvalidDataset   Code = "INVALID_DATASET"
	ErrCodeInvalidFormat    Code = "INVALID_FORMAT"
	ErrCodeInvalidEngine    Code = "INVALID_ENGINE"
	ErrCodeInvalidDimension Code = "INVALID_DIMENSION"
	ErrCodeInvalidConfig    Code = "INVALID_CONFIG"

	// Resource not found errors
	ErrCodeNotFound      Code = "NOT_FOUND"
	ErrCodeChartNotFound Code = "CHART_NOT_FOUND"
	ErrCodeNodeNotFound  Code = "NODE_NOT_FOUND"
	ErrCodeUnknownEvent  Code = "UNKNOWN_EVENT"
	ErrCodeUnknownData   Code = "UNKNOWN_DATASET"

	// Backend errors
	ErrCodeStorage Code = "STORAGE_ERROR"
	ErrCodeTimeout Code = "TIMEOUT"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsNotFound reports whether err carries any of the not-found codes.
func IsNotFound(err error) bool {
	switch GetCode(err) {
	case ErrCodeNotFound, ErrCodeChartNotFound, ErrCodeNodeNotFound, ErrCodeUnknownData:
		return true
	}
	return false
}

// IsInvalid reports whether err is an input validation failure.
func IsInvalid(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidDataset, ErrCodeInvalidFormat,
		ErrCodeInvalidEngine, ErrCodeInvalidDimension, ErrCodeInvalidConfig,
		ErrCodeUnknownEvent:
		return true
	}
	return false
}
