// Package errors provides structured error types for agentflow.
//
// Errors carry a machine-readable [Code] alongside a human-readable message
// so the CLI can print a friendly message while tests and callers branch on
// the code.
//
// # Error Codes
//
// Codes follow a hierarchical naming convention:
//   - INVALID_*: input or configuration that cannot be used
//   - *_NOT_FOUND: a required file or directory is missing
//   - NESTED_* / NESTING_*: failures while composing nested agents
//   - WRITE_FAILED, INTERNAL_ERROR: output and unexpected failures
//
// Parsing never produces these errors. They are reserved for the file
// system boundary: loading an agent directory and writing compiled
// documents.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeFileNotFound, "no diagram in %s", dir)
//	if errors.Is(err, errors.ErrCodeFileNotFound) {
//	    // suggest running from the agent directory
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeWriteFailed, origErr, "write %s", path)
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
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeInvalidName   Code = "INVALID_NAME"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"

	// Resource not found errors
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Composition errors
	ErrCodeNestedAgent  Code = "NESTED_AGENT"
	ErrCodeNestingCycle Code = "NESTING_CYCLE"
	ErrCodeWriteFailed  Code = "WRITE_FAILED"
	ErrCodeRenderFailed Code = "RENDER_FAILED"
	ErrCodeInternal     Code = "INTERNAL_ERROR"
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
// It unwraps the error chain looking for an *Error with a matching code,
// so an outer NESTED_AGENT error still reports the WRITE_FAILED beneath it.
func Is(err error, code Code) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Cause
	}
	return false
}

// GetCode extracts the outermost error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message chain without code prefixes.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return err.Error()
	}
	if e.Cause == nil {
		return e.Message
	}
	return e.Message + ": " + UserMessage(e.Cause)
}
