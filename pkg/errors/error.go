// Package errors provides structured error handling with typed error codes.
//
// Error codes are organized into categories:
//   - General errors (1-99): Unknown and general errors
//   - Validation errors (100-199): Schema and row validation failures
//   - Data/Resource errors (200-299): Data not found, query failures, empty inputs
//   - File/IO errors (300-399): File access and directory scanning errors
//   - Ingest errors (400-499): Database ingestion and export errors
//
// Usage:
//
//	// Create a new error
//	err := errors.New(errors.ErrCodeSchemaMismatch, "header matches no known schema")
//
//	// Create a formatted error
//	err := errors.Newf(errors.ErrCodeEmptyFile, "no valid rows in %s", path)
//
//	// Wrap an existing error
//	err := errors.Wrap(errors.ErrCodeQueryFailed, "failed to execute query", originalErr)
//
//	// Check error code
//	if errors.HasCode(err, errors.ErrCodeSchemaMismatch) { ... }
package errors

import (
	"errors"
	"fmt"
)

// Error represents a structured error with an error code and message.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// New creates a new Error with the given code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   nil,
	}
}

// Newf creates a new Error with the given code and formatted message.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   nil,
	}
}

// Wrap wraps an existing error with a new Error containing the given code and message.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf wraps an existing error with a new Error containing the given code and formatted message.
func Wrapf(code ErrorCode, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}

	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether any error in err's chain matches target.
// This is a convenience wrapper around the standard errors.Is function.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
// This is a convenience wrapper around the standard errors.As function.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// GetCode extracts the ErrorCode from an error if it's an *Error type.
// Returns ErrCodeUnknown if the error is not an *Error type.
func GetCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	var rowErr *RowError
	if errors.As(err, &rowErr) {
		return rowErr.Code
	}

	return ErrCodeUnknown
}

// HasCode checks if an error has a specific ErrorCode.
func HasCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// RowError represents a validation failure for a single CSV row.
// It carries the 1-based line number of the offending row, the field
// that failed (empty when the whole row is at fault), and a reason.
type RowError struct {
	Code    ErrorCode
	Line    int    // 1-based line number in the source file
	Field   string // Optional: failing column name
	Message string // Human-readable reason
	Cause   error
}

// NewRowError creates a new RowError.
func NewRowError(code ErrorCode, line int, field, message string) *RowError {
	return &RowError{
		Code:    code,
		Line:    line,
		Field:   field,
		Message: message,
		Cause:   nil,
	}
}

// NewRowErrorf creates a new RowError with a formatted message.
func NewRowErrorf(code ErrorCode, line int, field, format string, args ...any) *RowError {
	return &RowError{
		Code:    code,
		Line:    line,
		Field:   field,
		Message: fmt.Sprintf(format, args...),
		Cause:   nil,
	}
}

// WrapRowError wraps an existing error into a RowError.
func WrapRowError(code ErrorCode, line int, field string, cause error) *RowError {
	return &RowError{
		Code:    code,
		Line:    line,
		Field:   field,
		Message: cause.Error(),
		Cause:   cause,
	}
}

// Error implements the error interface.
func (e *RowError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("line %d: field %q: %s", e.Line, e.Field, e.Message)
	}

	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// Unwrap returns the underlying error cause.
func (e *RowError) Unwrap() error {
	return e.Cause
}

// IsRowError checks if an error is a RowError.
// It uses errors.As to check the error chain.
func IsRowError(err error) bool {
	var rowErr *RowError

	return errors.As(err, &rowErr)
}
