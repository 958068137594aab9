// Package errors provides the structured error type used across fsbuild.
//
// Every failure that aborts a run is wrapped in an *FsbuildError carrying
// a category, a stable code and, where one exists, the offending path.
// Recovered conditions (an undecodable text asset copied verbatim, a
// missing board configuration) never produce an error value.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeMinify     ErrorType = "minify"
	ErrorTypeInternal   ErrorType = "internal"
)

// Common error codes.
const (
	ErrCodeInvalidPath      = "ERR_INVALID_PATH"
	ErrCodePathTraversal    = "ERR_PATH_TRAVERSAL"
	ErrCodeConfigInvalid    = "ERR_CONFIG_INVALID"
	ErrCodeFileNotFound     = "ERR_FILE_NOT_FOUND"
	ErrCodeReadFailed       = "ERR_READ_FAILED"
	ErrCodeWriteFailed      = "ERR_WRITE_FAILED"
	ErrCodeUnknownEngine    = "ERR_UNKNOWN_ENGINE"
	ErrCodeUnknownFormat    = "ERR_UNKNOWN_FORMAT"
	ErrCodeMinifyFailed     = "ERR_MINIFY_FAILED"
	ErrCodeValidationFailed = "ERR_VALIDATION_FAILED"
	ErrCodeInternalError    = "ERR_INTERNAL"
)

// FsbuildError is a structured error type with context.
type FsbuildError struct {
	Type    ErrorType
	Code    string
	Message string
	Cause   error
	Path    string
	Context map[string]interface{}
}

// Error implements the error interface.
func (e *FsbuildError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.Path != "" {
		parts = append(parts, e.Path+":")
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *FsbuildError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison on type and code.
func (e *FsbuildError) Is(target error) bool {
	var t *FsbuildError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *FsbuildError) WithContext(key string, value interface{}) *FsbuildError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// WithPath records the file the error relates to.
func (e *FsbuildError) WithPath(path string) *FsbuildError {
	e.Path = path

	return e
}

// NewValidationError creates a validation error.
func NewValidationError(code, message string) *FsbuildError {
	return &FsbuildError{
		Type:    ErrorTypeValidation,
		Code:    code,
		Message: message,
	}
}

// NewIOError creates an I/O error.
func NewIOError(code, message string, cause error) *FsbuildError {
	return &FsbuildError{
		Type:    ErrorTypeIO,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewConfigError creates a configuration error.
func NewConfigError(code, message string) *FsbuildError {
	return &FsbuildError{
		Type:    ErrorTypeConfig,
		Code:    code,
		Message: message,
	}
}

// NewMinifyError creates an error raised by a minification engine.
func NewMinifyError(code, message string, cause error) *FsbuildError {
	return &FsbuildError{
		Type:    ErrorTypeMinify,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewInternalError creates an internal error.
func NewInternalError(code, message string, cause error) *FsbuildError {
	return &FsbuildError{
		Type:    ErrorTypeInternal,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// IsIOError checks if an error is I/O related.
func IsIOError(err error) bool {
	var fe *FsbuildError
	if errors.As(err, &fe) {
		return fe.Type == ErrorTypeIO
	}

	return false
}

// IsConfigError checks if an error came from configuration loading or validation.
func IsConfigError(err error) bool {
	var fe *FsbuildError
	if errors.As(err, &fe) {
		return fe.Type == ErrorTypeConfig || fe.Type == ErrorTypeValidation
	}

	return false
}

// ErrInvalidPath creates a path validation error.
func ErrInvalidPath(path string) *FsbuildError {
	return NewValidationError(ErrCodeInvalidPath, "invalid path: "+path)
}

// ErrPathTraversal creates a path traversal validation error.
func ErrPathTraversal(path string) *FsbuildError {
	return NewValidationError(ErrCodePathTraversal, "path contains traversal: "+path)
}

// ErrReadFailed wraps a failure reading path.
func ErrReadFailed(path string, cause error) *FsbuildError {
	return NewIOError(ErrCodeReadFailed, "read failed", cause).WithPath(path)
}

// ErrWriteFailed wraps a failure writing path.
func ErrWriteFailed(path string, cause error) *FsbuildError {
	return NewIOError(ErrCodeWriteFailed, "write failed", cause).WithPath(path)
}
