package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"
	ErrPermission   ErrorCode = "PERMISSION"

	// Lifecycle errors
	ErrNotInitialized     ErrorCode = "NOT_INITIALIZED"
	ErrAlreadyInitialized ErrorCode = "ALREADY_INITIALIZED"
	ErrConflict           ErrorCode = "CONFLICT"

	// State errors
	ErrStateLoad ErrorCode = "STATE_LOAD"
	ErrStateSave ErrorCode = "STATE_SAVE"

	// Template errors
	ErrTemplateRead ErrorCode = "TEMPLATE_READ"
	ErrDeploy       ErrorCode = "DEPLOY"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"

	// FileSystem errors
	ErrFileNotFound ErrorCode = "FILE_NOT_FOUND"
	ErrFileAccess   ErrorCode = "FILE_ACCESS"
	ErrFileWrite    ErrorCode = "FILE_WRITE"
	ErrDirCreate    ErrorCode = "DIR_CREATE"
)

// AcforgeError represents a structured error with code and details
type AcforgeError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *AcforgeError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *AcforgeError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *AcforgeError) Is(target error) bool {
	var targetErr *AcforgeError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new AcforgeError with the given code and message
func New(code ErrorCode, message string) *AcforgeError {
	return &AcforgeError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new AcforgeError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *AcforgeError {
	return &AcforgeError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with an AcforgeError
func Wrap(err error, code ErrorCode, message string) *AcforgeError {
	if err == nil {
		return nil
	}
	return &AcforgeError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *AcforgeError {
	if err == nil {
		return nil
	}
	return &AcforgeError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *AcforgeError) WithDetail(key string, value interface{}) *AcforgeError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var acfErr *AcforgeError
	if errors.As(err, &acfErr) {
		return acfErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not an AcforgeError
func GetErrorCode(err error) ErrorCode {
	var acfErr *AcforgeError
	if errors.As(err, &acfErr) {
		return acfErr.Code
	}
	return ErrUnknown
}
