// Package errors provides coded errors for badge rendering and export.
//
// Most failures inside the rendering engine are recovered locally (a photo
// that fails to decode becomes a placeholder). The errors that do reach a
// caller carry a [Code] so the CLI, or any embedding application, can decide
// how to present them:
//   - INVALID_*: configuration, template or input validation failures
//   - *_NOT_FOUND: missing templates or files
//   - NETWORK_ERROR / TIMEOUT: asset fetches
//   - ENCODING_FAILED: the raster or document could not be produced
//   - VIEWER_BLOCKED: the print document could not be opened
//
// # Usage
//
//	err := errors.New(errors.ErrCodeTemplateNotFound, "unknown template %q", id)
//	if errors.Is(err, errors.ErrCodeTemplateNotFound) {
//	    // list the available templates
//	}
//
//	err = errors.Wrap(errors.ErrCodeEncodingFailed, encErr, "encode png")
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

const (
	// Input validation
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"
	ErrCodeInvalidTemplate Code = "INVALID_TEMPLATE"
	ErrCodeInvalidPath     Code = "INVALID_PATH"

	// Missing resources
	ErrCodeNotFound         Code = "NOT_FOUND"
	ErrCodeTemplateNotFound Code = "TEMPLATE_NOT_FOUND"
	ErrCodeFileNotFound     Code = "FILE_NOT_FOUND"

	// Asset fetching
	ErrCodeNetwork Code = "NETWORK_ERROR"
	ErrCodeTimeout Code = "TIMEOUT"

	// Output
	ErrCodeEncodingFailed Code = "ENCODING_FAILED"
	ErrCodeViewerBlocked  Code = "VIEWER_BLOCKED"

	// Internal
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause. Hint is an
// optional user-actionable instruction shown after the message.
type Error struct {
	Code    Code
	Message string
	Hint    string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithHint returns e with a user-actionable hint attached.
func (e *Error) WithHint(hint string) *Error {
	e.Hint = hint
	return e
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a new Error wrapping cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether the outermost *Error in err's chain has the given code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from err, or "" if err carries none.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns the message for display: the message and hint of
// an *Error without the code prefix, or err's text otherwise.
func UserMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return err.Error()
	}
	if e.Hint != "" {
		return e.Message + ". " + e.Hint
	}
	return e.Message
}
