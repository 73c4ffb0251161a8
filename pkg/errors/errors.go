// Package errors provides structured application errors with error codes,
// messages and cause chains shared across all casegraph modules.
package errors

import (
	stderrors "errors"
	"fmt"
	"runtime"
	"strings"
)

// AppError is the canonical error type used across the engine.
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Detail  string    `json:"detail,omitempty"`
	Cause   error     `json:"-"`
	Stack   string    `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause, supporting errors.Is/As chains.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetail returns a copy of the error with the given detail attached.
func (e *AppError) WithDetail(detail string) *AppError {
	clone := *e
	clone.Detail = detail
	return &clone
}

// WithDetailf returns a copy of the error with a formatted detail attached.
func (e *AppError) WithDetailf(format string, args ...interface{}) *AppError {
	return e.WithDetail(fmt.Sprintf(format, args...))
}

// HTTPStatus returns the HTTP status code associated with the error.
func (e *AppError) HTTPStatus() int {
	return HTTPStatusForCode(e.Code)
}

// New creates a new AppError with the given code and message. An empty
// message falls back to the code's default.
func New(code ErrorCode, message string) *AppError {
	if message == "" {
		message = DefaultMessageForCode(code)
	}
	return &AppError{
		Code:    code,
		Message: message,
		Stack:   captureStack(),
	}
}

// Newf creates a new AppError with a formatted message.
func Newf(code ErrorCode, format string, args ...interface{}) *AppError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps an existing error with a code and message. A nil err returns nil.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	if message == "" {
		message = DefaultMessageForCode(code)
	}
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
		Stack:   captureStack(),
	}
}

// Wrapf wraps an existing error with a code and formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *AppError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// GetCode extracts the ErrorCode from an error chain. Errors that are not
// AppErrors report CodeUnknown; nil reports CodeOK.
func GetCode(err error) ErrorCode {
	if err == nil {
		return CodeOK
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// IsCode reports whether any error in the chain carries the given code.
func IsCode(err error, code ErrorCode) bool {
	for err != nil {
		var appErr *AppError
		if stderrors.As(err, &appErr) {
			if appErr.Code == code {
				return true
			}
			err = appErr.Cause
			continue
		}
		err = stderrors.Unwrap(err)
	}
	return false
}

// IsNotFound reports whether the error represents any not-found condition.
func IsNotFound(err error) bool {
	code := GetCode(err)
	switch code {
	case ErrCodeNotFound, ErrCodeCaseNotFound, ErrCodeIncidentNotFound, ErrCodePersonNotFound:
		return true
	}
	return false
}

// AsAppError extracts an *AppError from the chain, or wraps err as an
// internal error when none is present.
func AsAppError(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, ErrCodeInternal, "")
}

func captureStack() string {
	const depth = 16
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	var b strings.Builder
	for {
		frame, more := frames.Next()
		if frame.Function != "" {
			fmt.Fprintf(&b, "%s\n\t%s:%d\n", frame.Function, frame.File, frame.Line)
		}
		if !more {
			break
		}
	}
	return b.String()
}
