// Package errs defines the structured error taxonomy shared by the engine
// and session layers.
package errs

import (
	"errors"
	"fmt"
)

// Kind categorizes an error by the operation that produced it.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindScan         Kind = "scan"
	KindQuery        Kind = "query"
	KindSheet        Kind = "sheet"
	KindExport       Kind = "export"
	KindNoActiveFile Kind = "no_active_file"
	KindSample       Kind = "sample"
	KindInternal     Kind = "internal"
)

// Error is a structured error carrying a kind and an optional cause.
// Engine diagnostics are treated as opaque strings; callers classify by
// Kind only, never by message content.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new structured error.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates a new structured error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an existing error with a kind and context message.
func Wrap(err error, kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message, Cause: err}
}

// Wrapf wraps an existing error with a formatted context message.
func Wrapf(err error, kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: err}
}

// IsKind reports whether err is a structured error of the given kind.
func IsKind(err error, kind Kind) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind == kind
	}
	return false
}

// KindOf returns the kind of a structured error, or KindInternal for
// anything else.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

// UserMessage returns the message without the kind prefix, suitable for
// transient notifications.
func UserMessage(err error) string {
	var se *Error
	if errors.As(err, &se) {
		if se.Cause != nil {
			return fmt.Sprintf("%s: %v", se.Message, se.Cause)
		}
		return se.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
