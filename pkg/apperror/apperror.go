// Package apperror defines the error kinds surfaced by services to callers.
package apperror

import "errors"

// Kind classifies an error for the caller
type Kind string

const (
	InvalidInput Kind = "INVALID_INPUT"
	NotFound     Kind = "NOT_FOUND"
	Forbidden    Kind = "FORBIDDEN"
	Conflict     Kind = "CONFLICT"
	Internal     Kind = "INTERNAL"
)

// Error is a service error with a caller-safe message
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// New creates an error of the given kind. Errors created at package level
// can be compared with errors.Is.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// KindOf returns the kind of err, or Internal for anything that is not an *Error
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Is reports whether err carries the given kind
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
