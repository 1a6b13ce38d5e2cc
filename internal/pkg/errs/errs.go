// Package errs defines the error kinds shared by the registration service,
// the import reconciler and the repositories.
package errs

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

type Kind int

const (
	Validation Kind = iota + 1
	NotFound
	Conflict
	Ineligible
	Integrity
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case NotFound:
		return "not found"
	case Conflict:
		return "conflict"
	case Ineligible:
		return "ineligible"
	case Integrity:
		return "integrity"
	}
	return "unknown"
}

// Error is a domain error of a known kind. Message is shown to the user; Err
// keeps the underlying cause for logs.
type Error struct {
	Kind    Kind
	Message string
	Err     error
	fields  []string
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches kind and a user facing message to err.
func Wrap(kind Kind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// WithFields returns a validation error carrying a list of detail lines.
func WithFields(message string, fields []string) *Error {
	return &Error{Kind: Validation, Message: message, fields: fields}
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Fields() []string {
	return e.fields
}

func (e *Error) StatusCode() int {
	switch e.Kind {
	case Validation:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case Conflict, Integrity:
		return http.StatusConflict
	case Ineligible:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// KindOf returns the kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// Is reports whether err's chain holds an *Error of the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
