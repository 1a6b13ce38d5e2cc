package web

import (
	"net/http"

	"github.com/pkg/errors"
)

// Error is an error with an HTTP status that is safe to show to the client.
type Error struct {
	Err    error
	Status int
}

// NewRequestError wraps err with the status the client should receive.
func NewRequestError(err error, status int) error {
	return &Error{Err: err, Status: status}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return http.StatusText(e.Status)
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) StatusCode() int {
	return e.Status
}

// StatusOf resolves the status code and client message for err. The first
// error in the chain that reports a status code wins.
func StatusOf(err error) (int, string) {
	if err == nil {
		return http.StatusOK, ""
	}

	var coded interface{ StatusCode() int }
	if errors.As(err, &coded) {
		status := coded.StatusCode()
		if status >= http.StatusInternalServerError {
			return status, http.StatusText(status)
		}
		return status, err.Error()
	}

	return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
}

// IsRequestError reports whether err carries a client facing status.
func IsRequestError(err error) bool {
	var re *Error
	return errors.As(err, &re)
}
