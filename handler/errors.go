package handler

import (
	"errors"
	"net/http"
)

// ErrNilResponse indicates a handler returned nil instead of a Response.
var ErrNilResponse = errors.New("handler returned nil response")

// HTTPError is an error with a public, client-facing representation.
type HTTPError struct {
	Status      int
	Message     string
	Details     string
	FieldErrors map[string]string
	// Err is the underlying cause. It is logged, never rendered.
	Err error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// NewHTTPError creates an HTTPError.
func NewHTTPError(status int, message, details string) *HTTPError {
	return &HTTPError{Status: status, Message: message, Details: details}
}

// InternalError is the generic response for unexpected failures.
// It deliberately carries no detail about the cause.
func InternalError() *HTTPError {
	return NewHTTPError(http.StatusInternalServerError,
		"An unexpected error occurred",
		"Please contact support if the problem persists",
	)
}

// AsHTTPError finds the first HTTPError in err's chain.
func AsHTTPError(err error) (*HTTPError, bool) {
	var e *HTTPError
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Fail returns a Response that hands err to the error handler of Wrap
// instead of rendering anything itself.
func Fail(err error) Response {
	return failure{err: err}
}

type failure struct {
	err error
}

func (f failure) Render(http.ResponseWriter, *http.Request) error {
	return f.err
}
