package errors

import (
	"errors"
	"net/http"
)

// Error attaches an HTTP status code to an underlying error.
type Error struct {
	err        error
	statusCode int
}

type ErrorOpt func(e *Error)

func WithBadRequest() ErrorOpt {
	return WithStatusCode(http.StatusBadRequest)
}

func WithNotFound() ErrorOpt {
	return WithStatusCode(http.StatusNotFound)
}

func WithBadGateway() ErrorOpt {
	return WithStatusCode(http.StatusBadGateway)
}

func WithUnprocessable() ErrorOpt {
	return WithStatusCode(http.StatusUnprocessableEntity)
}

func WithStatusCode(code int) ErrorOpt {
	return func(e *Error) {
		e.statusCode = code
	}
}

// Wrap classifies err. Without options the status is 500.
func Wrap(err error, opts ...ErrorOpt) error {
	if err == nil {
		return nil
	}

	e := &Error{
		err:        err,
		statusCode: http.StatusInternalServerError,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Error) Error() string {
	return e.err.Error()
}

func (e *Error) Unwrap() error {
	return e.err
}

func (e *Error) StatusCode() int {
	return e.statusCode
}

// StatusCode returns the status attached by Wrap, or 500.
func StatusCode(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.statusCode
	}
	return http.StatusInternalServerError
}
