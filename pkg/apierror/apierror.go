package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is a failed call to the booking backend. HTTPStatus is zero when
// the request never got a response.
type APIError struct {
	Method     string `json:"method,omitempty"`
	Path       string `json:"path,omitempty"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"status"`
	Err        error  `json:"-"`
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}

	if e.HTTPStatus == 0 {
		return fmt.Sprintf("%s %s: %s", e.Method, e.Path, e.Message)
	}

	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.HTTPStatus, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

func New(method string, path string, status int, message string) *APIError {
	if message == "" {
		message = fmt.Sprintf("Error %d", status)
	}
	return &APIError{Method: method, Path: path, Message: message, HTTPStatus: status}
}

func Network(method string, path string, err error) *APIError {
	return &APIError{Method: method, Path: path, Message: "network error: could not reach the booking service", Err: err}
}

func Status(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatus
	}
	return 0
}

func IsNotFound(err error) bool {
	return Status(err) == http.StatusNotFound
}

func IsUnauthorized(err error) bool {
	status := Status(err)
	return status == http.StatusUnauthorized || status == http.StatusForbidden
}

// Message returns the server-supplied message, or fallback for anything that
// is not an APIError.
func Message(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
