package model

import "errors"

var (
	// Session related errors
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrNoToken      = errors.New("no token received from server")

	// Access related errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Lookup related errors
	ErrRoomNotFound    = errors.New("room not found")
	ErrBookingNotFound = errors.New("booking not found")
	ErrUserNotFound    = errors.New("user not found")

	// Generic errors
	ErrInvalidInput = errors.New("invalid input")
)

// ValidationError is a form problem caught before any backend call. Message
// is shown to the visitor as is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

func Invalid(field string, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
