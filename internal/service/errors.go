package service

import "errors"

var (
	// ErrUnauthorized covers every reason a session is rejected. The
	// underlying cause (token kind, missing user) stays wrapped for logging.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidCredentials is returned for an unknown email and for a wrong
	// password alike.
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrEmailTaken   = errors.New("email already registered")
	ErrTaskNotFound = errors.New("task not found")
	ErrUserNotFound = errors.New("user not found")
)

// ValidationError carries the first failed rule of an input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Message: msg}
}
