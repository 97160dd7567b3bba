package domain

import "errors"

var (
	// ErrUserExists is returned when the email or username is already registered
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidCredentials is the single login failure, whatever the cause
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUserNotFound is returned when no user matches the lookup
	ErrUserNotFound = errors.New("user not found")
	// ErrTaskNotFound covers both a missing task and one owned by another user
	ErrTaskNotFound = errors.New("task not found")
)

// ValidationError reports malformed or missing client input.
// Its message is safe to return to the caller.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a ValidationError with the given message
func NewValidationError(message string) error {
	return &ValidationError{Message: message}
}

// IsValidation reports whether err is, or wraps, a ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
