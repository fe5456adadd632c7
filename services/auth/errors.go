package auth

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials is deliberately undifferentiated: callers must
	// not learn whether the email was unknown or the password wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken covers malformed, expired, and wrongly signed tokens.
	ErrInvalidToken = errors.New("invalid token")
)

// ValidationError reports a malformed registration field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// DuplicateError reports which unique field an existing account already holds.
type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s already in use", e.Field)
}
