// Package usecase implements the business logic for the auth feature.
package usecase

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUserNotFound is returned when a user cannot be found by email or ID.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailTaken is returned by repositories when the unique email index rejects a write.
	ErrEmailTaken = errors.New("email already exists")

	// ErrInvalidCredentials is the negative result of Confirm.
	// Both unknown email and wrong password match it.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrPasswordMismatch is returned by Confirm when the email is known but the password does not verify.
	ErrPasswordMismatch = fmt.Errorf("%w: password mismatch", ErrInvalidCredentials)
)

// FieldError describes one failed constraint on one attribute.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError enumerates every constraint a write violated.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Add records a failure for field.
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// Has reports whether field failed at least one constraint.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// orNil returns nil when nothing failed so callers can return it directly.
func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}
