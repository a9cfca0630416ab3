// Package usecase implements the business logic for the identity feature.
package usecase

import (
	"errors"
	"fmt"
)

var (
	// ErrIdentityNotFound is returned when no identity matches the given email or ID.
	ErrIdentityNotFound = errors.New("identity not found")

	// ErrEmailAlreadyExists is returned when registering an email that is already taken.
	ErrEmailAlreadyExists = errors.New("email already exists")

	// ErrNoCredential is returned when an identity exists but has no PIN set.
	// This is a data-integrity edge case, not a normal authentication failure.
	ErrNoCredential = errors.New("no PIN is set for this identity")

	// ErrPINMismatch is returned when the supplied PIN does not match the stored credential.
	ErrPINMismatch = errors.New("incorrect PIN")
)

// ValidationError reports a malformed or out-of-range input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
