// Package common contains shared constants and sentinel errors used across
// adminpanel components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Identity store errors. ErrorInvalidCredentials covers both "unknown
	// email" and "wrong password" so callers cannot tell which emails are
	// registered.
	ErrorEmailAlreadyExists = errors.New("email already exists")
	ErrorInvalidCredentials = errors.New("invalid email or password")
	ErrorNoActiveSession    = errors.New("no active session")

	// Validation errors.
	ErrorValidation = errors.New("validation error")
)
