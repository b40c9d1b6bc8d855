// Package common defines shared constants and sentinel errors used across
// the TaskMarket data layer. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Store-level errors.
	ErrNotFound = errors.New("not found")

	// Service-level errors.
	ErrUnauthorized = errors.New("unauthorized")

	// Validation errors. Services wrap these with field context via %w so
	// the caller can still match with errors.Is.
	ErrValidation         = errors.New("validation error")
	ErrDuplicateUsername  = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrNoPermits          = errors.New("no posting permits left")
	ErrNotSignedIn        = errors.New("not signed in")
)
