// Package common defines shared constants and sentinel errors used across
// the localdate storage and service layers. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
	ErrorConflict = errors.New("already exists")

	// Validation errors (empty message content, missing required field).
	ErrorValidation = errors.New("validation error")

	// Service-level errors.
	ErrorNotLoggedIn = errors.New("not logged in")
)
