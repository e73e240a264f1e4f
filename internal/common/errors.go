// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Domain error taxonomy. Every failure surfaced by the ledger core wraps one
// of these sentinels so the HTTP layer can map it to a status code.
var (
	// ErrNotFound indicates a referenced entity id does not resolve.
	ErrNotFound = errors.New("not found")
	// ErrForbidden indicates the entity exists but is owned by another user.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidArgument indicates malformed input or a business-rule violation.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrConflict indicates a delete blocked by dependents or a duplicate
	// unique value (account name, category name+type, email).
	ErrConflict = errors.New("conflict")
	// ErrInvalidCredentials indicates a failed login attempt.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// NotFoundf wraps ErrNotFound with a formatted detail message.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// Forbiddenf wraps ErrForbidden with a formatted detail message.
func Forbiddenf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrForbidden, fmt.Sprintf(format, args...))
}

// InvalidArgumentf wraps ErrInvalidArgument with a formatted detail message.
func InvalidArgumentf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// Conflictf wraps ErrConflict with a formatted detail message.
func Conflictf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}
