package user

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("user not found")
	ErrDuplicateUsername = errors.New("username already exists")
	ErrDuplicateEmail    = errors.New("email already exists")
	ErrCacheMiss         = errors.New("profile not cached")

	// ErrIncompleteProfile marks a users row stored without its personal_info row.
	ErrIncompleteProfile = errors.New("user has no personal_info")
)

// ValidationError reports the first invalid field of a profile payload.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
