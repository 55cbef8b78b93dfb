package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrUnauthenticated    = errors.New("authentication required")
	ErrInvalidCredentials = errors.New("invalid email/phone or password")
	ErrForbidden          = errors.New("access denied")
	ErrNotFound           = errors.New("not found")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrInvalidTransition  = errors.New("order status cannot be changed")
	ErrAccountExists      = errors.New("an account with this email or phone already exists")
	ErrWrongStep          = errors.New("action not available at this checkout step")
	ErrNoDraft            = errors.New("no checkout in progress")
	ErrUnknownField       = errors.New("unknown field")
)

// ValidationError maps field names to user-facing messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// StorageError reports a failed read or write against a repository.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageError(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}
