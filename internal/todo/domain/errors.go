package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrTodoNotFound is returned for missing todos and todos owned by someone else.
	ErrTodoNotFound = errors.New("todo not found")
)

// ValidationError reports a rejected field value.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
