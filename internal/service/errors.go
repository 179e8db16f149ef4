package service

import (
	"errors"
	"fmt"

	"linkedapi/internal/repository"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAlreadyConnected   = errors.New("already connected or requested")
	ErrSelfConnection     = errors.New("cannot connect to yourself")
	ErrConflict           = errors.New("document was modified concurrently, try again")
	ErrMediaUnavailable   = errors.New("media storage is not configured")
	ErrNotImage           = errors.New("file must be an image")
	ErrInvalidQuery       = errors.New("invalid query")
)

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned when input fails validation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s %s", e.Fields[0].Field, e.Fields[0].Message)
}

func invalidField(field, msg string) error {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: msg}}}
}

// notFound maps a repository miss to ErrNotFound naming what was looked up.
func notFound(what string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%s %w", what, ErrNotFound)
	}
	return err
}
