package models

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by storage when a document id is absent.
var ErrNotFound = errors.New("not found")

// ValidationError reports malformed or missing input. Field uses paths such
// as "items[0].quantity" when the offending field is known.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NotFoundError names the missing entity.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

const (
	ReasonUnknownStatus = "unknown status"
	ReasonNotAllowed    = "transition not allowed"
)

// InvalidStatusError rejects a status change, either because the target is
// not a recognised label or because the transition table forbids it.
type InvalidStatusError struct {
	Status string
	From   string
	Reason string
}

func (e *InvalidStatusError) Error() string {
	if e.Reason == ReasonNotAllowed {
		return fmt.Sprintf("invalid status transition %q -> %q", e.From, e.Status)
	}
	return fmt.Sprintf("invalid status %q", e.Status)
}
