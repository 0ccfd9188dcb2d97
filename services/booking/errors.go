package booking

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrSessionNotFound is returned when a booking session id is unknown or the
// session expired in Redis.
var ErrSessionNotFound = errors.New("booking session not found or expired")

// ErrTentativeExists is returned when a candidate is proposed while the
// session still holds an earlier tentative selection.
var ErrTentativeExists = errors.New("a tentative selection already exists; clear it before selecting again")

// ValidationError reports rejected input before any store access.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

func NewValidationError(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// ConflictError reports that a candidate interval overlaps an existing
// blocking event on the same equipment. RequiredDuration lets the caller tell
// the patient how much free time the procedure actually needs.
type ConflictError struct {
	Equipment        primitive.ObjectID
	RequiredDuration int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflictError: interval overlaps an existing event on equipment %s (procedure needs %d min)",
		e.Equipment.Hex(), e.RequiredDuration)
}

// PersistenceError wraps a failed store operation.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
