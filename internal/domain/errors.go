package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for simple conditions without extra context.
var (
	ErrListingNotFound = errors.New("listing not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrUnauthenticated = errors.New("authentication required")
)

// ForbiddenError is returned when the actor's role may not perform the request.
type ForbiddenError struct {
	Role   Role
	Action string
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("role %q may not %s", e.Role, e.Action)
}

// TransitionError is returned when an action has no edge from the current status.
// Replaying an already processed action produces this error.
type TransitionError struct {
	Action  Action
	Current Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("action %q is not valid from status %q", e.Action, e.Current)
}

// InvalidStateError is returned when a listing can no longer be deleted.
type InvalidStateError struct {
	ID      string
	Current Status
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("listing %s cannot be removed in status %q", e.ID, e.Current)
}

// ConcurrentModificationError is returned when a listing's status changed
// between the read and the guarded write.
type ConcurrentModificationError struct {
	ID       string
	Expected Status
	Actual   Status
}

func (e *ConcurrentModificationError) Error() string {
	if e.Actual == "" {
		return fmt.Sprintf("listing %s changed concurrently (expected status %q)", e.ID, e.Expected)
	}
	return fmt.Sprintf("listing %s changed concurrently (expected status %q, found %q)", e.ID, e.Expected, e.Actual)
}

// ValidationError lists the submission fields that are missing or malformed.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "invalid or missing fields: " + strings.Join(e.Fields, ", ")
}

// EmailConflictError is returned when an email address is already registered.
type EmailConflictError struct {
	Email string
}

func (e *EmailConflictError) Error() string {
	return fmt.Sprintf("email %q is already registered", e.Email)
}

// StorageError wraps an unexpected failure of the persistence layer.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
