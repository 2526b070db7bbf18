package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrVersionConflict is returned by repositories when an optimistic write loses
// the race against a concurrent update of the same aggregate.
var ErrVersionConflict = errors.New("aggregate was modified concurrently")

// RideNotFoundError reports a lookup miss for a ride id.
type RideNotFoundError struct {
	RideID int64
}

func (e *RideNotFoundError) Error() string {
	return fmt.Sprintf("ride %d not found", e.RideID)
}

// BookingError reports a seat, availability or status violation on a ride.
type BookingError struct {
	RideID int64
	Reason string
}

func (e *BookingError) Error() string {
	return fmt.Sprintf("booking failed for ride %d: %s", e.RideID, e.Reason)
}

// UnauthorizedError reports an ownership or permission violation.
type UnauthorizedError struct {
	UserID   int64
	Action   string
	Resource string
}

func (e *UnauthorizedError) Error() string {
	return fmt.Sprintf("user %d is not allowed to %s %s", e.UserID, e.Action, e.Resource)
}

// ValidationError carries field-level input violations.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = message
}

func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

func (e *ValidationError) Error() string {
	var messages []string
	for field, msg := range e.Fields {
		messages = append(messages, fmt.Sprintf("%s: %s", field, msg))
	}
	return strings.Join(messages, "; ")
}

// ConnectionError reports a storage transport failure.
type ConnectionError struct {
	Store string
	Err   error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s connection failed: %v", e.Store, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// QueryError reports a failed read against a storage engine.
type QueryError struct {
	Store string
	Op    string
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s query %q failed: %v", e.Store, e.Op, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// PersistenceError reports a failed write for a specific entity.
type PersistenceError struct {
	Entity string
	ID     string
	Err    error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to persist %s %s: %v", e.Entity, e.ID, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
