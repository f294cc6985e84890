package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrNotFound is returned when a resource does not exist
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// NewNotFound creates a new not found error
func NewNotFound(resource, id string) *ErrNotFound {
	return &ErrNotFound{Resource: resource, ID: id}
}

// ErrInvalidStateTransition is returned when a status change is not allowed
type ErrInvalidStateTransition struct {
	From string
	To   string
}

func (e *ErrInvalidStateTransition) Error() string {
	return fmt.Sprintf("invalid state transition from %s to %s", e.From, e.To)
}

// NewInvalidStateTransition creates a new invalid state transition error
func NewInvalidStateTransition(from, to string) *ErrInvalidStateTransition {
	return &ErrInvalidStateTransition{From: from, To: to}
}

// ErrUnauthorized is returned when credentials are missing or wrong
type ErrUnauthorized struct {
	Reason string
}

func (e *ErrUnauthorized) Error() string {
	if e.Reason == "" {
		return "unauthorized"
	}
	return "unauthorized: " + e.Reason
}

// NewUnauthorized creates a new unauthorized error
func NewUnauthorized(reason string) *ErrUnauthorized {
	return &ErrUnauthorized{Reason: reason}
}

// IsNotFound reports whether err wraps an *ErrNotFound
func IsNotFound(err error) bool {
	var target *ErrNotFound
	return stderrors.As(err, &target)
}

// IsInvalidStateTransition reports whether err wraps an *ErrInvalidStateTransition
func IsInvalidStateTransition(err error) bool {
	var target *ErrInvalidStateTransition
	return stderrors.As(err, &target)
}

// IsUnauthorized reports whether err wraps an *ErrUnauthorized
func IsUnauthorized(err error) bool {
	var target *ErrUnauthorized
	return stderrors.As(err, &target)
}
