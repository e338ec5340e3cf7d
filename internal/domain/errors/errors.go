package errors

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrAlreadyExists      = errors.New("already exists")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidTransition  = errors.New("invalid status transition")
)

// ValidationError rejects a request before any storage access.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// RateLimitError reports that a phone placed too many orders within the window.
type RateLimitError struct {
	Count  int
	Limit  int
	Window time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("too many orders: %d in the last %s (limit %d)", e.Count, e.Window, e.Limit)
}

// StorageError wraps a failed write that aborted a submission step.
type StorageError struct {
	Step string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure at %s: %v", e.Step, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// CompensationError is logged when an order could not be removed after its lines failed.
type CompensationError struct {
	OrderID uuid.UUID
	Err     error
}

func (e *CompensationError) Error() string {
	return fmt.Sprintf("compensate order %s: %v", e.OrderID, e.Err)
}

func (e *CompensationError) Unwrap() error { return e.Err }

// DispatchError describes a notification that was not delivered to the provider.
// Code and Message are set when the provider answered with a rejection.
type DispatchError struct {
	Code    string
	Message string
	Err     error
}

func (e *DispatchError) Error() string {
	switch {
	case e.Code != "" || e.Message != "":
		return fmt.Sprintf("dispatch rejected (%s): %s", e.Code, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("dispatch failed: %v", e.Err)
	default:
		return "dispatch failed"
	}
}

func (e *DispatchError) Unwrap() error { return e.Err }
