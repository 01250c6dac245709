package faults

import (
	"context"
	"errors"
	"fmt"
)

// Validation kinds. Every precondition failure in the lifecycle engine
// maps to exactly one of these.
const (
	KindNotFound            = "not_found"
	KindSpecMismatch        = "spec_mismatch"
	KindAlreadyPaired       = "already_paired"
	KindNotPaired           = "not_paired"
	KindNonPairableCategory = "non_pairable_category"
	KindOwnershipMismatch   = "ownership_mismatch"
	KindIdentifierReused    = "identifier_reused"
	KindCheckedOut          = "checked_out"
	KindInCalibration       = "in_calibration"
	KindPendingQC           = "pending_qc"
	KindReasonRequired      = "reason_required"
	KindIncompleteSet       = "incomplete_set"
)

// ValidationError is a user-correctable precondition failure. Detected
// before any mutation; the enclosing transaction rolls back clean.
type ValidationError struct {
	Kind     string
	Field    string
	Expected string
	Actual   string
	Message  string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Validation builds a ValidationError with a display-ready message.
func Validation(kind, field, expected, actual, format string, args ...interface{}) *ValidationError {
	return &ValidationError{
		Kind:     kind,
		Field:    field,
		Expected: expected,
		Actual:   actual,
		Message:  fmt.Sprintf(format, args...),
	}
}

// ConfigurationError signals missing operator-managed configuration
// (e.g. no identifier sequence row for a category). Not retryable.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return e.Message
}

// TransientError wraps storage failures that are safe to retry with
// backoff (lock timeout, lost connection, caller deadline).
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return "transient storage failure: " + e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// PersistenceError wraps unexpected storage faults. Logged with context
// by the caller and surfaced opaque.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return "persistence failure: " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// Classify maps a raw storage error to the taxonomy. Business errors
// pass through untouched.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	var (
		v *ValidationError
		c *ConfigurationError
		t *TransientError
		p *PersistenceError
	)
	if errors.As(err, &v) || errors.As(err, &c) || errors.As(err, &t) || errors.As(err, &p) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &TransientError{Err: err}
	}
	return &PersistenceError{Err: err}
}
