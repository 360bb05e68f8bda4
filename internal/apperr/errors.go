// Package apperr defines the error kinds shared by the study services.
// Transport layers map them to status codes; callers use errors.As.
package apperr

import (
	"errors"
	"fmt"
)

// ValidationError indicates malformed input: an unknown mode, combine mode,
// favorite level, answer key, or an id that does not fit its parent.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid input: " + e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError indicates a catalog entity or attempt that does not exist.
type NotFoundError struct {
	Kind string
	ID   any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", e.Kind, e.ID)
}

// StorageError wraps a persistence failure. It is never retried here;
// the caller decides whether to try again.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Invalid returns a *ValidationError for field.
func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// NotFound returns a *NotFoundError.
func NotFound(kind string, id any) error {
	return &NotFoundError{Kind: kind, ID: id}
}

// Storage wraps err as a *StorageError. It returns nil for a nil err and
// passes through errors that already carry one of the kinds above.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsValidation(err) || IsNotFound(err) || IsStorage(err) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

// IsValidation reports whether err wraps a *ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsNotFound reports whether err wraps a *NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsStorage reports whether err wraps a *StorageError.
func IsStorage(err error) bool {
	var target *StorageError
	return errors.As(err, &target)
}
