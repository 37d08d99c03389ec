package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when a write would violate a unique index.
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidReference is returned when a unit points at a missing subject
	// or a review points at a missing unit, and when deleting a record that is
	// still referenced.
	ErrInvalidReference = errors.New("invalid reference")

	// ErrTransactionFailed is returned when a transaction cannot be started
	// or committed.
	ErrTransactionFailed = errors.New("transaction failed")

	// Entity-specific "not found" errors

	// ErrSubjectNotFound indicates that the requested subject does not exist.
	ErrSubjectNotFound = fmt.Errorf("%w: subject", ErrNotFound)

	// ErrUnitNotFound indicates that the requested unit does not exist.
	ErrUnitNotFound = fmt.Errorf("%w: unit", ErrNotFound)

	// ErrReviewNotFound indicates that the requested review does not exist.
	ErrReviewNotFound = fmt.Errorf("%w: review", ErrNotFound)

	// Entity-specific "duplicate" errors

	// ErrSubjectNameExists indicates that another subject already has the name.
	ErrSubjectNameExists = fmt.Errorf("%w: subject name", ErrDuplicate)

	// ErrUnitCodeExists indicates that the subject already has a unit with the code.
	ErrUnitCodeExists = fmt.Errorf("%w: unit code", ErrDuplicate)

	// ErrReviewNoExists indicates that the unit already has a review with the number.
	ErrReviewNoExists = fmt.Errorf("%w: review number", ErrDuplicate)

	// ErrReviewDateExists indicates that the unit already has a review on the date.
	ErrReviewDateExists = fmt.Errorf("%w: review date", ErrDuplicate)
)

// IsNotFoundError reports whether err is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError reports whether err is any kind of "duplicate" error.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// StoreError is a custom error type for store-specific errors with additional context.
type StoreError struct {
	Entity    string // The entity type (e.g., "subject", "review")
	Operation string // The operation that failed (e.g., "insert", "put")
	Message   string // Error message
	Err       error  // Original error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf(
			"%s operation on %s failed: %s: %v",
			e.Operation,
			e.Entity,
			e.Message,
			e.Err,
		)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError with the given entity, operation, message, and wrapped error.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
