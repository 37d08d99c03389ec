package service

import (
	"errors"
	"fmt"
)

// Service errors that callers may check for with errors.Is().
//
// Error handling principles:
// 1. Validation failures are the domain sentinels (domain.ErrValidation and friends)
// 2. Conflicts and missing records are the store sentinels (store.ErrDuplicate, store.ErrNotFound)
// 3. Everything is wrapped in a ServiceError naming the failed operation
// 4. The API layer maps the sentinels to HTTP status codes
var (
	// ErrReviewUnitMismatch indicates an update named a unit the review does not belong to.
	// API layer should map this to HTTP 422 Unprocessable Entity.
	ErrReviewUnitMismatch = errors.New("review belongs to another unit")
)

// ServiceError is returned by every service operation that fails.
type ServiceError struct {
	Service   string
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s service %s failed: %s: %v", e.Service, e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s service %s failed: %s", e.Service, e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
func NewServiceError(service, operation, message string, err error) *ServiceError {
	return &ServiceError{
		Service:   service,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
