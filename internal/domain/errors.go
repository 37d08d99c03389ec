package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when input fails validation. Specific
	// validation errors wrap it, so errors.Is(err, ErrValidation) holds for
	// all of them.
	ErrValidation = errors.New("validation failed")

	// ErrFormat is returned when a snapshot document is malformed.
	ErrFormat = errors.New("invalid snapshot format")
)

// Validation errors for individual fields.
var (
	// ErrSubjectNameEmpty is returned when a subject name is blank.
	ErrSubjectNameEmpty = fmt.Errorf("%w: subject name cannot be empty", ErrValidation)

	// ErrUnitCodeInvalid is returned when a unit code is not of the form "<digits>-<digits>".
	ErrUnitCodeInvalid = fmt.Errorf("%w: unit code must look like 1-1", ErrValidation)

	// ErrReviewNoInvalid is returned when a review number is not a positive integer.
	ErrReviewNoInvalid = fmt.Errorf("%w: review number must be a positive integer", ErrValidation)

	// ErrDoneDateInvalid is returned when a review date is missing or not YYYY-MM-DD.
	ErrDoneDateInvalid = fmt.Errorf("%w: done date must be a YYYY-MM-DD date", ErrValidation)

	// ErrIDInvalid is returned when an entity reference is not a positive id.
	ErrIDInvalid = fmt.Errorf("%w: id must be positive", ErrValidation)

	// ErrDirectionInvalid is returned when a subject move direction is not -1 or +1.
	ErrDirectionInvalid = fmt.Errorf("%w: direction must be -1 or 1", ErrValidation)
)

// FormatError describes why a snapshot document was rejected. It always
// matches ErrFormat via errors.Is.
type FormatError struct {
	Problems []string
}

// Error implements the error interface.
func (e *FormatError) Error() string {
	if len(e.Problems) == 0 {
		return ErrFormat.Error()
	}
	msg := ErrFormat.Error() + ": " + e.Problems[0]
	if len(e.Problems) > 1 {
		msg += fmt.Sprintf(" (and %d more)", len(e.Problems)-1)
	}
	return msg
}

// Is reports whether target is ErrFormat.
func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}
