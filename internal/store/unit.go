package store

import (
	"context"

	"github.com/371050/study-pwa/internal/domain"
)

// UnitStore persists units. (SubjectID, UnitCode) is unique and SubjectID
// must reference an existing subject.
type UnitStore interface {
	// Insert stores a new unit and sets its ID.
	// Returns ErrUnitCodeExists or ErrInvalidReference on constraint violations.
	Insert(ctx context.Context, u *domain.Unit) error

	// Get returns the unit with the given id, or ErrUnitNotFound.
	Get(ctx context.Context, id int64) (*domain.Unit, error)

	// GetAll returns every unit ordered by id.
	GetAll(ctx context.Context) ([]domain.Unit, error)

	// FindBySubjectCode returns the unit with the given code in the subject,
	// or ErrUnitNotFound.
	FindBySubjectCode(ctx context.Context, subjectID int64, code string) (*domain.Unit, error)

	// ListBySubject returns the subject's units ordered by id.
	ListBySubject(ctx context.Context, subjectID int64) ([]domain.Unit, error)

	// Put inserts or replaces the unit with u.ID, keeping the id.
	Put(ctx context.Context, u *domain.Unit) error

	// Delete removes the unit. Deleting a missing unit is not an error;
	// deleting one that still has reviews returns ErrInvalidReference, so
	// callers delete the reviews first within the same transaction.
	Delete(ctx context.Context, id int64) error

	// Clear removes every unit. Reviews must be cleared first.
	Clear(ctx context.Context) error
}
