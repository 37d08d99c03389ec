package store

import (
	"context"

	"github.com/371050/study-pwa/internal/domain"
)

// SubjectStore persists subjects. Names are unique.
type SubjectStore interface {
	// Insert stores a new subject and sets its ID.
	// Returns ErrSubjectNameExists if the name is taken.
	Insert(ctx context.Context, s *domain.Subject) error

	// Get returns the subject with the given id, or ErrSubjectNotFound.
	Get(ctx context.Context, id int64) (*domain.Subject, error)

	// GetAll returns every subject ordered by id.
	GetAll(ctx context.Context) ([]domain.Subject, error)

	// FindByName returns the subject with the given name, or ErrSubjectNotFound.
	FindByName(ctx context.Context, name string) (*domain.Subject, error)

	// Put inserts or replaces the subject with s.ID, keeping the id.
	// Uniqueness is checked against every other subject.
	Put(ctx context.Context, s *domain.Subject) error

	// Delete removes the subject. Deleting a missing subject is not an error;
	// deleting one that still has units returns ErrInvalidReference.
	Delete(ctx context.Context, id int64) error

	// Clear removes every subject. Units must be cleared first.
	Clear(ctx context.Context) error
}
