package store

import (
	"context"

	"github.com/371050/study-pwa/internal/domain"
)

// ReviewStore persists reviews. Within a unit, ReviewNo and DoneDate are each
// unique, and UnitID must reference an existing unit.
type ReviewStore interface {
	// Insert stores a new review and sets its ID. Returns ErrReviewNoExists,
	// ErrReviewDateExists or ErrInvalidReference on constraint violations.
	Insert(ctx context.Context, r *domain.Review) error

	// Get returns the review with the given id, or ErrReviewNotFound.
	Get(ctx context.Context, id int64) (*domain.Review, error)

	// GetAll returns every review ordered by id.
	GetAll(ctx context.Context) ([]domain.Review, error)

	// FindByUnitNo returns the unit's review with the given number, or ErrReviewNotFound.
	FindByUnitNo(ctx context.Context, unitID int64, no int) (*domain.Review, error)

	// FindByUnitDate returns the unit's review on the given date, or ErrReviewNotFound.
	FindByUnitDate(ctx context.Context, unitID int64, date string) (*domain.Review, error)

	// ListByUnit returns the unit's reviews ordered by (ReviewNo, DoneDate, ID).
	ListByUnit(ctx context.Context, unitID int64) ([]domain.Review, error)

	// Put inserts or replaces the review with r.ID, keeping the id.
	// Uniqueness is checked against the unit's other reviews.
	Put(ctx context.Context, r *domain.Review) error

	// Delete removes the review. Deleting a missing review is not an error.
	Delete(ctx context.Context, id int64) error

	// DeleteByUnit removes every review of the unit and returns how many were removed.
	DeleteByUnit(ctx context.Context, unitID int64) (int, error)

	// Clear removes every review.
	Clear(ctx context.Context) error
}
