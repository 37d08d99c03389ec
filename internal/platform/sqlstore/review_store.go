package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/371050/study-pwa/internal/domain"
	"github.com/371050/study-pwa/internal/platform/logger"
	"github.com/371050/study-pwa/internal/store"
)

// ReviewStore implements store.ReviewStore.
type ReviewStore struct {
	q      querier
	logger *slog.Logger
}

var _ store.ReviewStore = (*ReviewStore)(nil)

const reviewColumns = "id, unit_id, review_no, done_date, created_at"

func scanReview(row rowScanner) (*domain.Review, error) {
	var r domain.Review
	if err := row.Scan(&r.ID, &r.UnitID, &r.ReviewNo, &r.DoneDate, &r.CreatedAt); err != nil {
		return nil, err
	}
	r.CreatedAt = timestamp(r.CreatedAt)
	return &r, nil
}

// Insert implements store.ReviewStore.
func (s *ReviewStore) Insert(ctx context.Context, review *domain.Review) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := review.Validate(); err != nil {
		return err
	}

	err := s.q.queryRow(ctx,
		"INSERT INTO reviews (unit_id, review_no, done_date, created_at) VALUES (?, ?, ?, ?) RETURNING id",
		review.UnitID, review.ReviewNo, review.DoneDate, review.CreatedAt,
	).Scan(&review.ID)
	if err != nil {
		err = MapError(err)
		log.Warn("failed to insert review",
			slog.String("error", err.Error()),
			slog.Int64("unit_id", review.UnitID),
			slog.Int("review_no", review.ReviewNo),
			slog.String("done_date", review.DoneDate))
		return store.NewStoreError("review", "insert", "could not insert review", err)
	}

	log.Debug("review inserted",
		slog.Int64("review_id", review.ID),
		slog.Int64("unit_id", review.UnitID))
	return nil
}

// Get implements store.ReviewStore.
func (s *ReviewStore) Get(ctx context.Context, id int64) (*domain.Review, error) {
	review, err := scanReview(s.q.queryRow(ctx, "SELECT "+reviewColumns+" FROM reviews WHERE id = ?", id))
	if err != nil {
		return nil, s.notFound(err)
	}
	return review, nil
}

// GetAll implements store.ReviewStore.
func (s *ReviewStore) GetAll(ctx context.Context) ([]domain.Review, error) {
	return s.list(ctx, "SELECT "+reviewColumns+" FROM reviews ORDER BY id")
}

// FindByUnitNo implements store.ReviewStore.
func (s *ReviewStore) FindByUnitNo(ctx context.Context, unitID int64, no int) (*domain.Review, error) {
	review, err := scanReview(s.q.queryRow(ctx,
		"SELECT "+reviewColumns+" FROM reviews WHERE unit_id = ? AND review_no = ?", unitID, no))
	if err != nil {
		return nil, s.notFound(err)
	}
	return review, nil
}

// FindByUnitDate implements store.ReviewStore.
func (s *ReviewStore) FindByUnitDate(ctx context.Context, unitID int64, date string) (*domain.Review, error) {
	review, err := scanReview(s.q.queryRow(ctx,
		"SELECT "+reviewColumns+" FROM reviews WHERE unit_id = ? AND done_date = ?", unitID, date))
	if err != nil {
		return nil, s.notFound(err)
	}
	return review, nil
}

// ListByUnit implements store.ReviewStore.
func (s *ReviewStore) ListByUnit(ctx context.Context, unitID int64) ([]domain.Review, error) {
	return s.list(ctx,
		"SELECT "+reviewColumns+" FROM reviews WHERE unit_id = ? ORDER BY review_no, done_date, id",
		unitID)
}

func (s *ReviewStore) list(ctx context.Context, query string, args ...any) ([]domain.Review, error) {
	rows, err := s.q.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	reviews := []domain.Review{}
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, *review)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", MapError(err))
	}
	return reviews, nil
}

// Put implements store.ReviewStore.
func (s *ReviewStore) Put(ctx context.Context, review *domain.Review) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if review.ID <= 0 {
		return domain.ErrIDInvalid
	}
	if err := review.Validate(); err != nil {
		return err
	}

	_, err := s.q.exec(ctx, `
		INSERT INTO reviews (id, unit_id, review_no, done_date, created_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			unit_id = excluded.unit_id,
			review_no = excluded.review_no,
			done_date = excluded.done_date,
			created_at = excluded.created_at`,
		review.ID, review.UnitID, review.ReviewNo, review.DoneDate, review.CreatedAt,
	)
	if err != nil {
		err = MapError(err)
		log.Warn("failed to put review",
			slog.String("error", err.Error()),
			slog.Int64("review_id", review.ID))
		return store.NewStoreError("review", "put", "could not write review", err)
	}
	return nil
}

// Delete implements store.ReviewStore.
func (s *ReviewStore) Delete(ctx context.Context, id int64) error {
	if _, err := s.q.exec(ctx, "DELETE FROM reviews WHERE id = ?", id); err != nil {
		return store.NewStoreError("review", "delete", "could not delete review", MapError(err))
	}
	return nil
}

// DeleteByUnit implements store.ReviewStore.
func (s *ReviewStore) DeleteByUnit(ctx context.Context, unitID int64) (int, error) {
	res, err := s.q.exec(ctx, "DELETE FROM reviews WHERE unit_id = ?", unitID)
	if err != nil {
		return 0, store.NewStoreError("review", "delete", "could not delete unit reviews", MapError(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return int(n), nil
}

// Clear implements store.ReviewStore.
func (s *ReviewStore) Clear(ctx context.Context) error {
	if _, err := s.q.exec(ctx, "DELETE FROM reviews"); err != nil {
		return store.NewStoreError("review", "clear", "could not clear reviews", MapError(err))
	}
	return nil
}

func (s *ReviewStore) notFound(err error) error {
	err = MapError(err)
	if errors.Is(err, store.ErrNotFound) {
		return store.ErrReviewNotFound
	}
	return fmt.Errorf("failed to load review: %w", err)
}
