package service

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"

	"github.com/371050/study-pwa/internal/domain"
	"github.com/371050/study-pwa/internal/domain/srs"
	"github.com/371050/study-pwa/internal/events"
	"github.com/371050/study-pwa/internal/platform/logger"
	"github.com/371050/study-pwa/internal/store"
)

// LedgerService provides unit and review operations.
type LedgerService interface {
	// GetOrCreateUnit returns the id of the unit with code in the subject,
	// creating an untitled unit when none exists. Repeated calls with the
	// same pair return the same id.
	GetOrCreateUnit(ctx context.Context, subjectID int64, code string) (int64, error)

	// GetUnit returns the unit with the given id.
	GetUnit(ctx context.Context, unitID int64) (*domain.Unit, error)

	// UpdateUnitTitle overwrites the unit's title. A missing unit is a no-op.
	UpdateUnitTitle(ctx context.Context, unitID int64, title string) error

	// DeleteUnit removes the unit and all of its reviews atomically.
	// A missing unit is a no-op.
	DeleteUnit(ctx context.Context, unitID int64) error

	// ListUnitsBySubject returns the subject's units ordered by unit code,
	// each with its computed status.
	ListUnitsBySubject(ctx context.Context, subjectID int64) ([]srs.UnitStatus, error)

	// ListReviewsByUnit returns the unit's reviews ordered by (ReviewNo, DoneDate, ID).
	ListReviewsByUnit(ctx context.Context, unitID int64) ([]domain.Review, error)

	// GetNextReviewNo returns 1 for a unit without reviews, else max+1.
	GetNextReviewNo(ctx context.Context, unitID int64) (int, error)

	// InsertReview records a review. It fails with store.ErrReviewNoExists or
	// store.ErrReviewDateExists when either unique key is taken.
	InsertReview(ctx context.Context, unitID int64, no int, date string) (*domain.Review, error)

	// UpdateReview changes a review's number and date after checking them
	// against the unit's other reviews. A missing review is a no-op.
	UpdateReview(ctx context.Context, reviewID, unitID int64, no int, date string) error

	// DeleteReview removes a review. A missing review is a no-op.
	DeleteReview(ctx context.Context, reviewID int64) error

	// RenumberReviews reassigns the unit's review numbers 1..n in
	// (DoneDate, ID) order.
	RenumberReviews(ctx context.Context, unitID int64) error
}

type ledgerServiceImpl struct {
	store  store.Store
	opts   Options
	logger *slog.Logger
}

// NewLedgerService creates a new LedgerService.
// It returns an error if the store is nil.
func NewLedgerService(st store.Store, logger *slog.Logger, opts ...Option) (LedgerService, error) {
	if st == nil {
		return nil, errors.New("ledger service: store cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ledgerServiceImpl{
		store:  st,
		opts:   NewOptions(opts...),
		logger: logger.With(slog.String("component", "ledger_service")),
	}, nil
}

// GetOrCreateUnit implements LedgerService.
func (s *ledgerServiceImpl) GetOrCreateUnit(ctx context.Context, subjectID int64, code string) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	code = strings.TrimSpace(code)
	if !domain.ValidUnitCode(code) {
		return 0, NewServiceError("ledger", "get_or_create_unit", "invalid unit code", domain.ErrUnitCodeInvalid)
	}

	var (
		unit    *domain.Unit
		created bool
	)
	attempt := func() error {
		return s.store.RunInTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
			var err error
			unit, created, err = GetOrCreateUnitTx(ctx, tx, subjectID, code, s.opts.Now())
			return err
		})
	}

	err := attempt()
	if errors.Is(err, store.ErrUnitCodeExists) {
		// Another writer created the unit between our lookup and insert.
		log.Debug("unit created concurrently, retrying lookup", slog.String("unit_code", code))
		err = attempt()
	}
	if err != nil {
		log.Warn("failed to get or create unit",
			slog.String("error", err.Error()),
			slog.Int64("subject_id", subjectID),
			slog.String("unit_code", code))
		return 0, NewServiceError("ledger", "get_or_create_unit", "failed to get or create unit", err)
	}

	if created {
		log.Info("unit created",
			slog.Int64("unit_id", unit.ID),
			slog.Int64("subject_id", subjectID),
			slog.String("unit_code", code))
		s.emit(ctx, events.UnitCreated, unit)
	}
	return unit.ID, nil
}

// GetUnit implements LedgerService.
func (s *ledgerServiceImpl) GetUnit(ctx context.Context, unitID int64) (*domain.Unit, error) {
	unit, err := s.store.Units().Get(ctx, unitID)
	if err != nil {
		return nil, NewServiceError("ledger", "get_unit", "failed to load unit", err)
	}
	return unit, nil
}

// UpdateUnitTitle implements LedgerService.
func (s *ledgerServiceImpl) UpdateUnitTitle(ctx context.Context, unitID int64, title string) error {
	updated := false
	err := s.store.RunInTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		unit, err := tx.Units().Get(ctx, unitID)
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		unit.Title = title
		if err := tx.Units().Put(ctx, unit); err != nil {
			return err
		}
		updated = true
		return nil
	})
	if err != nil {
		return NewServiceError("ledger", "update_unit_title", "failed to update title", err)
	}
	if updated {
		s.emit(ctx, events.UnitRetitled, map[string]any{"unitId": unitID, "title": title})
	}
	return nil
}

// DeleteUnit implements LedgerService.
func (s *ledgerServiceImpl) DeleteUnit(ctx context.Context, unitID int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var (
		deleted bool
		reviews int
	)
	err := s.store.RunInTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		if _, err := tx.Units().Get(ctx, unitID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil
			}
			return err
		}
		n, err := tx.Reviews().DeleteByUnit(ctx, unitID)
		if err != nil {
			return err
		}
		if err := tx.Units().Delete(ctx, unitID); err != nil {
			return err
		}
		deleted, reviews = true, n
		return nil
	})
	if err != nil {
		log.Error("failed to delete unit",
			slog.String("error", err.Error()),
			slog.Int64("unit_id", unitID))
		return NewServiceError("ledger", "delete_unit", "failed to delete unit", err)
	}

	if deleted {
		log.Info("unit deleted",
			slog.Int64("unit_id", unitID),
			slog.Int("reviews_deleted", reviews))
		s.emit(ctx, events.UnitDeleted, map[string]any{"unitId": unitID, "reviews": reviews})
	}
	return nil
}

// SortUnitsByCode orders units by unit code, then id.
func SortUnitsByCode(units []domain.Unit) {
	sort.SliceStable(units, func(i, j int) bool {
		if units[i].UnitCode != units[j].UnitCode {
			return units[i].UnitCode < units[j].UnitCode
		}
		return units[i].ID < units[j].ID
	})
}

// ListUnitsBySubject implements LedgerService.
func (s *ledgerServiceImpl) ListUnitsBySubject(ctx context.Context, subjectID int64) ([]srs.UnitStatus, error) {
	if _, err := s.store.Subjects().Get(ctx, subjectID); err != nil {
		return nil, NewServiceError("ledger", "list_units", "failed to load subject", err)
	}

	units, err := s.store.Units().ListBySubject(ctx, subjectID)
	if err != nil {
		return nil, NewServiceError("ledger", "list_units", "failed to load units", err)
	}
	SortUnitsByCode(units)

	out := make([]srs.UnitStatus, 0, len(units))
	for _, u := range units {
		status, err := unitStatus(ctx, s.store.Reviews(), u.ID)
		if err != nil {
			return nil, NewServiceError("ledger", "list_units", "failed to compute unit status", err)
		}
		out = append(out, srs.UnitStatus{Unit: u, Status: status})
	}
	return out, nil
}

func unitStatus(ctx context.Context, reviews store.ReviewStore, unitID int64) (srs.Status, error) {
	list, err := reviews.ListByUnit(ctx, unitID)
	if err != nil {
		return srs.Status{}, err
	}
	return srs.ComputeStatus(list)
}

// ListReviewsByUnit implements LedgerService.
func (s *ledgerServiceImpl) ListReviewsByUnit(ctx context.Context, unitID int64) ([]domain.Review, error) {
	reviews, err := s.store.Reviews().ListByUnit(ctx, unitID)
	if err != nil {
		return nil, NewServiceError("ledger", "list_reviews", "failed to load reviews", err)
	}
	return reviews, nil
}

// GetNextReviewNo implements LedgerService.
func (s *ledgerServiceImpl) GetNextReviewNo(ctx context.Context, unitID int64) (int, error) {
	next, err := NextReviewNo(ctx, s.store.Reviews(), unitID)
	if err != nil {
		return 0, NewServiceError("ledger", "next_review_no", "failed to load reviews", err)
	}
	return next, nil
}

// InsertReview implements LedgerService.
func (s *ledgerServiceImpl) InsertReview(ctx context.Context, unitID int64, no int, date string) (*domain.Review, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	review, err := domain.NewReview(unitID, no, date, s.opts.Now())
	if err != nil {
		return nil, NewServiceError("ledger", "insert_review", "invalid review", err)
	}

	err = s.store.RunInTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		if _, err := tx.Units().Get(ctx, unitID); err != nil {
			return err
		}
		return tx.Reviews().Insert(ctx, review)
	})
	if err != nil {
		log.Warn("failed to insert review",
			slog.String("error", err.Error()),
			slog.Int64("unit_id", unitID),
			slog.Int("review_no", no),
			slog.String("done_date", date))
		return nil, NewServiceError("ledger", "insert_review", "failed to insert review", err)
	}

	log.Info("review recorded",
		slog.Int64("review_id", review.ID),
		slog.Int64("unit_id", unitID),
		slog.Int("review_no", no))
	s.emit(ctx, events.ReviewRecorded, review)
	return review, nil
}

// CheckReviewConflicts reports whether no or date is already used by one of
// the unit's reviews other than reviewID.
func CheckReviewConflicts(reviews []domain.Review, reviewID int64, no int, date string) error {
	for _, r := range reviews {
		if r.ID == reviewID {
			continue
		}
		if r.ReviewNo == no {
			return store.ErrReviewNoExists
		}
		if r.DoneDate == date {
			return store.ErrReviewDateExists
		}
	}
	return nil
}

// UpdateReview implements LedgerService.
func (s *ledgerServiceImpl) UpdateReview(ctx context.Context, reviewID, unitID int64, no int, date string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	candidate := domain.Review{ID: reviewID, UnitID: unitID, ReviewNo: no, DoneDate: date}
	if err := candidate.Validate(); err != nil {
		return NewServiceError("ledger", "update_review", "invalid review", err)
	}

	var updated *domain.Review
	err := s.store.RunInTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		review, err := tx.Reviews().Get(ctx, reviewID)
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if review.UnitID != unitID {
			return ErrReviewUnitMismatch
		}

		siblings, err := tx.Reviews().ListByUnit(ctx, unitID)
		if err != nil {
			return err
		}
		if err := CheckReviewConflicts(siblings, reviewID, no, date); err != nil {
			return err
		}

		review.ReviewNo = no
		review.DoneDate = date
		review.CreatedAt = domain.Timestamp(s.opts.Now())
		if err := tx.Reviews().Put(ctx, review); err != nil {
			return err
		}
		updated = review
		return nil
	})
	if err != nil {
		log.Warn("failed to update review",
			slog.String("error", err.Error()),
			slog.Int64("review_id", reviewID))
		return NewServiceError("ledger", "update_review", "failed to update review", err)
	}

	if updated != nil {
		s.emit(ctx, events.ReviewUpdated, updated)
	}
	return nil
}

// DeleteReview implements LedgerService.
func (s *ledgerServiceImpl) DeleteReview(ctx context.Context, reviewID int64) error {
	var deleted *domain.Review
	err := s.store.RunInTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		review, err := tx.Reviews().Get(ctx, reviewID)
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := tx.Reviews().Delete(ctx, reviewID); err != nil {
			return err
		}
		deleted = review
		return nil
	})
	if err != nil {
		return NewServiceError("ledger", "delete_review", "failed to delete review", err)
	}
	if deleted != nil {
		s.emit(ctx, events.ReviewDeleted, deleted)
	}
	return nil
}

// RenumberReviews implements LedgerService. Numbers are written in two
// passes, first above the current maximum and then 1..n, so the
// (unit, number) index never sees two reviews with the same number.
func (s *ledgerServiceImpl) RenumberReviews(ctx context.Context, unitID int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var count int
	err := s.store.RunInTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		reviews, err := tx.Reviews().ListByUnit(ctx, unitID)
		if err != nil {
			return err
		}
		if len(reviews) == 0 {
			return nil
		}
		domain.SortChronologically(reviews)

		maxNo := 0
		for _, r := range reviews {
			if r.ReviewNo > maxNo {
				maxNo = r.ReviewNo
			}
		}

		for i := range reviews {
			reviews[i].ReviewNo = maxNo + i + 1
			if err := tx.Reviews().Put(ctx, &reviews[i]); err != nil {
				return err
			}
		}
		for i := range reviews {
			reviews[i].ReviewNo = i + 1
			if err := tx.Reviews().Put(ctx, &reviews[i]); err != nil {
				return err
			}
		}
		count = len(reviews)
		return nil
	})
	if err != nil {
		log.Error("failed to renumber reviews",
			slog.String("error", err.Error()),
			slog.Int64("unit_id", unitID))
		return NewServiceError("ledger", "renumber_reviews", "failed to renumber reviews", err)
	}

	if count > 0 {
		log.Info("reviews renumbered",
			slog.Int64("unit_id", unitID),
			slog.Int("review_count", count))
		s.emit(ctx, events.ReviewsRenumbered, map[string]any{"unitId": unitID, "reviews": count})
	}
	return nil
}

func (s *ledgerServiceImpl) emit(ctx context.Context, eventType string, payload any) {
	EmitEvent(ctx, s.opts.Emitter, logger.FromContextOrDefault(ctx, s.logger), eventType, payload)
}
