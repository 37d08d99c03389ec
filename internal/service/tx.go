package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/371050/study-pwa/internal/domain"
	"github.com/371050/study-pwa/internal/store"
)

// GetOrCreateUnitTx returns the unit with code in the subject, creating an
// untitled one if none exists. created reports whether a unit was inserted.
// The subject must exist.
func GetOrCreateUnitTx(
	ctx context.Context,
	tx store.Tx,
	subjectID int64,
	code string,
	now time.Time,
) (unit *domain.Unit, created bool, err error) {
	code = strings.TrimSpace(code)
	if !domain.ValidUnitCode(code) {
		return nil, false, domain.ErrUnitCodeInvalid
	}

	unit, err = tx.Units().FindBySubjectCode(ctx, subjectID, code)
	if err == nil {
		return unit, false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, false, err
	}

	if _, err := tx.Subjects().Get(ctx, subjectID); err != nil {
		return nil, false, err
	}

	unit, err = domain.NewUnit(subjectID, code, now)
	if err != nil {
		return nil, false, err
	}
	if err := tx.Units().Insert(ctx, unit); err != nil {
		return nil, false, err
	}
	return unit, true, nil
}

// NextReviewNo returns 1 when the unit has no reviews, else the highest
// review number plus one. The number is not reserved.
func NextReviewNo(ctx context.Context, reviews store.ReviewStore, unitID int64) (int, error) {
	list, err := reviews.ListByUnit(ctx, unitID)
	if err != nil {
		return 0, err
	}
	next := 1
	for _, r := range list {
		if r.ReviewNo >= next {
			next = r.ReviewNo + 1
		}
	}
	return next, nil
}

// ApplyTitle sets the unit's title when it is currently empty or overwrite
// is set. An empty title never changes anything. It reports whether the
// unit was written.
func ApplyTitle(ctx context.Context, units store.UnitStore, unit *domain.Unit, title string, overwrite bool) (bool, error) {
	if title == "" {
		return false, nil
	}
	if unit.Title != "" && !overwrite {
		return false, nil
	}
	if unit.Title == title {
		return false, nil
	}
	unit.Title = title
	if err := units.Put(ctx, unit); err != nil {
		return false, err
	}
	return true, nil
}
