// Package storetest is a conformance suite for store.Store implementations.
// Every backend runs the same tests, so the uniqueness, reference and
// transaction guarantees hold regardless of the storage engine.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/371050/study-pwa/internal/domain"
	"github.com/371050/study-pwa/internal/store"
)

// Factory returns an empty, ready store. It registers its own cleanup on t.
type Factory func(t *testing.T) store.Store

// Run executes the conformance suite against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	suite.Run(t, &Suite{NewStore: newStore})
}

// Suite holds the conformance tests.
type Suite struct {
	suite.Suite
	NewStore Factory

	ctx context.Context
	st  store.Store
	now time.Time
}

// SetupTest gives every test a fresh store.
func (s *Suite) SetupTest() {
	s.ctx = context.Background()
	s.st = s.NewStore(s.T())
	s.now = time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
}

func (s *Suite) subject(name string, order int) *domain.Subject {
	subject, err := domain.NewSubject(name, order, s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.st.Subjects().Insert(s.ctx, subject))
	return subject
}

func (s *Suite) unit(subjectID int64, code string) *domain.Unit {
	unit, err := domain.NewUnit(subjectID, code, s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.st.Units().Insert(s.ctx, unit))
	return unit
}

func (s *Suite) review(unitID int64, no int, date string) *domain.Review {
	review, err := domain.NewReview(unitID, no, date, s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.st.Reviews().Insert(s.ctx, review))
	return review
}

func (s *Suite) TestSubjectInsertAndLookup() {
	a := s.subject("消費税法", 0)
	b := s.subject("所得税法", 1)
	s.Greater(a.ID, int64(0))
	s.Greater(b.ID, a.ID)

	got, err := s.st.Subjects().Get(s.ctx, a.ID)
	s.Require().NoError(err)
	s.Equal(a.Name, got.Name)
	s.Equal(0, got.SortOrder)
	s.True(s.now.Equal(got.CreatedAt), "createdAt survives storage")

	byName, err := s.st.Subjects().FindByName(s.ctx, "所得税法")
	s.Require().NoError(err)
	s.Equal(b.ID, byName.ID)

	_, err = s.st.Subjects().FindByName(s.ctx, "住民税")
	s.ErrorIs(err, store.ErrSubjectNotFound)

	_, err = s.st.Subjects().Get(s.ctx, 9999)
	s.ErrorIs(err, store.ErrNotFound)

	all, err := s.st.Subjects().GetAll(s.ctx)
	s.Require().NoError(err)
	s.Len(all, 2)
	s.Equal(a.ID, all[0].ID)
}

func (s *Suite) TestSubjectNameIsUnique() {
	s.subject("法人税法", 0)

	dup, err := domain.NewSubject("法人税法", 1, s.now)
	s.Require().NoError(err)
	err = s.st.Subjects().Insert(s.ctx, dup)
	s.ErrorIs(err, store.ErrDuplicate)
	s.ErrorIs(err, store.ErrSubjectNameExists)

	all, err := s.st.Subjects().GetAll(s.ctx)
	s.Require().NoError(err)
	s.Len(all, 1)
}

func (s *Suite) TestSubjectPut() {
	a := s.subject("消費税法", 0)
	b := s.subject("所得税法", 1)

	a.SortOrder = 5
	s.Require().NoError(s.st.Subjects().Put(s.ctx, a))
	got, err := s.st.Subjects().Get(s.ctx, a.ID)
	s.Require().NoError(err)
	s.Equal(5, got.SortOrder)

	b.Name = "消費税法"
	err = s.st.Subjects().Put(s.ctx, b)
	s.ErrorIs(err, store.ErrSubjectNameExists)

	got, err = s.st.Subjects().Get(s.ctx, b.ID)
	s.Require().NoError(err)
	s.Equal("所得税法", got.Name, "failed put leaves the record untouched")
}

func (s *Suite) TestSubjectDelete() {
	a := s.subject("消費税法", 0)
	b := s.subject("所得税法", 1)
	s.unit(b.ID, "1-1")

	s.Require().NoError(s.st.Subjects().Delete(s.ctx, a.ID))
	s.Require().NoError(s.st.Subjects().Delete(s.ctx, a.ID), "deleting twice is not an error")

	err := s.st.Subjects().Delete(s.ctx, b.ID)
	s.ErrorIs(err, store.ErrInvalidReference)
}

func (s *Suite) TestUnitUniquenessAndReferences() {
	a := s.subject("消費税法", 0)
	b := s.subject("所得税法", 1)
	u := s.unit(a.ID, "1-1")
	s.unit(b.ID, "1-1")

	dup, err := domain.NewUnit(a.ID, "1-1", s.now)
	s.Require().NoError(err)
	err = s.st.Units().Insert(s.ctx, dup)
	s.ErrorIs(err, store.ErrUnitCodeExists)

	orphan, err := domain.NewUnit(4242, "1-1", s.now)
	s.Require().NoError(err)
	err = s.st.Units().Insert(s.ctx, orphan)
	s.ErrorIs(err, store.ErrInvalidReference)

	found, err := s.st.Units().FindBySubjectCode(s.ctx, a.ID, "1-1")
	s.Require().NoError(err)
	s.Equal(u.ID, found.ID)

	_, err = s.st.Units().FindBySubjectCode(s.ctx, a.ID, "9-9")
	s.ErrorIs(err, store.ErrUnitNotFound)

	s.unit(a.ID, "2-1")
	list, err := s.st.Units().ListBySubject(s.ctx, a.ID)
	s.Require().NoError(err)
	s.Len(list, 2)

	u.Title = "課税の対象"
	s.Require().NoError(s.st.Units().Put(s.ctx, u))
	got, err := s.st.Units().Get(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Equal("課税の対象", got.Title)
}

func (s *Suite) TestUnitDeleteRequiresNoReviews() {
	sub := s.subject("消費税法", 0)
	u := s.unit(sub.ID, "1-1")
	s.review(u.ID, 1, "2024-01-01")

	err := s.st.Units().Delete(s.ctx, u.ID)
	s.ErrorIs(err, store.ErrInvalidReference)

	n, err := s.st.Reviews().DeleteByUnit(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Equal(1, n)
	s.Require().NoError(s.st.Units().Delete(s.ctx, u.ID))

	_, err = s.st.Units().Get(s.ctx, u.ID)
	s.ErrorIs(err, store.ErrUnitNotFound)
}

func (s *Suite) TestReviewUniqueness() {
	sub := s.subject("消費税法", 0)
	u := s.unit(sub.ID, "1-1")
	other := s.unit(sub.ID, "1-2")
	first := s.review(u.ID, 1, "2024-01-01")

	sameNo, err := domain.NewReview(u.ID, 1, "2024-01-05", s.now)
	s.Require().NoError(err)
	err = s.st.Reviews().Insert(s.ctx, sameNo)
	s.ErrorIs(err, store.ErrReviewNoExists)

	sameDate, err := domain.NewReview(u.ID, 2, "2024-01-01", s.now)
	s.Require().NoError(err)
	err = s.st.Reviews().Insert(s.ctx, sameDate)
	s.ErrorIs(err, store.ErrReviewDateExists)

	got, err := s.st.Reviews().Get(s.ctx, first.ID)
	s.Require().NoError(err)
	s.Equal(1, got.ReviewNo)
	s.Equal("2024-01-01", got.DoneDate)

	// The same number and date are fine in another unit.
	s.review(other.ID, 1, "2024-01-01")

	orphan, err := domain.NewReview(777, 1, "2024-01-01", s.now)
	s.Require().NoError(err)
	s.ErrorIs(s.st.Reviews().Insert(s.ctx, orphan), store.ErrInvalidReference)
}

func (s *Suite) TestReviewLookupsAndOrder() {
	sub := s.subject("消費税法", 0)
	u := s.unit(sub.ID, "1-1")
	r3 := s.review(u.ID, 3, "2024-01-20")
	r1 := s.review(u.ID, 1, "2024-01-01")
	r2 := s.review(u.ID, 2, "2024-01-02")

	list, err := s.st.Reviews().ListByUnit(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Require().Len(list, 3)
	s.Equal([]int64{r1.ID, r2.ID, r3.ID}, []int64{list[0].ID, list[1].ID, list[2].ID})

	byNo, err := s.st.Reviews().FindByUnitNo(s.ctx, u.ID, 2)
	s.Require().NoError(err)
	s.Equal(r2.ID, byNo.ID)

	byDate, err := s.st.Reviews().FindByUnitDate(s.ctx, u.ID, "2024-01-20")
	s.Require().NoError(err)
	s.Equal(r3.ID, byDate.ID)

	_, err = s.st.Reviews().FindByUnitDate(s.ctx, u.ID, "2030-01-01")
	s.ErrorIs(err, store.ErrReviewNotFound)

	all, err := s.st.Reviews().GetAll(s.ctx)
	s.Require().NoError(err)
	s.Equal([]int64{r3.ID, r1.ID, r2.ID}, []int64{all[0].ID, all[1].ID, all[2].ID})
}

func (s *Suite) TestReviewPutChecksUniqueness() {
	sub := s.subject("消費税法", 0)
	u := s.unit(sub.ID, "1-1")
	r1 := s.review(u.ID, 1, "2024-01-01")
	r2 := s.review(u.ID, 2, "2024-01-08")

	moved := *r2
	moved.ReviewNo = 1
	s.ErrorIs(s.st.Reviews().Put(s.ctx, &moved), store.ErrReviewNoExists)

	moved = *r2
	moved.DoneDate = "2024-01-01"
	s.ErrorIs(s.st.Reviews().Put(s.ctx, &moved), store.ErrReviewDateExists)

	// Rewriting a record with its own values is not a conflict.
	same := *r1
	s.Require().NoError(s.st.Reviews().Put(s.ctx, &same))

	moved = *r2
	moved.ReviewNo = 7
	moved.DoneDate = "2024-02-01"
	s.Require().NoError(s.st.Reviews().Put(s.ctx, &moved))

	got, err := s.st.Reviews().Get(s.ctx, r2.ID)
	s.Require().NoError(err)
	s.Equal(7, got.ReviewNo)
	s.Equal("2024-02-01", got.DoneDate)

	// The freed number and date can be taken again.
	s.review(u.ID, 2, "2024-01-08")
}

func (s *Suite) TestDeleteIsIdempotent() {
	sub := s.subject("消費税法", 0)
	u := s.unit(sub.ID, "1-1")
	r := s.review(u.ID, 1, "2024-01-01")

	s.Require().NoError(s.st.Reviews().Delete(s.ctx, r.ID))
	s.Require().NoError(s.st.Reviews().Delete(s.ctx, r.ID))
	s.Require().NoError(s.st.Units().Delete(s.ctx, 31337))

	n, err := s.st.Reviews().DeleteByUnit(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Equal(0, n)
}

func (s *Suite) TestTransactionRollback() {
	sub := s.subject("消費税法", 0)
	boom := errors.New("boom")

	err := s.st.RunInTransaction(s.ctx, func(ctx context.Context, tx store.Tx) error {
		unit, err := domain.NewUnit(sub.ID, "1-1", s.now)
		if err != nil {
			return err
		}
		if err := tx.Units().Insert(ctx, unit); err != nil {
			return err
		}
		review, err := domain.NewReview(unit.ID, 1, "2024-01-01", s.now)
		if err != nil {
			return err
		}
		if err := tx.Reviews().Insert(ctx, review); err != nil {
			return err
		}

		inside, err := tx.Reviews().ListByUnit(ctx, unit.ID)
		if err != nil {
			return err
		}
		s.Len(inside, 1, "writes are visible inside the transaction")
		return boom
	})
	s.ErrorIs(err, boom)

	units, err := s.st.Units().GetAll(s.ctx)
	s.Require().NoError(err)
	s.Empty(units)
	reviews, err := s.st.Reviews().GetAll(s.ctx)
	s.Require().NoError(err)
	s.Empty(reviews)
}

func (s *Suite) TestTransactionPanicRollsBack() {
	sub := s.subject("消費税法", 0)

	s.Panics(func() {
		_ = s.st.RunInTransaction(s.ctx, func(ctx context.Context, tx store.Tx) error {
			unit, _ := domain.NewUnit(sub.ID, "1-1", s.now)
			if err := tx.Units().Insert(ctx, unit); err != nil {
				return err
			}
			panic("interrupted")
		})
	})

	units, err := s.st.Units().GetAll(s.ctx)
	s.Require().NoError(err)
	s.Empty(units)
}

func (s *Suite) TestTransactionCommit() {
	sub := s.subject("消費税法", 0)

	var unitID int64
	err := s.st.RunInTransaction(s.ctx, func(ctx context.Context, tx store.Tx) error {
		unit, err := domain.NewUnit(sub.ID, "3-2", s.now)
		if err != nil {
			return err
		}
		if err := tx.Units().Insert(ctx, unit); err != nil {
			return err
		}
		unitID = unit.ID
		return nil
	})
	s.Require().NoError(err)

	got, err := s.st.Units().Get(s.ctx, unitID)
	s.Require().NoError(err)
	s.Equal("3-2", got.UnitCode)
}

func (s *Suite) TestClearAndExplicitIDs() {
	sub := s.subject("消費税法", 0)
	u := s.unit(sub.ID, "1-1")
	s.review(u.ID, 1, "2024-01-01")

	err := s.st.RunInTransaction(s.ctx, func(ctx context.Context, tx store.Tx) error {
		if err := tx.Reviews().Clear(ctx); err != nil {
			return err
		}
		if err := tx.Units().Clear(ctx); err != nil {
			return err
		}
		if err := tx.Subjects().Clear(ctx); err != nil {
			return err
		}
		if err := tx.Subjects().Put(ctx, &domain.Subject{ID: 40, Name: "住民税", SortOrder: 0, CreatedAt: s.now}); err != nil {
			return err
		}
		if err := tx.Units().Put(ctx, &domain.Unit{ID: 50, SubjectID: 40, UnitCode: "2-2", CreatedAt: s.now}); err != nil {
			return err
		}
		if err := tx.Reviews().Put(ctx, &domain.Review{ID: 60, UnitID: 50, ReviewNo: 3, DoneDate: "2024-02-02", CreatedAt: s.now}); err != nil {
			return err
		}
		return tx.ResetSequences(ctx)
	})
	s.Require().NoError(err)

	got, err := s.st.Reviews().Get(s.ctx, 60)
	s.Require().NoError(err)
	s.Equal(int64(50), got.UnitID)

	next := s.subject("国税徴収法", 1)
	s.Greater(next.ID, int64(40))
	nextUnit := s.unit(40, "2-3")
	s.Greater(nextUnit.ID, int64(50))
	nextReview := s.review(50, 4, "2024-03-01")
	s.Greater(nextReview.ID, int64(60))
}

func (s *Suite) TestPutRejectsDanglingReferences() {
	err := s.st.Units().Put(s.ctx, &domain.Unit{ID: 5, SubjectID: 404, UnitCode: "1-1", CreatedAt: s.now})
	s.ErrorIs(err, store.ErrInvalidReference)

	err = s.st.Reviews().Put(s.ctx, &domain.Review{ID: 6, UnitID: 404, ReviewNo: 1, DoneDate: "2024-01-01", CreatedAt: s.now})
	s.ErrorIs(err, store.ErrInvalidReference)
}

func (s *Suite) TestValidationBeforeWrite() {
	err := s.st.Subjects().Insert(s.ctx, &domain.Subject{Name: " ", CreatedAt: s.now})
	s.ErrorIs(err, domain.ErrValidation)

	sub := s.subject("消費税法", 0)
	err = s.st.Units().Insert(s.ctx, &domain.Unit{SubjectID: sub.ID, UnitCode: "x", CreatedAt: s.now})
	s.ErrorIs(err, domain.ErrUnitCodeInvalid)
}
