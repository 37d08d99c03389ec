package mocks

import (
	"context"

	"github.com/371050/study-pwa/internal/domain"
	"github.com/371050/study-pwa/internal/domain/srs"
	"github.com/371050/study-pwa/internal/service"
)

// MockLedgerService implements service.LedgerService for testing
type MockLedgerService struct {
	GetOrCreateUnitFn    func(ctx context.Context, subjectID int64, code string) (int64, error)
	GetUnitFn            func(ctx context.Context, unitID int64) (*domain.Unit, error)
	UpdateUnitTitleFn    func(ctx context.Context, unitID int64, title string) error
	DeleteUnitFn         func(ctx context.Context, unitID int64) error
	ListUnitsBySubjectFn func(ctx context.Context, subjectID int64) ([]srs.UnitStatus, error)
	ListReviewsByUnitFn  func(ctx context.Context, unitID int64) ([]domain.Review, error)
	GetNextReviewNoFn    func(ctx context.Context, unitID int64) (int, error)
	InsertReviewFn       func(ctx context.Context, unitID int64, no int, date string) (*domain.Review, error)
	UpdateReviewFn       func(ctx context.Context, reviewID, unitID int64, no int, date string) error
	DeleteReviewFn       func(ctx context.Context, reviewID int64) error
	RenumberReviewsFn    func(ctx context.Context, unitID int64) error

	Err error
}

var _ service.LedgerService = (*MockLedgerService)(nil)

// GetOrCreateUnit implements the service.LedgerService interface
func (m *MockLedgerService) GetOrCreateUnit(ctx context.Context, subjectID int64, code string) (int64, error) {
	if m.GetOrCreateUnitFn != nil {
		return m.GetOrCreateUnitFn(ctx, subjectID, code)
	}
	return 0, m.Err
}

// GetUnit implements the service.LedgerService interface
func (m *MockLedgerService) GetUnit(ctx context.Context, unitID int64) (*domain.Unit, error) {
	if m.GetUnitFn != nil {
		return m.GetUnitFn(ctx, unitID)
	}
	return nil, m.Err
}

// UpdateUnitTitle implements the service.LedgerService interface
func (m *MockLedgerService) UpdateUnitTitle(ctx context.Context, unitID int64, title string) error {
	if m.UpdateUnitTitleFn != nil {
		return m.UpdateUnitTitleFn(ctx, unitID, title)
	}
	return m.Err
}

// DeleteUnit implements the service.LedgerService interface
func (m *MockLedgerService) DeleteUnit(ctx context.Context, unitID int64) error {
	if m.DeleteUnitFn != nil {
		return m.DeleteUnitFn(ctx, unitID)
	}
	return m.Err
}

// ListUnitsBySubject implements the service.LedgerService interface
func (m *MockLedgerService) ListUnitsBySubject(ctx context.Context, subjectID int64) ([]srs.UnitStatus, error) {
	if m.ListUnitsBySubjectFn != nil {
		return m.ListUnitsBySubjectFn(ctx, subjectID)
	}
	return nil, m.Err
}

// ListReviewsByUnit implements the service.LedgerService interface
func (m *MockLedgerService) ListReviewsByUnit(ctx context.Context, unitID int64) ([]domain.Review, error) {
	if m.ListReviewsByUnitFn != nil {
		return m.ListReviewsByUnitFn(ctx, unitID)
	}
	return nil, m.Err
}

// GetNextReviewNo implements the service.LedgerService interface
func (m *MockLedgerService) GetNextReviewNo(ctx context.Context, unitID int64) (int, error) {
	if m.GetNextReviewNoFn != nil {
		return m.GetNextReviewNoFn(ctx, unitID)
	}
	return 0, m.Err
}

// InsertReview implements the service.LedgerService interface
func (m *MockLedgerService) InsertReview(ctx context.Context, unitID int64, no int, date string) (*domain.Review, error) {
	if m.InsertReviewFn != nil {
		return m.InsertReviewFn(ctx, unitID, no, date)
	}
	return nil, m.Err
}

// UpdateReview implements the service.LedgerService interface
func (m *MockLedgerService) UpdateReview(ctx context.Context, reviewID, unitID int64, no int, date string) error {
	if m.UpdateReviewFn != nil {
		return m.UpdateReviewFn(ctx, reviewID, unitID, no, date)
	}
	return m.Err
}

// DeleteReview implements the service.LedgerService interface
func (m *MockLedgerService) DeleteReview(ctx context.Context, reviewID int64) error {
	if m.DeleteReviewFn != nil {
		return m.DeleteReviewFn(ctx, reviewID)
	}
	return m.Err
}

// RenumberReviews implements the service.LedgerService interface
func (m *MockLedgerService) RenumberReviews(ctx context.Context, unitID int64) error {
	if m.RenumberReviewsFn != nil {
		return m.RenumberReviewsFn(ctx, unitID)
	}
	return m.Err
}
