package mocks

import (
	"context"

	"github.com/371050/study-pwa/internal/domain"
	"github.com/371050/study-pwa/internal/domain/srs"
	"github.com/371050/study-pwa/internal/service"
)

// MockScheduleService implements service.ScheduleService for testing
type MockScheduleService struct {
	ComputeUnitStatusFn func(ctx context.Context, unit *domain.Unit) (srs.Status, error)
	UnitStatusFn        func(ctx context.Context, unitID int64) (*srs.UnitStatus, error)
	DueListFn           func(ctx context.Context) ([]srs.Entry, error)
	UpcomingListFn      func(ctx context.Context) ([]srs.Entry, error)

	TodayValue string
	Err        error
}

var _ service.ScheduleService = (*MockScheduleService)(nil)

// ComputeUnitStatus implements the service.ScheduleService interface
func (m *MockScheduleService) ComputeUnitStatus(ctx context.Context, unit *domain.Unit) (srs.Status, error) {
	if m.ComputeUnitStatusFn != nil {
		return m.ComputeUnitStatusFn(ctx, unit)
	}
	return srs.Status{}, m.Err
}

// UnitStatus implements the service.ScheduleService interface
func (m *MockScheduleService) UnitStatus(ctx context.Context, unitID int64) (*srs.UnitStatus, error) {
	if m.UnitStatusFn != nil {
		return m.UnitStatusFn(ctx, unitID)
	}
	return nil, m.Err
}

// DueList implements the service.ScheduleService interface
func (m *MockScheduleService) DueList(ctx context.Context) ([]srs.Entry, error) {
	if m.DueListFn != nil {
		return m.DueListFn(ctx)
	}
	return nil, m.Err
}

// UpcomingList implements the service.ScheduleService interface
func (m *MockScheduleService) UpcomingList(ctx context.Context) ([]srs.Entry, error) {
	if m.UpcomingListFn != nil {
		return m.UpcomingListFn(ctx)
	}
	return nil, m.Err
}

// Today implements the service.ScheduleService interface
func (m *MockScheduleService) Today() string {
	return m.TodayValue
}
