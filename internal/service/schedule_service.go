package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/371050/study-pwa/internal/domain"
	"github.com/371050/study-pwa/internal/domain/srs"
	"github.com/371050/study-pwa/internal/platform/logger"
	"github.com/371050/study-pwa/internal/store"
)

// ScheduleService computes unit statuses and the due and upcoming lists.
// Nothing it computes is persisted.
type ScheduleService interface {
	// ComputeUnitStatus derives the unit's status from its reviews.
	ComputeUnitStatus(ctx context.Context, unit *domain.Unit) (srs.Status, error)

	// UnitStatus loads a unit by id and computes its status.
	UnitStatus(ctx context.Context, unitID int64) (*srs.UnitStatus, error)

	// DueList returns reviewed units whose next due date is on or before today.
	DueList(ctx context.Context) ([]srs.Entry, error)

	// UpcomingList returns reviewed units due within the next seven days.
	UpcomingList(ctx context.Context) ([]srs.Entry, error)

	// Today returns the calendar day the lists are computed against.
	Today() string
}

type scheduleServiceImpl struct {
	store  store.Store
	opts   Options
	logger *slog.Logger
}

// NewScheduleService creates a new ScheduleService.
// It returns an error if the store is nil.
func NewScheduleService(st store.Store, logger *slog.Logger, opts ...Option) (ScheduleService, error) {
	if st == nil {
		return nil, errors.New("schedule service: store cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &scheduleServiceImpl{
		store:  st,
		opts:   NewOptions(opts...),
		logger: logger.With(slog.String("component", "schedule_service")),
	}, nil
}

// Today implements ScheduleService.
func (s *scheduleServiceImpl) Today() string {
	return s.opts.Today()
}

// ComputeUnitStatus implements ScheduleService.
func (s *scheduleServiceImpl) ComputeUnitStatus(ctx context.Context, unit *domain.Unit) (srs.Status, error) {
	status, err := unitStatus(ctx, s.store.Reviews(), unit.ID)
	if err != nil {
		return srs.Status{}, NewServiceError("schedule", "compute_status", "failed to compute unit status", err)
	}
	return status, nil
}

// UnitStatus implements ScheduleService.
func (s *scheduleServiceImpl) UnitStatus(ctx context.Context, unitID int64) (*srs.UnitStatus, error) {
	unit, err := s.store.Units().Get(ctx, unitID)
	if err != nil {
		return nil, NewServiceError("schedule", "unit_status", "failed to load unit", err)
	}
	status, err := s.ComputeUnitStatus(ctx, unit)
	if err != nil {
		return nil, err
	}
	return &srs.UnitStatus{Unit: *unit, Status: status}, nil
}

// DueList implements ScheduleService.
func (s *scheduleServiceImpl) DueList(ctx context.Context) ([]srs.Entry, error) {
	due, _, err := s.plan(ctx)
	return due, err
}

// UpcomingList implements ScheduleService.
func (s *scheduleServiceImpl) UpcomingList(ctx context.Context) ([]srs.Entry, error) {
	_, upcoming, err := s.plan(ctx)
	return upcoming, err
}

// plan reads every subject, unit and review and classifies the units
// against today. Reviews are grouped in memory to avoid one query per unit.
func (s *scheduleServiceImpl) plan(ctx context.Context) (due, upcoming []srs.Entry, err error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	today := s.opts.Today()

	subjects, err := s.store.Subjects().GetAll(ctx)
	if err != nil {
		return nil, nil, NewServiceError("schedule", "plan", "failed to load subjects", err)
	}
	units, err := s.store.Units().GetAll(ctx)
	if err != nil {
		return nil, nil, NewServiceError("schedule", "plan", "failed to load units", err)
	}
	reviews, err := s.store.Reviews().GetAll(ctx)
	if err != nil {
		return nil, nil, NewServiceError("schedule", "plan", "failed to load reviews", err)
	}

	byUnit := make(map[int64][]domain.Review, len(units))
	for _, r := range reviews {
		byUnit[r.UnitID] = append(byUnit[r.UnitID], r)
	}

	statuses := make([]srs.UnitStatus, 0, len(units))
	for _, u := range units {
		status, err := srs.ComputeStatus(byUnit[u.ID])
		if err != nil {
			return nil, nil, NewServiceError("schedule", "plan", "failed to compute unit status", err)
		}
		statuses = append(statuses, srs.UnitStatus{Unit: u, Status: status})
	}

	due, upcoming, err = srs.Plan(today, subjects, statuses)
	if err != nil {
		return nil, nil, NewServiceError("schedule", "plan", "failed to classify units", err)
	}

	log.Debug("schedule computed",
		slog.String("today", today),
		slog.Int("due", len(due)),
		slog.Int("upcoming", len(upcoming)))
	return due, upcoming, nil
}
