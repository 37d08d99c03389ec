package mocks

import (
	"context"
	"sync"

	"github.com/371050/study-pwa/internal/domain"
	"github.com/371050/study-pwa/internal/service"
)

// MockSubjectService implements service.SubjectService for testing
type MockSubjectService struct {
	ListSubjectsFn func(ctx context.Context) ([]domain.Subject, error)
	AddSubjectFn   func(ctx context.Context, name string) (*domain.Subject, error)
	MoveSubjectFn  func(ctx context.Context, id int64, direction int) error

	Subjects []domain.Subject
	Err      error

	// MoveCalls records the arguments of every MoveSubject call.
	MoveCalls struct {
		mu         sync.Mutex
		IDs        []int64
		Directions []int
	}
}

var _ service.SubjectService = (*MockSubjectService)(nil)

// ListSubjects implements the service.SubjectService interface
func (m *MockSubjectService) ListSubjects(ctx context.Context) ([]domain.Subject, error) {
	if m.ListSubjectsFn != nil {
		return m.ListSubjectsFn(ctx)
	}
	return m.Subjects, m.Err
}

// AddSubject implements the service.SubjectService interface
func (m *MockSubjectService) AddSubject(ctx context.Context, name string) (*domain.Subject, error) {
	if m.AddSubjectFn != nil {
		return m.AddSubjectFn(ctx, name)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return &domain.Subject{ID: 1, Name: name}, nil
}

// MoveSubject implements the service.SubjectService interface
func (m *MockSubjectService) MoveSubject(ctx context.Context, id int64, direction int) error {
	m.MoveCalls.mu.Lock()
	m.MoveCalls.IDs = append(m.MoveCalls.IDs, id)
	m.MoveCalls.Directions = append(m.MoveCalls.Directions, direction)
	m.MoveCalls.mu.Unlock()

	if m.MoveSubjectFn != nil {
		return m.MoveSubjectFn(ctx, id, direction)
	}
	return m.Err
}
