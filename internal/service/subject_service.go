package service

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"github.com/371050/study-pwa/internal/domain"
	"github.com/371050/study-pwa/internal/events"
	"github.com/371050/study-pwa/internal/platform/logger"
	"github.com/371050/study-pwa/internal/store"
)

// SubjectService provides subject operations.
type SubjectService interface {
	// ListSubjects returns every subject ordered by (SortOrder, Name, ID).
	ListSubjects(ctx context.Context) ([]domain.Subject, error)

	// AddSubject creates a subject placed after all existing ones.
	AddSubject(ctx context.Context, name string) (*domain.Subject, error)

	// MoveSubject swaps the subject with its neighbour in display order
	// (direction -1 moves it up, +1 down) and rewrites SortOrder as 0..n-1.
	// Moving past either end, or a missing subject, is a no-op.
	MoveSubject(ctx context.Context, id int64, direction int) error
}

type subjectServiceImpl struct {
	store  store.Store
	opts   Options
	logger *slog.Logger
}

// NewSubjectService creates a new SubjectService.
// It returns an error if the store is nil.
func NewSubjectService(st store.Store, logger *slog.Logger, opts ...Option) (SubjectService, error) {
	if st == nil {
		return nil, errors.New("subject service: store cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &subjectServiceImpl{
		store:  st,
		opts:   NewOptions(opts...),
		logger: logger.With(slog.String("component", "subject_service")),
	}, nil
}

// SortSubjects orders subjects by (SortOrder, Name, ID).
func SortSubjects(subjects []domain.Subject) {
	sort.Slice(subjects, func(i, j int) bool {
		a, b := subjects[i], subjects[j]
		if a.SortOrder != b.SortOrder {
			return a.SortOrder < b.SortOrder
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
}

func listSortedSubjects(ctx context.Context, subjects store.SubjectStore) ([]domain.Subject, error) {
	list, err := subjects.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	SortSubjects(list)
	return list, nil
}

// ListSubjects implements SubjectService.
func (s *subjectServiceImpl) ListSubjects(ctx context.Context) ([]domain.Subject, error) {
	list, err := listSortedSubjects(ctx, s.store.Subjects())
	if err != nil {
		return nil, NewServiceError("subject", "list_subjects", "failed to load subjects", err)
	}
	return list, nil
}

// AddSubject implements SubjectService.
func (s *subjectServiceImpl) AddSubject(ctx context.Context, name string) (*domain.Subject, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	subject, err := domain.NewSubject(name, 0, s.opts.Now())
	if err != nil {
		return nil, NewServiceError("subject", "add_subject", "invalid subject", err)
	}

	err = s.store.RunInTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		existing, err := tx.Subjects().GetAll(ctx)
		if err != nil {
			return err
		}
		for i, e := range existing {
			if i == 0 || e.SortOrder+1 > subject.SortOrder {
				subject.SortOrder = e.SortOrder + 1
			}
		}
		return tx.Subjects().Insert(ctx, subject)
	})
	if err != nil {
		log.Warn("failed to add subject",
			slog.String("error", err.Error()),
			slog.String("name", subject.Name))
		return nil, NewServiceError("subject", "add_subject", "failed to add subject", err)
	}

	log.Info("subject added",
		slog.Int64("subject_id", subject.ID),
		slog.Int("sort_order", subject.SortOrder))
	s.emit(ctx, events.SubjectAdded, subject)
	return subject, nil
}

// MoveSubject implements SubjectService.
func (s *subjectServiceImpl) MoveSubject(ctx context.Context, id int64, direction int) error {
	if direction != -1 && direction != 1 {
		return NewServiceError("subject", "move_subject", "invalid direction", domain.ErrDirectionInvalid)
	}

	moved := false
	err := s.store.RunInTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		subjects, err := listSortedSubjects(ctx, tx.Subjects())
		if err != nil {
			return err
		}

		idx := -1
		for i := range subjects {
			if subjects[i].ID == id {
				idx = i
				break
			}
		}
		j := idx + direction
		if idx < 0 || j < 0 || j >= len(subjects) {
			return nil
		}
		subjects[idx], subjects[j] = subjects[j], subjects[idx]

		for i := range subjects {
			if subjects[i].SortOrder == i {
				continue
			}
			subjects[i].SortOrder = i
			if err := tx.Subjects().Put(ctx, &subjects[i]); err != nil {
				return err
			}
		}
		moved = true
		return nil
	})
	if err != nil {
		return NewServiceError("subject", "move_subject", "failed to reorder subjects", err)
	}

	if moved {
		s.emit(ctx, events.SubjectMoved, map[string]any{"subjectId": id, "direction": direction})
	}
	return nil
}

func (s *subjectServiceImpl) emit(ctx context.Context, eventType string, payload any) {
	EmitEvent(ctx, s.opts.Emitter, logger.FromContextOrDefault(ctx, s.logger), eventType, payload)
}

// EmitEvent publishes a ledger event, logging rather than returning
// failures because the change has already been committed.
func EmitEvent(ctx context.Context, emitter events.EventEmitter, log *slog.Logger, eventType string, payload any) {
	if err := events.Emit(ctx, emitter, eventType, payload); err != nil {
		log.Warn("failed to emit ledger event",
			slog.String("event_type", eventType),
			slog.String("error", err.Error()))
	}
}
