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

// SubjectStore implements store.SubjectStore.
type SubjectStore struct {
	q      querier
	logger *slog.Logger
}

var _ store.SubjectStore = (*SubjectStore)(nil)

const subjectColumns = "id, name, sort_order, created_at"

func scanSubject(row rowScanner) (*domain.Subject, error) {
	var s domain.Subject
	if err := row.Scan(&s.ID, &s.Name, &s.SortOrder, &s.CreatedAt); err != nil {
		return nil, err
	}
	s.CreatedAt = timestamp(s.CreatedAt)
	return &s, nil
}

// Insert implements store.SubjectStore.
func (s *SubjectStore) Insert(ctx context.Context, subject *domain.Subject) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := subject.Validate(); err != nil {
		return err
	}

	err := s.q.queryRow(ctx,
		"INSERT INTO subjects (name, sort_order, created_at) VALUES (?, ?, ?) RETURNING id",
		subject.Name, subject.SortOrder, subject.CreatedAt,
	).Scan(&subject.ID)
	if err != nil {
		err = MapError(err)
		log.Warn("failed to insert subject",
			slog.String("error", err.Error()),
			slog.String("name", subject.Name))
		return store.NewStoreError("subject", "insert", "could not insert subject", err)
	}

	log.Debug("subject inserted", slog.Int64("subject_id", subject.ID))
	return nil
}

// Get implements store.SubjectStore.
func (s *SubjectStore) Get(ctx context.Context, id int64) (*domain.Subject, error) {
	subject, err := scanSubject(s.q.queryRow(ctx,
		"SELECT "+subjectColumns+" FROM subjects WHERE id = ?", id))
	if err != nil {
		return nil, s.notFound(err)
	}
	return subject, nil
}

// GetAll implements store.SubjectStore.
func (s *SubjectStore) GetAll(ctx context.Context) ([]domain.Subject, error) {
	rows, err := s.q.query(ctx, "SELECT "+subjectColumns+" FROM subjects ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list subjects: %w", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	subjects := []domain.Subject{}
	for rows.Next() {
		subject, err := scanSubject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subject: %w", err)
		}
		subjects = append(subjects, *subject)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list subjects: %w", MapError(err))
	}
	return subjects, nil
}

// FindByName implements store.SubjectStore.
func (s *SubjectStore) FindByName(ctx context.Context, name string) (*domain.Subject, error) {
	subject, err := scanSubject(s.q.queryRow(ctx,
		"SELECT "+subjectColumns+" FROM subjects WHERE name = ?", name))
	if err != nil {
		return nil, s.notFound(err)
	}
	return subject, nil
}

// Put implements store.SubjectStore.
func (s *SubjectStore) Put(ctx context.Context, subject *domain.Subject) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if subject.ID <= 0 {
		return domain.ErrIDInvalid
	}
	if err := subject.Validate(); err != nil {
		return err
	}

	_, err := s.q.exec(ctx, `
		INSERT INTO subjects (id, name, sort_order, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			sort_order = excluded.sort_order,
			created_at = excluded.created_at`,
		subject.ID, subject.Name, subject.SortOrder, subject.CreatedAt,
	)
	if err != nil {
		err = MapError(err)
		log.Warn("failed to put subject",
			slog.String("error", err.Error()),
			slog.Int64("subject_id", subject.ID))
		return store.NewStoreError("subject", "put", "could not write subject", err)
	}
	return nil
}

// Delete implements store.SubjectStore.
func (s *SubjectStore) Delete(ctx context.Context, id int64) error {
	if _, err := s.q.exec(ctx, "DELETE FROM subjects WHERE id = ?", id); err != nil {
		return store.NewStoreError("subject", "delete", "could not delete subject", MapError(err))
	}
	return nil
}

// Clear implements store.SubjectStore.
func (s *SubjectStore) Clear(ctx context.Context) error {
	if _, err := s.q.exec(ctx, "DELETE FROM subjects"); err != nil {
		return store.NewStoreError("subject", "clear", "could not clear subjects", MapError(err))
	}
	return nil
}

func (s *SubjectStore) notFound(err error) error {
	err = MapError(err)
	if errors.Is(err, store.ErrNotFound) {
		return store.ErrSubjectNotFound
	}
	return fmt.Errorf("failed to load subject: %w", err)
}
