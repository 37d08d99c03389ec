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

// UnitStore implements store.UnitStore.
type UnitStore struct {
	q      querier
	logger *slog.Logger
}

var _ store.UnitStore = (*UnitStore)(nil)

const unitColumns = "id, subject_id, unit_code, title, created_at"

func scanUnit(row rowScanner) (*domain.Unit, error) {
	var u domain.Unit
	if err := row.Scan(&u.ID, &u.SubjectID, &u.UnitCode, &u.Title, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.CreatedAt = timestamp(u.CreatedAt)
	return &u, nil
}

// Insert implements store.UnitStore.
func (s *UnitStore) Insert(ctx context.Context, unit *domain.Unit) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := unit.Validate(); err != nil {
		return err
	}

	err := s.q.queryRow(ctx,
		"INSERT INTO units (subject_id, unit_code, title, created_at) VALUES (?, ?, ?, ?) RETURNING id",
		unit.SubjectID, unit.UnitCode, unit.Title, unit.CreatedAt,
	).Scan(&unit.ID)
	if err != nil {
		err = MapError(err)
		log.Warn("failed to insert unit",
			slog.String("error", err.Error()),
			slog.Int64("subject_id", unit.SubjectID),
			slog.String("unit_code", unit.UnitCode))
		return store.NewStoreError("unit", "insert", "could not insert unit", err)
	}

	log.Debug("unit inserted",
		slog.Int64("unit_id", unit.ID),
		slog.String("unit_code", unit.UnitCode))
	return nil
}

// Get implements store.UnitStore.
func (s *UnitStore) Get(ctx context.Context, id int64) (*domain.Unit, error) {
	unit, err := scanUnit(s.q.queryRow(ctx, "SELECT "+unitColumns+" FROM units WHERE id = ?", id))
	if err != nil {
		return nil, s.notFound(err)
	}
	return unit, nil
}

// GetAll implements store.UnitStore.
func (s *UnitStore) GetAll(ctx context.Context) ([]domain.Unit, error) {
	return s.list(ctx, "SELECT "+unitColumns+" FROM units ORDER BY id")
}

// FindBySubjectCode implements store.UnitStore.
func (s *UnitStore) FindBySubjectCode(ctx context.Context, subjectID int64, code string) (*domain.Unit, error) {
	unit, err := scanUnit(s.q.queryRow(ctx,
		"SELECT "+unitColumns+" FROM units WHERE subject_id = ? AND unit_code = ?",
		subjectID, code))
	if err != nil {
		return nil, s.notFound(err)
	}
	return unit, nil
}

// ListBySubject implements store.UnitStore.
func (s *UnitStore) ListBySubject(ctx context.Context, subjectID int64) ([]domain.Unit, error) {
	return s.list(ctx, "SELECT "+unitColumns+" FROM units WHERE subject_id = ? ORDER BY id", subjectID)
}

func (s *UnitStore) list(ctx context.Context, query string, args ...any) ([]domain.Unit, error) {
	rows, err := s.q.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list units: %w", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	units := []domain.Unit{}
	for rows.Next() {
		unit, err := scanUnit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan unit: %w", err)
		}
		units = append(units, *unit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list units: %w", MapError(err))
	}
	return units, nil
}

// Put implements store.UnitStore.
func (s *UnitStore) Put(ctx context.Context, unit *domain.Unit) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if unit.ID <= 0 {
		return domain.ErrIDInvalid
	}
	if err := unit.Validate(); err != nil {
		return err
	}

	_, err := s.q.exec(ctx, `
		INSERT INTO units (id, subject_id, unit_code, title, created_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			subject_id = excluded.subject_id,
			unit_code = excluded.unit_code,
			title = excluded.title,
			created_at = excluded.created_at`,
		unit.ID, unit.SubjectID, unit.UnitCode, unit.Title, unit.CreatedAt,
	)
	if err != nil {
		err = MapError(err)
		log.Warn("failed to put unit",
			slog.String("error", err.Error()),
			slog.Int64("unit_id", unit.ID))
		return store.NewStoreError("unit", "put", "could not write unit", err)
	}
	return nil
}

// Delete implements store.UnitStore.
func (s *UnitStore) Delete(ctx context.Context, id int64) error {
	if _, err := s.q.exec(ctx, "DELETE FROM units WHERE id = ?", id); err != nil {
		return store.NewStoreError("unit", "delete", "could not delete unit", MapError(err))
	}
	return nil
}

// Clear implements store.UnitStore.
func (s *UnitStore) Clear(ctx context.Context) error {
	if _, err := s.q.exec(ctx, "DELETE FROM units"); err != nil {
		return store.NewStoreError("unit", "clear", "could not clear units", MapError(err))
	}
	return nil
}

func (s *UnitStore) notFound(err error) error {
	err = MapError(err)
	if errors.Is(err, store.ErrNotFound) {
		return store.ErrUnitNotFound
	}
	return fmt.Errorf("failed to load unit: %w", err)
}
