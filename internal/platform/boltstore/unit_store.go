package boltstore

import (
	"bytes"
	"context"
	"log/slog"
	"sort"

	"go.etcd.io/bbolt"

	"github.com/371050/study-pwa/internal/domain"
	"github.com/371050/study-pwa/internal/platform/logger"
	"github.com/371050/study-pwa/internal/store"
)

type unitStore struct{ t tables }

var _ store.UnitStore = unitStore{}

func unitCodeKey(subjectID int64, code string) []byte {
	return compositeKey(subjectID, []byte(code))
}

func (s unitStore) Insert(ctx context.Context, unit *domain.Unit) error {
	if err := unit.Validate(); err != nil {
		return err
	}
	err := s.t.update(ctx, func(tx *bbolt.Tx) error {
		seq, err := tx.Bucket(unitsBucket).NextSequence()
		if err != nil {
			return err
		}
		record := *unit
		record.ID = int64(seq)
		if err := writeUnit(tx, &record); err != nil {
			return err
		}
		unit.ID = record.ID
		return nil
	})
	if err != nil {
		logger.FromContextOrDefault(ctx, s.t.logger).Warn("failed to insert unit",
			slog.String("error", err.Error()),
			slog.Int64("subject_id", unit.SubjectID),
			slog.String("unit_code", unit.UnitCode))
		return store.NewStoreError("unit", "insert", "could not insert unit", err)
	}
	return nil
}

func (s unitStore) Get(ctx context.Context, id int64) (*domain.Unit, error) {
	var unit *domain.Unit
	err := s.t.view(ctx, func(tx *bbolt.Tx) error {
		var err error
		unit, err = getJSON[domain.Unit](tx.Bucket(unitsBucket), id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if unit == nil {
		return nil, store.ErrUnitNotFound
	}
	return unit, nil
}

func (s unitStore) GetAll(ctx context.Context) ([]domain.Unit, error) {
	var units []domain.Unit
	err := s.t.view(ctx, func(tx *bbolt.Tx) error {
		var err error
		units, err = listJSON[domain.Unit](tx.Bucket(unitsBucket))
		return err
	})
	return units, err
}

func (s unitStore) FindBySubjectCode(ctx context.Context, subjectID int64, code string) (*domain.Unit, error) {
	var unit *domain.Unit
	err := s.t.view(ctx, func(tx *bbolt.Tx) error {
		id := tx.Bucket(unitCodeIndex).Get(unitCodeKey(subjectID, code))
		if id == nil {
			return nil
		}
		var err error
		unit, err = getJSON[domain.Unit](tx.Bucket(unitsBucket), btoi(id))
		return err
	})
	if err != nil {
		return nil, err
	}
	if unit == nil {
		return nil, store.ErrUnitNotFound
	}
	return unit, nil
}

func (s unitStore) ListBySubject(ctx context.Context, subjectID int64) ([]domain.Unit, error) {
	units := []domain.Unit{}
	err := s.t.view(ctx, func(tx *bbolt.Tx) error {
		b := tx.Bucket(unitsBucket)
		prefix := itob(subjectID)
		c := tx.Bucket(unitCodeIndex).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			unit, err := getJSON[domain.Unit](b, btoi(v))
			if err != nil {
				return err
			}
			if unit != nil {
				units = append(units, *unit)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(units, func(i, j int) bool { return units[i].ID < units[j].ID })
	return units, nil
}

func (s unitStore) Put(ctx context.Context, unit *domain.Unit) error {
	if unit.ID <= 0 {
		return domain.ErrIDInvalid
	}
	if err := unit.Validate(); err != nil {
		return err
	}
	err := s.t.update(ctx, func(tx *bbolt.Tx) error {
		return writeUnit(tx, unit)
	})
	if err != nil {
		logger.FromContextOrDefault(ctx, s.t.logger).Warn("failed to put unit",
			slog.String("error", err.Error()),
			slog.Int64("unit_id", unit.ID))
		return store.NewStoreError("unit", "put", "could not write unit", err)
	}
	return nil
}

// writeUnit checks the subject reference, stores unit under its id and
// moves its code index entry.
func writeUnit(tx *bbolt.Tx, unit *domain.Unit) error {
	if tx.Bucket(subjectsBucket).Get(itob(unit.SubjectID)) == nil {
		return store.ErrInvalidReference
	}

	b := tx.Bucket(unitsBucket)
	index := tx.Bucket(unitCodeIndex)

	old, err := getJSON[domain.Unit](b, unit.ID)
	if err != nil {
		return err
	}
	key := unitCodeKey(unit.SubjectID, unit.UnitCode)
	if err := claim(index, key, unit.ID, store.ErrUnitCodeExists); err != nil {
		return err
	}
	if old != nil {
		if oldKey := unitCodeKey(old.SubjectID, old.UnitCode); string(oldKey) != string(key) {
			if err := index.Delete(oldKey); err != nil {
				return err
			}
		}
	}
	if err := bumpSequence(b, unit.ID); err != nil {
		return err
	}
	return putJSON(b, unit.ID, unit)
}

func (s unitStore) Delete(ctx context.Context, id int64) error {
	return s.t.update(ctx, func(tx *bbolt.Tx) error {
		b := tx.Bucket(unitsBucket)
		old, err := getJSON[domain.Unit](b, id)
		if err != nil || old == nil {
			return err
		}
		if hasPrefix(tx.Bucket(reviewNoIndex), itob(id)) {
			return store.NewStoreError("unit", "delete", "unit still has reviews", store.ErrInvalidReference)
		}
		if err := tx.Bucket(unitCodeIndex).Delete(unitCodeKey(old.SubjectID, old.UnitCode)); err != nil {
			return err
		}
		return b.Delete(itob(id))
	})
}

func (s unitStore) Clear(ctx context.Context) error {
	return s.t.update(ctx, func(tx *bbolt.Tx) error {
		if k, _ := tx.Bucket(reviewsBucket).Cursor().First(); k != nil {
			return store.NewStoreError("unit", "clear", "reviews still reference units", store.ErrInvalidReference)
		}
		if err := clearBucket(tx, unitCodeIndex); err != nil {
			return err
		}
		return clearBucket(tx, unitsBucket)
	})
}
