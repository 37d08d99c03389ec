package boltstore

import (
	"context"
	"log/slog"

	"go.etcd.io/bbolt"

	"github.com/371050/study-pwa/internal/domain"
	"github.com/371050/study-pwa/internal/platform/logger"
	"github.com/371050/study-pwa/internal/store"
)

type subjectStore struct{ t tables }

var _ store.SubjectStore = subjectStore{}

func (s subjectStore) Insert(ctx context.Context, subject *domain.Subject) error {
	if err := subject.Validate(); err != nil {
		return err
	}
	err := s.t.update(ctx, func(tx *bbolt.Tx) error {
		seq, err := tx.Bucket(subjectsBucket).NextSequence()
		if err != nil {
			return err
		}
		record := *subject
		record.ID = int64(seq)
		if err := writeSubject(tx, &record); err != nil {
			return err
		}
		subject.ID = record.ID
		return nil
	})
	if err != nil {
		logger.FromContextOrDefault(ctx, s.t.logger).Warn("failed to insert subject",
			slog.String("error", err.Error()),
			slog.String("name", subject.Name))
		return store.NewStoreError("subject", "insert", "could not insert subject", err)
	}
	return nil
}

func (s subjectStore) Get(ctx context.Context, id int64) (*domain.Subject, error) {
	var subject *domain.Subject
	err := s.t.view(ctx, func(tx *bbolt.Tx) error {
		var err error
		subject, err = getJSON[domain.Subject](tx.Bucket(subjectsBucket), id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if subject == nil {
		return nil, store.ErrSubjectNotFound
	}
	return subject, nil
}

func (s subjectStore) GetAll(ctx context.Context) ([]domain.Subject, error) {
	var subjects []domain.Subject
	err := s.t.view(ctx, func(tx *bbolt.Tx) error {
		var err error
		subjects, err = listJSON[domain.Subject](tx.Bucket(subjectsBucket))
		return err
	})
	return subjects, err
}

func (s subjectStore) FindByName(ctx context.Context, name string) (*domain.Subject, error) {
	var subject *domain.Subject
	err := s.t.view(ctx, func(tx *bbolt.Tx) error {
		id := tx.Bucket(subjectNameIndex).Get([]byte(name))
		if id == nil {
			return nil
		}
		var err error
		subject, err = getJSON[domain.Subject](tx.Bucket(subjectsBucket), btoi(id))
		return err
	})
	if err != nil {
		return nil, err
	}
	if subject == nil {
		return nil, store.ErrSubjectNotFound
	}
	return subject, nil
}

func (s subjectStore) Put(ctx context.Context, subject *domain.Subject) error {
	if subject.ID <= 0 {
		return domain.ErrIDInvalid
	}
	if err := subject.Validate(); err != nil {
		return err
	}
	err := s.t.update(ctx, func(tx *bbolt.Tx) error {
		return writeSubject(tx, subject)
	})
	if err != nil {
		logger.FromContextOrDefault(ctx, s.t.logger).Warn("failed to put subject",
			slog.String("error", err.Error()),
			slog.Int64("subject_id", subject.ID))
		return store.NewStoreError("subject", "put", "could not write subject", err)
	}
	return nil
}

// writeSubject stores subject under its id and moves its name index entry.
func writeSubject(tx *bbolt.Tx, subject *domain.Subject) error {
	b := tx.Bucket(subjectsBucket)
	index := tx.Bucket(subjectNameIndex)

	old, err := getJSON[domain.Subject](b, subject.ID)
	if err != nil {
		return err
	}
	if err := claim(index, []byte(subject.Name), subject.ID, store.ErrSubjectNameExists); err != nil {
		return err
	}
	if old != nil && old.Name != subject.Name {
		if err := index.Delete([]byte(old.Name)); err != nil {
			return err
		}
	}
	if err := bumpSequence(b, subject.ID); err != nil {
		return err
	}
	return putJSON(b, subject.ID, subject)
}

func (s subjectStore) Delete(ctx context.Context, id int64) error {
	return s.t.update(ctx, func(tx *bbolt.Tx) error {
		b := tx.Bucket(subjectsBucket)
		old, err := getJSON[domain.Subject](b, id)
		if err != nil || old == nil {
			return err
		}
		if hasPrefix(tx.Bucket(unitCodeIndex), itob(id)) {
			return store.NewStoreError("subject", "delete", "subject still has units", store.ErrInvalidReference)
		}
		if err := tx.Bucket(subjectNameIndex).Delete([]byte(old.Name)); err != nil {
			return err
		}
		return b.Delete(itob(id))
	})
}

func (s subjectStore) Clear(ctx context.Context) error {
	return s.t.update(ctx, func(tx *bbolt.Tx) error {
		if k, _ := tx.Bucket(unitsBucket).Cursor().First(); k != nil {
			return store.NewStoreError("subject", "clear", "units still reference subjects", store.ErrInvalidReference)
		}
		if err := clearBucket(tx, subjectNameIndex); err != nil {
			return err
		}
		return clearBucket(tx, subjectsBucket)
	})
}
