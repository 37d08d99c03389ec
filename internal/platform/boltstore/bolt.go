package boltstore

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"github.com/371050/study-pwa/internal/store"
)

var (
	subjectsBucket   = []byte("subjects")
	unitsBucket      = []byte("units")
	reviewsBucket    = []byte("reviews")
	subjectNameIndex = []byte("subjects_name_key")
	unitCodeIndex    = []byte("units_subject_code_key")
	reviewNoIndex    = []byte("reviews_unit_no_key")
	reviewDateIndex  = []byte("reviews_unit_date_key")
)

var allBuckets = [][]byte{
	subjectsBucket, unitsBucket, reviewsBucket,
	subjectNameIndex, unitCodeIndex, reviewNoIndex, reviewDateIndex,
}

// Store implements store.Store on a bbolt database.
type Store struct {
	db     *bbolt.DB
	logger *slog.Logger
	tables
}

var _ store.Store = (*Store)(nil)

// tables runs entity operations either in their own bbolt transaction or in
// the one bound by RunInTransaction.
type tables struct {
	db     *bbolt.DB
	tx     *bbolt.Tx
	logger *slog.Logger
}

// Open opens (or creates) the database file at path and makes sure every
// bucket exists.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "bolt_store"))

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Debug("bolt database ready", slog.String("path", path))
	return &Store{
		db:     db,
		logger: logger,
		tables: tables{db: db, logger: logger},
	}, nil
}

// RunInTransaction implements store.Store. bbolt allows one writer at a
// time, so fn runs fully serialised against other writes.
func (s *Store) RunInTransaction(ctx context.Context, fn store.TxFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return fn(ctx, tables{db: s.db, tx: tx, logger: s.logger})
	})
}

// Close implements store.Store.
func (s *Store) Close() error {
	return s.db.Close()
}

// Subjects implements store.Tx.
func (t tables) Subjects() store.SubjectStore { return subjectStore{t} }

// Units implements store.Tx.
func (t tables) Units() store.UnitStore { return unitStore{t} }

// Reviews implements store.Tx.
func (t tables) Reviews() store.ReviewStore { return reviewStore{t} }

// ResetSequences implements store.Tx. It moves each bucket sequence past
// the highest stored id.
func (t tables) ResetSequences(ctx context.Context) error {
	return t.update(ctx, func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{subjectsBucket, unitsBucket, reviewsBucket} {
			b := tx.Bucket(name)
			k, _ := b.Cursor().Last()
			if k == nil {
				continue
			}
			if err := bumpSequence(b, btoi(k)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (t tables) view(ctx context.Context, fn func(tx *bbolt.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if t.tx != nil {
		return fn(t.tx)
	}
	return t.db.View(fn)
}

func (t tables) update(ctx context.Context, fn func(tx *bbolt.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if t.tx != nil {
		return fn(t.tx)
	}
	return t.db.Update(fn)
}

// itob encodes an id as a sortable key.
func itob(v int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(v))
	return b
}

func btoi(b []byte) int64 {
	return int64(binary.BigEndian.Uint64(b))
}

// compositeKey joins a parent id with a column value.
func compositeKey(parent int64, value []byte) []byte {
	return append(itob(parent), value...)
}

func hasPrefix(b *bbolt.Bucket, prefix []byte) bool {
	k, _ := b.Cursor().Seek(prefix)
	return k != nil && bytes.HasPrefix(k, prefix)
}

// bumpSequence keeps the bucket sequence at or above id so NextSequence
// never hands out a stored id.
func bumpSequence(b *bbolt.Bucket, id int64) error {
	if uint64(id) > b.Sequence() {
		return b.SetSequence(uint64(id))
	}
	return nil
}

func getJSON[T any](b *bbolt.Bucket, id int64) (*T, error) {
	v := b.Get(itob(id))
	if v == nil {
		return nil, nil
	}
	var out T
	if err := json.Unmarshal(v, &out); err != nil {
		return nil, fmt.Errorf("failed to decode record %d: %w", id, err)
	}
	return &out, nil
}

func putJSON[T any](b *bbolt.Bucket, id int64, value *T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode record %d: %w", id, err)
	}
	return b.Put(itob(id), data)
}

func listJSON[T any](b *bbolt.Bucket) ([]T, error) {
	out := []T{}
	err := b.ForEach(func(k, v []byte) error {
		var item T
		if err := json.Unmarshal(v, &item); err != nil {
			return fmt.Errorf("failed to decode record %d: %w", btoi(k), err)
		}
		out = append(out, item)
		return nil
	})
	return out, err
}

// clearBucket empties a bucket but keeps its sequence, so ids are never
// reused after a clear.
func clearBucket(tx *bbolt.Tx, name []byte) error {
	seq := tx.Bucket(name).Sequence()
	if err := tx.DeleteBucket(name); err != nil {
		return err
	}
	b, err := tx.CreateBucket(name)
	if err != nil {
		return err
	}
	return b.SetSequence(seq)
}

// available reports dupErr if another record already owns the index key.
func available(index *bbolt.Bucket, key []byte, id int64, dupErr error) error {
	if owner := index.Get(key); owner != nil && btoi(owner) != id {
		return dupErr
	}
	return nil
}

// claim points an index key at id, failing with dupErr if another record
// already owns it.
func claim(index *bbolt.Bucket, key []byte, id int64, dupErr error) error {
	if err := available(index, key, id, dupErr); err != nil {
		return err
	}
	return index.Put(key, itob(id))
}
