package boltstore

import (
	"bytes"
	"context"
	"encoding/binary"
	"log/slog"

	"go.etcd.io/bbolt"

	"github.com/371050/study-pwa/internal/domain"
	"github.com/371050/study-pwa/internal/platform/logger"
	"github.com/371050/study-pwa/internal/store"
)

type reviewStore struct{ t tables }

var _ store.ReviewStore = reviewStore{}

func reviewNoKey(unitID int64, no int) []byte {
	n := make([]byte, 8)
	binary.BigEndian.PutUint64(n, uint64(no))
	return compositeKey(unitID, n)
}

func reviewDateKey(unitID int64, date string) []byte {
	return compositeKey(unitID, []byte(date))
}

func (s reviewStore) Insert(ctx context.Context, review *domain.Review) error {
	if err := review.Validate(); err != nil {
		return err
	}
	err := s.t.update(ctx, func(tx *bbolt.Tx) error {
		seq, err := tx.Bucket(reviewsBucket).NextSequence()
		if err != nil {
			return err
		}
		record := *review
		record.ID = int64(seq)
		if err := writeReview(tx, &record); err != nil {
			return err
		}
		review.ID = record.ID
		return nil
	})
	if err != nil {
		logger.FromContextOrDefault(ctx, s.t.logger).Warn("failed to insert review",
			slog.String("error", err.Error()),
			slog.Int64("unit_id", review.UnitID),
			slog.Int("review_no", review.ReviewNo),
			slog.String("done_date", review.DoneDate))
		return store.NewStoreError("review", "insert", "could not insert review", err)
	}
	return nil
}

func (s reviewStore) Get(ctx context.Context, id int64) (*domain.Review, error) {
	var review *domain.Review
	err := s.t.view(ctx, func(tx *bbolt.Tx) error {
		var err error
		review, err = getJSON[domain.Review](tx.Bucket(reviewsBucket), id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if review == nil {
		return nil, store.ErrReviewNotFound
	}
	return review, nil
}

func (s reviewStore) GetAll(ctx context.Context) ([]domain.Review, error) {
	var reviews []domain.Review
	err := s.t.view(ctx, func(tx *bbolt.Tx) error {
		var err error
		reviews, err = listJSON[domain.Review](tx.Bucket(reviewsBucket))
		return err
	})
	return reviews, err
}

func (s reviewStore) FindByUnitNo(ctx context.Context, unitID int64, no int) (*domain.Review, error) {
	return s.findByIndex(ctx, reviewNoIndex, reviewNoKey(unitID, no))
}

func (s reviewStore) FindByUnitDate(ctx context.Context, unitID int64, date string) (*domain.Review, error) {
	return s.findByIndex(ctx, reviewDateIndex, reviewDateKey(unitID, date))
}

func (s reviewStore) findByIndex(ctx context.Context, index, key []byte) (*domain.Review, error) {
	var review *domain.Review
	err := s.t.view(ctx, func(tx *bbolt.Tx) error {
		id := tx.Bucket(index).Get(key)
		if id == nil {
			return nil
		}
		var err error
		review, err = getJSON[domain.Review](tx.Bucket(reviewsBucket), btoi(id))
		return err
	})
	if err != nil {
		return nil, err
	}
	if review == nil {
		return nil, store.ErrReviewNotFound
	}
	return review, nil
}

func (s reviewStore) ListByUnit(ctx context.Context, unitID int64) ([]domain.Review, error) {
	reviews := []domain.Review{}
	err := s.t.view(ctx, func(tx *bbolt.Tx) error {
		b := tx.Bucket(reviewsBucket)
		for _, id := range unitReviewIDs(tx, unitID) {
			review, err := getJSON[domain.Review](b, id)
			if err != nil {
				return err
			}
			if review != nil {
				reviews = append(reviews, *review)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	domain.SortReviews(reviews)
	return reviews, nil
}

// unitReviewIDs returns the ids of the unit's reviews in review number order.
func unitReviewIDs(tx *bbolt.Tx, unitID int64) []int64 {
	var ids []int64
	prefix := itob(unitID)
	c := tx.Bucket(reviewNoIndex).Cursor()
	for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
		ids = append(ids, btoi(v))
	}
	return ids
}

func (s reviewStore) Put(ctx context.Context, review *domain.Review) error {
	if review.ID <= 0 {
		return domain.ErrIDInvalid
	}
	if err := review.Validate(); err != nil {
		return err
	}
	err := s.t.update(ctx, func(tx *bbolt.Tx) error {
		return writeReview(tx, review)
	})
	if err != nil {
		logger.FromContextOrDefault(ctx, s.t.logger).Warn("failed to put review",
			slog.String("error", err.Error()),
			slog.Int64("review_id", review.ID))
		return store.NewStoreError("review", "put", "could not write review", err)
	}
	return nil
}

// writeReview checks the unit reference and both unique indexes before
// touching anything, then stores review under its id.
func writeReview(tx *bbolt.Tx, review *domain.Review) error {
	if tx.Bucket(unitsBucket).Get(itob(review.UnitID)) == nil {
		return store.ErrInvalidReference
	}

	b := tx.Bucket(reviewsBucket)
	noIndex := tx.Bucket(reviewNoIndex)
	dateIndex := tx.Bucket(reviewDateIndex)

	noKey := reviewNoKey(review.UnitID, review.ReviewNo)
	dateKey := reviewDateKey(review.UnitID, review.DoneDate)
	if err := available(noIndex, noKey, review.ID, store.ErrReviewNoExists); err != nil {
		return err
	}
	if err := available(dateIndex, dateKey, review.ID, store.ErrReviewDateExists); err != nil {
		return err
	}

	old, err := getJSON[domain.Review](b, review.ID)
	if err != nil {
		return err
	}
	if old != nil {
		if err := unindexReview(tx, old); err != nil {
			return err
		}
	}
	if err := noIndex.Put(noKey, itob(review.ID)); err != nil {
		return err
	}
	if err := dateIndex.Put(dateKey, itob(review.ID)); err != nil {
		return err
	}
	if err := bumpSequence(b, review.ID); err != nil {
		return err
	}
	return putJSON(b, review.ID, review)
}

func unindexReview(tx *bbolt.Tx, review *domain.Review) error {
	if err := tx.Bucket(reviewNoIndex).Delete(reviewNoKey(review.UnitID, review.ReviewNo)); err != nil {
		return err
	}
	return tx.Bucket(reviewDateIndex).Delete(reviewDateKey(review.UnitID, review.DoneDate))
}

func (s reviewStore) Delete(ctx context.Context, id int64) error {
	return s.t.update(ctx, func(tx *bbolt.Tx) error {
		b := tx.Bucket(reviewsBucket)
		old, err := getJSON[domain.Review](b, id)
		if err != nil || old == nil {
			return err
		}
		if err := unindexReview(tx, old); err != nil {
			return err
		}
		return b.Delete(itob(id))
	})
}

func (s reviewStore) DeleteByUnit(ctx context.Context, unitID int64) (int, error) {
	var n int
	err := s.t.update(ctx, func(tx *bbolt.Tx) error {
		b := tx.Bucket(reviewsBucket)
		for _, id := range unitReviewIDs(tx, unitID) {
			old, err := getJSON[domain.Review](b, id)
			if err != nil {
				return err
			}
			if old == nil {
				continue
			}
			if err := unindexReview(tx, old); err != nil {
				return err
			}
			if err := b.Delete(itob(id)); err != nil {
				return err
			}
			n++
		}
		return nil
	})
	if err != nil {
		return 0, store.NewStoreError("review", "delete", "could not delete unit reviews", err)
	}
	return n, nil
}

func (s reviewStore) Clear(ctx context.Context) error {
	return s.t.update(ctx, func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{reviewNoIndex, reviewDateIndex, reviewsBucket} {
			if err := clearBucket(tx, name); err != nil {
				return err
			}
		}
		return nil
	})
}
