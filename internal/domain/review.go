package domain

import (
	"sort"
	"time"
)

// Review is one recorded study session of a unit. Within a unit both ReviewNo
// and DoneDate are unique.
type Review struct {
	ID        int64     `json:"id"`
	UnitID    int64     `json:"unitId"`
	ReviewNo  int       `json:"reviewNo"`
	DoneDate  string    `json:"doneDate"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewReview creates a review of unitID numbered no and done on date.
func NewReview(unitID int64, no int, date string, now time.Time) (*Review, error) {
	r := &Review{
		UnitID:    unitID,
		ReviewNo:  no,
		DoneDate:  date,
		CreatedAt: Timestamp(now),
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Validate checks the review's fields.
func (r *Review) Validate() error {
	if r.UnitID <= 0 {
		return ErrIDInvalid
	}
	if r.ReviewNo <= 0 {
		return ErrReviewNoInvalid
	}
	if _, err := ParseDate(r.DoneDate); err != nil {
		return err
	}
	return nil
}

// SortReviews orders reviews by (ReviewNo, DoneDate, ID), the canonical read order.
func SortReviews(reviews []Review) {
	sort.Slice(reviews, func(i, j int) bool {
		a, b := reviews[i], reviews[j]
		if a.ReviewNo != b.ReviewNo {
			return a.ReviewNo < b.ReviewNo
		}
		if a.DoneDate != b.DoneDate {
			return a.DoneDate < b.DoneDate
		}
		return a.ID < b.ID
	})
}

// SortChronologically orders reviews by (DoneDate, ID), the renumbering order.
func SortChronologically(reviews []Review) {
	sort.Slice(reviews, func(i, j int) bool {
		a, b := reviews[i], reviews[j]
		if a.DoneDate != b.DoneDate {
			return a.DoneDate < b.DoneDate
		}
		return a.ID < b.ID
	})
}
