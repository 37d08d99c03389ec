package srs

import (
	"github.com/371050/study-pwa/internal/domain"
)

// Status summarizes a unit's review history. The zero value describes a unit
// that has never been reviewed.
type Status struct {
	LastNo   int    `json:"lastNo"`
	LastDate string `json:"lastDate"`
	NextDue  string `json:"nextDue"`
}

// Reviewed reports whether the unit has at least one review.
func (s Status) Reviewed() bool {
	return s.LastNo > 0
}

// ComputeStatus derives a unit's status from its reviews, in any order.
//
// LastNo is the highest review number. If several reviews share it, the one
// with the largest id supplies LastDate. NextDue is LastDate plus
// IntervalDays(LastNo).
func ComputeStatus(reviews []domain.Review) (Status, error) {
	if len(reviews) == 0 {
		return Status{}, nil
	}

	last := reviews[0]
	for _, r := range reviews[1:] {
		if r.ReviewNo > last.ReviewNo || (r.ReviewNo == last.ReviewNo && r.ID > last.ID) {
			last = r
		}
	}

	nextDue, err := domain.AddDays(last.DoneDate, IntervalDays(last.ReviewNo))
	if err != nil {
		return Status{}, err
	}

	return Status{
		LastNo:   last.ReviewNo,
		LastDate: last.DoneDate,
		NextDue:  nextDue,
	}, nil
}
