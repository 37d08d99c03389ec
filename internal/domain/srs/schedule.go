package srs

import (
	"sort"

	"github.com/371050/study-pwa/internal/domain"
)

// UnitStatus pairs a unit with its computed status.
type UnitStatus struct {
	Unit   domain.Unit `json:"unit"`
	Status Status      `json:"status"`
}

// Entry is one row of a due or upcoming list.
type Entry struct {
	SubjectID    int64  `json:"subjectId"`
	SubjectName  string `json:"subject"`
	SubjectOrder int    `json:"subjectOrder"`
	UnitID       int64  `json:"unitId"`
	UnitCode     string `json:"unitCode"`
	Title        string `json:"title"`
	LastNo       int    `json:"lastNo"`
	LastDate     string `json:"lastDate"`
	NextDue      string `json:"nextDue"`
	OverdueDays  int    `json:"overdueDays"`
}

// Classification is the outcome of comparing a status against today.
type Classification struct {
	Due         bool
	Upcoming    bool
	OverdueDays int
}

// Classify compares a status with today (YYYY-MM-DD). A unit is due when its
// next review date is on or before today, and upcoming when it falls within
// today..today+UpcomingWindowDays inclusive. Both hold when it is due today.
// Unreviewed units are neither.
func Classify(status Status, today string) (Classification, error) {
	if !status.Reviewed() {
		return Classification{}, nil
	}

	diff, err := domain.DaysBetween(status.NextDue, today)
	if err != nil {
		return Classification{}, err
	}

	c := Classification{
		Due:      diff >= 0,
		Upcoming: diff <= 0 && -diff <= UpcomingWindowDays,
	}
	if c.Due {
		c.OverdueDays = diff
	}
	return c, nil
}

// Plan classifies every unit against today and returns the due and upcoming
// lists in display order.
func Plan(today string, subjects []domain.Subject, units []UnitStatus) (due, upcoming []Entry, err error) {
	bySubject := make(map[int64]domain.Subject, len(subjects))
	for _, s := range subjects {
		bySubject[s.ID] = s
	}

	due = []Entry{}
	upcoming = []Entry{}
	for _, us := range units {
		c, err := Classify(us.Status, today)
		if err != nil {
			return nil, nil, err
		}
		if !c.Due && !c.Upcoming {
			continue
		}

		e := Entry{
			SubjectID:    us.Unit.SubjectID,
			SubjectOrder: UnknownSubjectOrder,
			UnitID:       us.Unit.ID,
			UnitCode:     us.Unit.UnitCode,
			Title:        us.Unit.Title,
			LastNo:       us.Status.LastNo,
			LastDate:     us.Status.LastDate,
			NextDue:      us.Status.NextDue,
			OverdueDays:  c.OverdueDays,
		}
		if s, ok := bySubject[us.Unit.SubjectID]; ok {
			e.SubjectName = s.Name
			e.SubjectOrder = s.SortOrder
		}

		if c.Due {
			due = append(due, e)
		}
		if c.Upcoming {
			upcoming = append(upcoming, e)
		}
	}

	SortDue(due)
	SortUpcoming(upcoming)
	return due, upcoming, nil
}

// SortDue orders due entries by subject order, then most overdue first, then
// next due date, then unit code.
func SortDue(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.SubjectOrder != b.SubjectOrder {
			return a.SubjectOrder < b.SubjectOrder
		}
		if a.OverdueDays != b.OverdueDays {
			return a.OverdueDays > b.OverdueDays
		}
		if a.NextDue != b.NextDue {
			return a.NextDue < b.NextDue
		}
		return a.UnitCode < b.UnitCode
	})
}

// SortUpcoming orders upcoming entries by next due date, then subject order,
// then unit code.
func SortUpcoming(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.NextDue != b.NextDue {
			return a.NextDue < b.NextDue
		}
		if a.SubjectOrder != b.SubjectOrder {
			return a.SubjectOrder < b.SubjectOrder
		}
		return a.UnitCode < b.UnitCode
	})
}
