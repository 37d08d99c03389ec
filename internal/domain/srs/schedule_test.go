package srs

import (
	"testing"

	"github.com/371050/study-pwa/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	today := "2024-05-10"
	tests := []struct {
		name    string
		nextDue string
		lastNo  int
		want    Classification
	}{
		{"never reviewed", "", 0, Classification{}},
		{"overdue", "2024-05-07", 2, Classification{Due: true, OverdueDays: 3}},
		{"due today", "2024-05-10", 1, Classification{Due: true, Upcoming: true}},
		{"tomorrow", "2024-05-11", 1, Classification{Upcoming: true}},
		{"last upcoming day", "2024-05-17", 3, Classification{Upcoming: true}},
		{"beyond window", "2024-05-18", 4, Classification{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Classify(Status{LastNo: tc.lastNo, NextDue: tc.nextDue}, today)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestPlan(t *testing.T) {
	t.Parallel()

	subjects := []domain.Subject{
		{ID: 1, Name: "消費税法", SortOrder: 1},
		{ID: 2, Name: "所得税法", SortOrder: 0},
	}
	status := func(no int, due string) Status { return Status{LastNo: no, LastDate: "2024-01-01", NextDue: due} }
	units := []UnitStatus{
		{Unit: domain.Unit{ID: 10, SubjectID: 1, UnitCode: "2-1"}, Status: status(1, "2024-05-08")},
		{Unit: domain.Unit{ID: 11, SubjectID: 1, UnitCode: "1-1"}, Status: status(1, "2024-05-01")},
		{Unit: domain.Unit{ID: 12, SubjectID: 2, UnitCode: "3-1"}, Status: status(2, "2024-05-09")},
		{Unit: domain.Unit{ID: 13, SubjectID: 1, UnitCode: "1-2"}, Status: status(1, "2024-05-08")},
		{Unit: domain.Unit{ID: 14, SubjectID: 99, UnitCode: "1-1"}, Status: status(1, "2024-05-02")},
		{Unit: domain.Unit{ID: 15, SubjectID: 2, UnitCode: "1-1"}},
		{Unit: domain.Unit{ID: 16, SubjectID: 1, UnitCode: "4-1"}, Status: status(3, "2024-05-12")},
		{Unit: domain.Unit{ID: 17, SubjectID: 2, UnitCode: "4-1"}, Status: status(3, "2024-05-12")},
		{Unit: domain.Unit{ID: 18, SubjectID: 2, UnitCode: "5-1"}, Status: status(3, "2024-05-10")},
		{Unit: domain.Unit{ID: 19, SubjectID: 2, UnitCode: "6-1"}, Status: status(3, "2024-06-10")},
	}

	due, upcoming, err := Plan("2024-05-10", subjects, units)
	require.NoError(t, err)

	dueIDs := make([]int64, 0, len(due))
	for _, e := range due {
		dueIDs = append(dueIDs, e.UnitID)
	}
	// subject 2 (order 0) first; within subject 1 most overdue first, then code; unknown subject last
	assert.Equal(t, []int64{12, 18, 11, 13, 10, 14}, dueIDs)
	assert.Equal(t, 9, due[2].OverdueDays)
	assert.Equal(t, UnknownSubjectOrder, due[5].SubjectOrder)
	assert.Empty(t, due[5].SubjectName)
	assert.Equal(t, "所得税法", due[0].SubjectName)

	upIDs := make([]int64, 0, len(upcoming))
	for _, e := range upcoming {
		upIDs = append(upIDs, e.UnitID)
	}
	assert.Equal(t, []int64{18, 17, 16}, upIDs)
}

func TestPlan_Empty(t *testing.T) {
	t.Parallel()

	due, upcoming, err := Plan("2024-05-10", nil, nil)
	require.NoError(t, err)
	assert.NotNil(t, due)
	assert.NotNil(t, upcoming)
	assert.Empty(t, due)
	assert.Empty(t, upcoming)
}
