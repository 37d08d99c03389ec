package domain

import (
	"strings"
	"time"
)

// DefaultSubjects are the subjects seeded into an empty ledger, in display order.
var DefaultSubjects = []string{"消費税法", "所得税法", "法人税法", "住民税", "国税徴収法"}

// Subject is a field of study. Subjects are shown in SortOrder order.
type Subject struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	SortOrder int       `json:"sortOrder"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewSubject creates a subject with a trimmed name and the given sort order.
func NewSubject(name string, sortOrder int, now time.Time) (*Subject, error) {
	s := &Subject{
		Name:      strings.TrimSpace(name),
		SortOrder: sortOrder,
		CreatedAt: Timestamp(now),
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the subject's fields.
func (s *Subject) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrSubjectNameEmpty
	}
	return nil
}
