package domain

import (
	"regexp"
	"strings"
	"time"
)

var unitCodePattern = regexp.MustCompile(`^[0-9]+-[0-9]+$`)

// Unit is a study topic within a subject, identified by a "chapter-section"
// code that is unique within the subject.
type Unit struct {
	ID        int64     `json:"id"`
	SubjectID int64     `json:"subjectId"`
	UnitCode  string    `json:"unitCode"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
}

// ValidUnitCode reports whether code has the form "<digits>-<digits>".
func ValidUnitCode(code string) bool {
	return unitCodePattern.MatchString(code)
}

// NewUnit creates an untitled unit for the given subject.
func NewUnit(subjectID int64, code string, now time.Time) (*Unit, error) {
	u := &Unit{
		SubjectID: subjectID,
		UnitCode:  strings.TrimSpace(code),
		CreatedAt: Timestamp(now),
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	return u, nil
}

// Validate checks the unit's fields.
func (u *Unit) Validate() error {
	if u.SubjectID <= 0 {
		return ErrIDInvalid
	}
	if !ValidUnitCode(u.UnitCode) {
		return ErrUnitCodeInvalid
	}
	return nil
}
