package snapshot

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/371050/study-pwa/internal/domain"
)

// SchemaVersion is the document version written by Export.
const SchemaVersion = 1

// TimeLayout renders timestamps in UTC with millisecond precision.
const TimeLayout = "2006-01-02T15:04:05.000Z"

// Time is a timestamp that encodes with TimeLayout and decodes any RFC 3339
// string. Decoding normalizes to UTC truncated to milliseconds, the
// precision the store keeps, so an imported value with another offset or
// finer precision is exported in its normalized form. Documents written by
// Export round-trip byte for byte.
type Time struct {
	time.Time
}

// MarshalJSON implements json.Marshaler.
func (t Time) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.UTC().Format(TimeLayout))
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Time) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	t.Time = domain.Timestamp(parsed)
	return nil
}

// Subject is the exported form of domain.Subject.
type Subject struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	SortOrder int    `json:"sortOrder"`
	CreatedAt Time   `json:"createdAt"`
}

// Unit is the exported form of domain.Unit.
type Unit struct {
	ID        int64  `json:"id"`
	SubjectID int64  `json:"subjectId"`
	UnitCode  string `json:"unitCode"`
	Title     string `json:"title"`
	CreatedAt Time   `json:"createdAt"`
}

// Review is the exported form of domain.Review.
type Review struct {
	ID        int64  `json:"id"`
	UnitID    int64  `json:"unitId"`
	ReviewNo  int    `json:"reviewNo"`
	DoneDate  string `json:"doneDate"`
	CreatedAt Time   `json:"createdAt"`
}

// Snapshot is the complete ledger. Each array is ordered by id.
type Snapshot struct {
	SchemaVersion int       `json:"schemaVersion"`
	ExportedAt    Time      `json:"exportedAt"`
	Subjects      []Subject `json:"subjects"`
	Units         []Unit    `json:"units"`
	Reviews       []Review  `json:"reviews"`
}

// Encode writes the snapshot as indented JSON.
func (s *Snapshot) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(s)
}

func fromSubject(s domain.Subject) Subject {
	return Subject{ID: s.ID, Name: s.Name, SortOrder: s.SortOrder, CreatedAt: Time{s.CreatedAt}}
}

func fromUnit(u domain.Unit) Unit {
	return Unit{ID: u.ID, SubjectID: u.SubjectID, UnitCode: u.UnitCode, Title: u.Title, CreatedAt: Time{u.CreatedAt}}
}

func fromReview(r domain.Review) Review {
	return Review{ID: r.ID, UnitID: r.UnitID, ReviewNo: r.ReviewNo, DoneDate: r.DoneDate, CreatedAt: Time{r.CreatedAt}}
}

// createdAt falls back to now for records imported without a timestamp.
func createdAt(t Time, now time.Time) time.Time {
	if t.IsZero() {
		return domain.Timestamp(now)
	}
	return t.Time
}

func (s Subject) toDomain(now time.Time) *domain.Subject {
	return &domain.Subject{ID: s.ID, Name: s.Name, SortOrder: s.SortOrder, CreatedAt: createdAt(s.CreatedAt, now)}
}

func (u Unit) toDomain(now time.Time) *domain.Unit {
	return &domain.Unit{ID: u.ID, SubjectID: u.SubjectID, UnitCode: u.UnitCode, Title: u.Title, CreatedAt: createdAt(u.CreatedAt, now)}
}

func (r Review) toDomain(now time.Time) *domain.Review {
	return &domain.Review{ID: r.ID, UnitID: r.UnitID, ReviewNo: r.ReviewNo, DoneDate: r.DoneDate, CreatedAt: createdAt(r.CreatedAt, now)}
}
