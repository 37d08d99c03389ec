package api

import (
	"github.com/371050/study-pwa/internal/domain"
	"github.com/371050/study-pwa/internal/domain/srs"
)

// AddSubjectRequest is the body of POST /subjects.
type AddSubjectRequest struct {
	Name string `json:"name" validate:"required"`
}

// MoveSubjectRequest is the body of POST /subjects/{id}/move.
type MoveSubjectRequest struct {
	Direction int `json:"direction" validate:"oneof=-1 1"`
}

// CreateUnitRequest is the body of POST /subjects/{id}/units.
type CreateUnitRequest struct {
	UnitCode string `json:"unitCode" validate:"required"`
}

// UpdateTitleRequest is the body of PUT /units/{id}/title. An empty title
// clears it.
type UpdateTitleRequest struct {
	Title string `json:"title"`
}

// ApplyEntriesRequest is the body of POST /subjects/{id}/entries.
type ApplyEntriesRequest struct {
	Text      string `json:"text"`
	Overwrite bool   `json:"overwrite"`
}

// RecordRequest is the body of POST /subjects/{id}/record. A missing
// reviewNo records the unit's next number.
type RecordRequest struct {
	UnitCode  string `json:"unitCode" validate:"required"`
	Title     string `json:"title"`
	ReviewNo  *int   `json:"reviewNo" validate:"omitempty,gt=0"`
	DoneDate  string `json:"doneDate" validate:"required,datetime=2006-01-02"`
	Overwrite bool   `json:"overwrite"`
}

// InsertReviewRequest is the body of POST /units/{id}/reviews.
type InsertReviewRequest struct {
	ReviewNo int    `json:"reviewNo" validate:"gt=0"`
	DoneDate string `json:"doneDate" validate:"required,datetime=2006-01-02"`
}

// UpdateReviewRequest is the body of PUT /reviews/{id}.
type UpdateReviewRequest struct {
	UnitID   int64  `json:"unitId" validate:"gt=0"`
	ReviewNo int    `json:"reviewNo" validate:"gt=0"`
	DoneDate string `json:"doneDate" validate:"required,datetime=2006-01-02"`
}

// UnitCreatedResponse is returned by POST /subjects/{id}/units.
type UnitCreatedResponse struct {
	UnitID int64 `json:"unitId"`
}

// NextReviewNoResponse is returned by GET /units/{id}/reviews/next.
type NextReviewNoResponse struct {
	UnitID   int64 `json:"unitId"`
	ReviewNo int   `json:"reviewNo"`
}

// UnitListResponse is returned by GET /subjects/{id}/units.
type UnitListResponse struct {
	SubjectID int64            `json:"subjectId"`
	Units     []srs.UnitStatus `json:"units"`
}

// ReviewListResponse is returned by GET /units/{id}/reviews.
type ReviewListResponse struct {
	UnitID  int64           `json:"unitId"`
	Reviews []domain.Review `json:"reviews"`
}

// ScheduleResponse is returned by the due and upcoming endpoints.
type ScheduleResponse struct {
	Today   string      `json:"today"`
	Entries []srs.Entry `json:"entries"`
}

// SeedResponse is returned by POST /subjects/seed.
type SeedResponse struct {
	Seeded int `json:"seeded"`
}
