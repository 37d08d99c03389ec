package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/371050/study-pwa/internal/domain"
	"github.com/371050/study-pwa/internal/service"
	"github.com/371050/study-pwa/internal/store"
)

func TestListReviewsAndNext(t *testing.T) {
	d := newTestDeps()
	d.ledger.ListReviewsByUnitFn = func(_ context.Context, unitID int64) ([]domain.Review, error) {
		return []domain.Review{
			{ID: 1, UnitID: unitID, ReviewNo: 1, DoneDate: "2024-04-01"},
			{ID: 2, UnitID: unitID, ReviewNo: 2, DoneDate: "2024-04-02"},
		}, nil
	}
	d.ledger.GetNextReviewNoFn = func(context.Context, int64) (int, error) { return 3, nil }
	h := d.router(t)

	rec := doRequest(t, h, http.MethodGet, "/units/4/reviews", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list ReviewListResponse
	decodeBody(t, rec, &list)
	assert.Equal(t, int64(4), list.UnitID)
	assert.Len(t, list.Reviews, 2)

	rec = doRequest(t, h, http.MethodGet, "/units/4/reviews/next", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var next NextReviewNoResponse
	decodeBody(t, rec, &next)
	assert.Equal(t, NextReviewNoResponse{UnitID: 4, ReviewNo: 3}, next)
}

func TestInsertReview(t *testing.T) {
	tests := []struct {
		name       string
		body       interface{}
		err        error
		wantStatus int
		wantError  string
	}{
		{"created", InsertReviewRequest{ReviewNo: 1, DoneDate: "2024-04-01"}, nil, http.StatusCreated, ""},
		{"number taken", InsertReviewRequest{ReviewNo: 1, DoneDate: "2024-04-01"}, store.ErrReviewNoExists,
			http.StatusConflict, "This review number is already recorded for the unit"},
		{"missing unit", InsertReviewRequest{ReviewNo: 1, DoneDate: "2024-04-01"}, store.ErrUnitNotFound,
			http.StatusNotFound, "Unit not found"},
		{"zero number", InsertReviewRequest{ReviewNo: 0, DoneDate: "2024-04-01"}, nil,
			http.StatusBadRequest, "Invalid reviewNo: too small"},
		{"missing date", InsertReviewRequest{ReviewNo: 1}, nil,
			http.StatusBadRequest, "Invalid doneDate: required field"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDeps()
			d.ledger.InsertReviewFn = func(_ context.Context, unitID int64, no int, date string) (*domain.Review, error) {
				if tt.err != nil {
					return nil, tt.err
				}
				return &domain.Review{ID: 10, UnitID: unitID, ReviewNo: no, DoneDate: date}, nil
			}

			rec := doRequest(t, d.router(t), http.MethodPost, "/units/8/reviews", tt.body)
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, errorMessage(t, rec))
				return
			}
			var got domain.Review
			decodeBody(t, rec, &got)
			assert.Equal(t, int64(8), got.UnitID)
		})
	}
}

func TestRenumberReviews(t *testing.T) {
	d := newTestDeps()
	renumbered := false
	d.ledger.RenumberReviewsFn = func(context.Context, int64) error {
		renumbered = true
		return nil
	}
	d.ledger.ListReviewsByUnitFn = func(_ context.Context, unitID int64) ([]domain.Review, error) {
		return []domain.Review{{ID: 3, UnitID: unitID, ReviewNo: 1, DoneDate: "2024-04-01"}}, nil
	}

	rec := doRequest(t, d.router(t), http.MethodPost, "/units/2/reviews/renumber", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, renumbered)
	var list ReviewListResponse
	decodeBody(t, rec, &list)
	assert.Equal(t, 1, list.Reviews[0].ReviewNo)
}

func TestUpdateReview(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"updated", nil, http.StatusNoContent},
		{"other unit", service.ErrReviewUnitMismatch, http.StatusBadRequest},
		{"date taken", store.ErrReviewDateExists, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDeps()
			d.ledger.UpdateReviewFn = func(_ context.Context, reviewID, unitID int64, no int, date string) error {
				assert.Equal(t, int64(12), reviewID)
				assert.Equal(t, int64(3), unitID)
				assert.Equal(t, 2, no)
				assert.Equal(t, "2024-04-05", date)
				return tt.err
			}

			rec := doRequest(t, d.router(t), http.MethodPut, "/reviews/12",
				UpdateReviewRequest{UnitID: 3, ReviewNo: 2, DoneDate: "2024-04-05"})
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}
}

func TestDeleteReview(t *testing.T) {
	d := newTestDeps()
	var deleted int64
	d.ledger.DeleteReviewFn = func(_ context.Context, reviewID int64) error {
		deleted = reviewID
		return nil
	}

	rec := doRequest(t, d.router(t), http.MethodDelete, "/reviews/9", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, int64(9), deleted)
}
