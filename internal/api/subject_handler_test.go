package api

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/371050/study-pwa/internal/domain"
	"github.com/371050/study-pwa/internal/store"
)

func TestNewSubjectHandlerPanicsWithoutLogger(t *testing.T) {
	assert.Panics(t, func() { NewSubjectHandler(nil, nil, nil) })
}

func TestListSubjects(t *testing.T) {
	d := newTestDeps()
	d.subjects.Subjects = []domain.Subject{
		{ID: 1, Name: "消費税法", SortOrder: 0},
		{ID: 2, Name: "所得税法", SortOrder: 1},
	}

	rec := doRequest(t, d.router(t), http.MethodGet, "/subjects", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got []domain.Subject
	decodeBody(t, rec, &got)
	require.Len(t, got, 2)
	assert.Equal(t, "消費税法", got[0].Name)
}

func TestAddSubject(t *testing.T) {
	tests := []struct {
		name       string
		body       interface{}
		err        error
		wantStatus int
		wantError  string
	}{
		{"created", AddSubjectRequest{Name: "法人税法"}, nil, http.StatusCreated, ""},
		{"missing name", map[string]string{}, nil, http.StatusBadRequest, "Invalid name: required field"},
		{"malformed body", `{"name":`, nil, http.StatusBadRequest, "Invalid request format"},
		{"blank name", AddSubjectRequest{Name: "  "}, domain.ErrSubjectNameEmpty,
			http.StatusBadRequest, "Subject name cannot be empty"},
		{"duplicate", AddSubjectRequest{Name: "住民税"}, store.ErrSubjectNameExists,
			http.StatusConflict, "A subject with this name already exists"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDeps()
			d.subjects.Err = tt.err

			rec := doRequest(t, d.router(t), http.MethodPost, "/subjects", tt.body)
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, errorMessage(t, rec))
				return
			}
			var got domain.Subject
			decodeBody(t, rec, &got)
			assert.Equal(t, "法人税法", got.Name)
		})
	}
}

func TestMoveSubject(t *testing.T) {
	t.Run("moves and returns list", func(t *testing.T) {
		d := newTestDeps()
		d.subjects.Subjects = []domain.Subject{{ID: 2, Name: "所得税法"}, {ID: 1, Name: "消費税法", SortOrder: 1}}

		rec := doRequest(t, d.router(t), http.MethodPost, "/subjects/2/move", MoveSubjectRequest{Direction: -1})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, []int64{2}, d.subjects.MoveCalls.IDs)
		assert.Equal(t, []int{-1}, d.subjects.MoveCalls.Directions)

		var got []domain.Subject
		decodeBody(t, rec, &got)
		assert.Len(t, got, 2)
	})

	t.Run("rejects other directions", func(t *testing.T) {
		d := newTestDeps()
		rec := doRequest(t, d.router(t), http.MethodPost, "/subjects/2/move", MoveSubjectRequest{Direction: 2})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid direction: invalid value", errorMessage(t, rec))
		assert.Empty(t, d.subjects.MoveCalls.IDs)
	})

	t.Run("rejects bad id", func(t *testing.T) {
		d := newTestDeps()
		rec := doRequest(t, d.router(t), http.MethodPost, "/subjects/abc/move", MoveSubjectRequest{Direction: 1})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid id", errorMessage(t, rec))
	})
}

func TestSeedSubjects(t *testing.T) {
	d := newTestDeps()
	d.snapshots.SeedDefaultSubjectsFn = func(context.Context) (int, error) { return 5, nil }

	rec := doRequest(t, d.router(t), http.MethodPost, "/subjects/seed", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got SeedResponse
	decodeBody(t, rec, &got)
	assert.Equal(t, 5, got.Seeded)

	d.snapshots.SeedDefaultSubjectsFn = nil
	d.snapshots.Err = errors.New("locked")
	rec = doRequest(t, d.router(t), http.MethodPost, "/subjects/seed", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to seed subjects", errorMessage(t, rec))
}
