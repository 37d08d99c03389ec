package api

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/371050/study-pwa/internal/domain"
	"github.com/371050/study-pwa/internal/service/snapshot"
)

func TestExportSnapshot(t *testing.T) {
	d := newTestDeps()
	d.snapshots.FileName = "study-sync-2024-04-10.json"
	created := snapshot.Time{Time: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)}
	d.snapshots.ExportFn = func(context.Context) (*snapshot.Snapshot, error) {
		return &snapshot.Snapshot{
			SchemaVersion: snapshot.SchemaVersion,
			ExportedAt:    created,
			Subjects:      []snapshot.Subject{{ID: 1, Name: "消費税法", CreatedAt: created}},
			Units:         []snapshot.Unit{},
			Reviews:       []snapshot.Review{},
		}, nil
	}

	rec := doRequest(t, d.router(t), http.MethodGet, "/snapshot", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="study-sync-2024-04-10.json"`, rec.Header().Get("Content-Disposition"))
	assert.Contains(t, rec.Body.String(), `"name": "消費税法"`)
	assert.Contains(t, rec.Body.String(), `"createdAt": "2024-04-01T00:00:00.000Z"`)
}

func TestImportSnapshot(t *testing.T) {
	t.Run("replaces ledger", func(t *testing.T) {
		d := newTestDeps()
		var got string
		d.snapshots.ImportOverwriteFn = func(_ context.Context, raw []byte) error {
			got = string(raw)
			return nil
		}

		body := `{"subjects":[],"units":[],"reviews":[]}`
		rec := doRequest(t, d.router(t), http.MethodPut, "/snapshot", body)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, body, got)
	})

	t.Run("malformed document", func(t *testing.T) {
		d := newTestDeps()
		d.snapshots.Err = &domain.FormatError{Problems: []string{"units: units is required"}}

		rec := doRequest(t, d.router(t), http.MethodPut, "/snapshot", `{"subjects":[]}`)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, "Invalid snapshot: units: units is required", errorMessage(t, rec))
	})

	t.Run("too large", func(t *testing.T) {
		d := newTestDeps()
		called := false
		d.snapshots.ImportOverwriteFn = func(context.Context, []byte) error {
			called = true
			return nil
		}

		rec := doRequest(t, d.router(t), http.MethodPut, "/snapshot", strings.Repeat(" ", MaxSnapshotBytes+1))
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		assert.False(t, called)
	})
}

func TestClearSnapshot(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantWipe   bool
		wantClear  bool
	}{
		{"clear", "", http.StatusNoContent, false, true},
		{"reseed", "?reseed=true", http.StatusNoContent, true, false},
		{"explicit false", "?reseed=false", http.StatusNoContent, false, true},
		{"bad flag", "?reseed=maybe", http.StatusBadRequest, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDeps()
			var wiped, cleared bool
			d.snapshots.WipeFn = func(context.Context) error {
				wiped = true
				return nil
			}
			d.snapshots.ClearAllFn = func(context.Context) error {
				cleared = true
				return nil
			}

			rec := doRequest(t, d.router(t), http.MethodDelete, "/snapshot"+tt.query, nil)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantWipe, wiped)
			assert.Equal(t, tt.wantClear, cleared)
		})
	}
}
