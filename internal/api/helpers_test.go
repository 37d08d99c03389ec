package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/371050/study-pwa/internal/mocks"
	"github.com/371050/study-pwa/internal/platform/logger"
)

type testDeps struct {
	subjects  *mocks.MockSubjectService
	ledger    *mocks.MockLedgerService
	schedule  *mocks.MockScheduleService
	entries   *mocks.MockEntryService
	snapshots *mocks.MockSnapshotService
}

func newTestDeps() *testDeps {
	return &testDeps{
		subjects:  &mocks.MockSubjectService{},
		ledger:    &mocks.MockLedgerService{},
		schedule:  &mocks.MockScheduleService{TodayValue: "2024-04-10"},
		entries:   &mocks.MockEntryService{},
		snapshots: &mocks.MockSnapshotService{},
	}
}

// router mounts every handler the way the server does, minus middleware.
func (d *testDeps) router(t *testing.T) http.Handler {
	t.Helper()
	log, _ := logger.NewTestLogger(t)

	sh := NewSubjectHandler(d.subjects, d.snapshots, log)
	uh := NewUnitHandler(d.ledger, d.schedule, d.entries, log)
	rh := NewReviewHandler(d.ledger, log)
	sch := NewScheduleHandler(d.schedule, log)
	snh := NewSnapshotHandler(d.snapshots, log)

	r := chi.NewRouter()
	r.Get("/subjects", sh.ListSubjects)
	r.Post("/subjects", sh.AddSubject)
	r.Post("/subjects/seed", sh.SeedSubjects)
	r.Post("/subjects/{id}/move", sh.MoveSubject)
	r.Get("/subjects/{id}/units", uh.ListUnits)
	r.Post("/subjects/{id}/units", uh.CreateUnit)
	r.Post("/subjects/{id}/entries", uh.ApplyEntries)
	r.Post("/subjects/{id}/record", uh.RecordEntry)
	r.Put("/units/{id}/title", uh.UpdateTitle)
	r.Delete("/units/{id}", uh.DeleteUnit)
	r.Get("/units/{id}/status", uh.UnitStatus)
	r.Get("/units/{id}/reviews", rh.ListReviews)
	r.Get("/units/{id}/reviews/next", rh.NextReviewNo)
	r.Post("/units/{id}/reviews", rh.InsertReview)
	r.Post("/units/{id}/reviews/renumber", rh.RenumberReviews)
	r.Put("/reviews/{id}", rh.UpdateReview)
	r.Delete("/reviews/{id}", rh.DeleteReview)
	r.Get("/schedule/due", sch.Due)
	r.Get("/schedule/upcoming", sch.Upcoming)
	r.Get("/snapshot", snh.Export)
	r.Put("/snapshot", snh.Import)
	r.Delete("/snapshot", snh.Clear)
	return r
}

func doRequest(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Error string `json:"error"`
	}
	decodeBody(t, rec, &resp)
	return resp.Error
}
