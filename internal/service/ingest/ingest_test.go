package ingest_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/371050/study-pwa/internal/domain"
	"github.com/371050/study-pwa/internal/events"
	"github.com/371050/study-pwa/internal/platform/logger"
	"github.com/371050/study-pwa/internal/platform/sqlstore"
	"github.com/371050/study-pwa/internal/service"
	"github.com/371050/study-pwa/internal/service/ingest"
	"github.com/371050/study-pwa/internal/store"
)

var fixedNow = time.Date(2024, 1, 20, 9, 0, 0, 0, time.UTC)

type recorder struct {
	mu     sync.Mutex
	events []*events.LedgerEvent
}

func (r *recorder) EmitEvent(_ context.Context, e *events.LedgerEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) count(eventType string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Type == eventType {
			n++
		}
	}
	return n
}

type fixture struct {
	store   store.Store
	ingest  *ingest.Service
	ledger  service.LedgerService
	events  *recorder
	subject *domain.Subject
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log, _ := logger.NewTestLogger(t)
	st, err := sqlstore.Open(context.Background(), sqlstore.DialectSQLite, filepath.Join(t.TempDir(), "study.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	rec := &recorder{}
	opts := []service.Option{
		service.WithClock(func() time.Time { return fixedNow }),
		service.WithLocation(time.UTC),
		service.WithEmitter(rec),
	}
	svc, err := ingest.NewService(st, log, opts...)
	require.NoError(t, err)
	ledger, err := service.NewLedgerService(st, log, opts...)
	require.NoError(t, err)
	subjects, err := service.NewSubjectService(st, log, opts...)
	require.NoError(t, err)
	subject, err := subjects.AddSubject(context.Background(), "消費税法")
	require.NoError(t, err)

	return &fixture{store: st, ingest: svc, ledger: ledger, events: rec, subject: subject}
}

func (f *fixture) unitByCode(t *testing.T, code string) *domain.Unit {
	t.Helper()
	u, err := f.store.Units().FindBySubjectCode(context.Background(), f.subject.ID, code)
	require.NoError(t, err)
	return u
}

func TestNewServiceRequiresStore(t *testing.T) {
	_, err := ingest.NewService(nil, nil)
	assert.Error(t, err)
}

func TestApply(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	res, err := f.ingest.Apply(ctx, f.subject.ID, "1-1:入門, 1-1:別名, 2-3, x-1", false)
	require.NoError(t, err)

	assert.Equal(t, "2024-01-20", res.DoneDate)
	assert.Equal(t, []string{"x-1"}, res.Invalid)
	require.Len(t, res.Entries, 2)
	assert.Equal(t, 2, res.Recorded())
	assert.Equal(t, 0, res.Skipped())
	for _, e := range res.Entries {
		assert.True(t, e.Created)
		assert.Equal(t, ingest.OutcomeRecorded, e.Outcome)
		assert.Equal(t, 1, e.ReviewNo)
	}

	assert.Equal(t, "入門", f.unitByCode(t, "1-1").Title)
	assert.Equal(t, "", f.unitByCode(t, "2-3").Title)

	assert.Equal(t, 2, f.events.count(events.UnitCreated))
	assert.Equal(t, 2, f.events.count(events.ReviewRecorded))
	assert.Equal(t, 1, f.events.count(events.UnitRetitled))
	assert.Equal(t, 1, f.events.count(events.EntriesApplied))
}

func TestApplySameDayIsSkipped(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.ingest.Apply(ctx, f.subject.ID, "1-1", false)
	require.NoError(t, err)

	res, err := f.ingest.Apply(ctx, f.subject.ID, "1-1, 1-2", false)
	require.NoError(t, err)
	require.Len(t, res.Entries, 2)
	assert.Equal(t, ingest.OutcomeSkipped, res.Entries[0].Outcome)
	assert.False(t, res.Entries[0].Created)
	assert.Equal(t, ingest.OutcomeRecorded, res.Entries[1].Outcome)

	reviews, err := f.ledger.ListReviewsByUnit(ctx, f.unitByCode(t, "1-1").ID)
	require.NoError(t, err)
	assert.Len(t, reviews, 1)
}

func TestApplyNumbersAfterExisting(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	unitID, err := f.ledger.GetOrCreateUnit(ctx, f.subject.ID, "3-1")
	require.NoError(t, err)
	_, err = f.ledger.InsertReview(ctx, unitID, 4, "2024-01-01")
	require.NoError(t, err)

	res, err := f.ingest.Apply(ctx, f.subject.ID, "3-1", false)
	require.NoError(t, err)
	require.Len(t, res.Entries, 1)
	assert.Equal(t, 5, res.Entries[0].ReviewNo)
	assert.Equal(t, unitID, res.Entries[0].UnitID)
}

func TestApplyTitlePolicy(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	unitID, err := f.ledger.GetOrCreateUnit(ctx, f.subject.ID, "1-1")
	require.NoError(t, err)
	require.NoError(t, f.ledger.UpdateUnitTitle(ctx, unitID, "旧"))

	res, err := f.ingest.Apply(ctx, f.subject.ID, "1-1:新", false)
	require.NoError(t, err)
	assert.False(t, res.Entries[0].Retitled)
	assert.Equal(t, "旧", f.unitByCode(t, "1-1").Title)

	// The review for today exists now, but the title still applies.
	res, err = f.ingest.Apply(ctx, f.subject.ID, "1-1:新", true)
	require.NoError(t, err)
	assert.True(t, res.Entries[0].Retitled)
	assert.Equal(t, ingest.OutcomeSkipped, res.Entries[0].Outcome)
	assert.Equal(t, "新", f.unitByCode(t, "1-1").Title)
}

func TestApplyErrors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.ingest.Apply(ctx, 0, "1-1", false)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.ingest.Apply(ctx, 999, "1-1", false)
	assert.ErrorIs(t, err, store.ErrNotFound)

	res, err := f.ingest.Apply(ctx, 999, "bad", false)
	require.NoError(t, err)
	assert.Empty(t, res.Entries)
	assert.Equal(t, []string{"bad"}, res.Invalid)
}

func intPtr(n int) *int { return &n }

func TestRecord(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	r, err := f.ingest.Record(ctx, ingest.RecordRequest{
		SubjectID: f.subject.ID,
		UnitCode:  " １-1 ",
		Title:     "入門",
		DoneDate:  "2024-01-05",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, r.ReviewNo)
	assert.Equal(t, "2024-01-05", r.DoneDate)
	assert.Equal(t, "入門", f.unitByCode(t, "1-1").Title)

	r, err = f.ingest.Record(ctx, ingest.RecordRequest{
		SubjectID: f.subject.ID,
		UnitCode:  "1-1",
		ReviewNo:  intPtr(3),
		DoneDate:  "2024-01-12",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, r.ReviewNo)

	r, err = f.ingest.Record(ctx, ingest.RecordRequest{
		SubjectID: f.subject.ID,
		UnitCode:  "1-1",
		DoneDate:  "2024-01-19",
	})
	require.NoError(t, err)
	assert.Equal(t, 4, r.ReviewNo)
}

func TestRecordConflicts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.ingest.Record(ctx, ingest.RecordRequest{
		SubjectID: f.subject.ID, UnitCode: "1-1", DoneDate: "2024-01-05",
	})
	require.NoError(t, err)

	_, err = f.ingest.Record(ctx, ingest.RecordRequest{
		SubjectID: f.subject.ID, UnitCode: "1-1", ReviewNo: intPtr(1), DoneDate: "2024-01-06",
	})
	assert.ErrorIs(t, err, store.ErrReviewNoExists)

	_, err = f.ingest.Record(ctx, ingest.RecordRequest{
		SubjectID: f.subject.ID, UnitCode: "1-1", DoneDate: "2024-01-05", Title: "x",
	})
	assert.ErrorIs(t, err, store.ErrReviewDateExists)
	// Title change rolled back with the failed insert.
	assert.Equal(t, "", f.unitByCode(t, "1-1").Title)
}

func TestRecordValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	tests := []struct {
		name string
		req  ingest.RecordRequest
		want error
	}{
		{"subject", ingest.RecordRequest{UnitCode: "1-1", DoneDate: "2024-01-01"}, domain.ErrIDInvalid},
		{"code", ingest.RecordRequest{SubjectID: f.subject.ID, UnitCode: "1", DoneDate: "2024-01-01"}, domain.ErrUnitCodeInvalid},
		{"number", ingest.RecordRequest{SubjectID: f.subject.ID, UnitCode: "1-1", ReviewNo: intPtr(0), DoneDate: "2024-01-01"}, domain.ErrReviewNoInvalid},
		{"date", ingest.RecordRequest{SubjectID: f.subject.ID, UnitCode: "1-1", DoneDate: "2024/01/01"}, domain.ErrDoneDateInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.ingest.Record(ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	units, err := f.store.Units().ListBySubject(ctx, f.subject.ID)
	require.NoError(t, err)
	assert.Empty(t, units)
}
