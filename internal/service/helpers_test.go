package service_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/371050/study-pwa/internal/domain"
	"github.com/371050/study-pwa/internal/events"
	"github.com/371050/study-pwa/internal/platform/logger"
	"github.com/371050/study-pwa/internal/platform/sqlstore"
	"github.com/371050/study-pwa/internal/service"
	"github.com/371050/study-pwa/internal/store"
)

// fixedNow is 09:00 on 2024-01-20 in UTC.
var fixedNow = time.Date(2024, 1, 20, 9, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	log, _ := logger.NewTestLogger(t)
	s, err := sqlstore.Open(context.Background(), sqlstore.DialectSQLite, filepath.Join(t.TempDir(), "study.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// recorder collects the types of emitted events.
type recorder struct {
	mu    sync.Mutex
	types []string
}

func (r *recorder) EmitEvent(_ context.Context, e *events.LedgerEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types = append(r.types, e.Type)
	return nil
}

func (r *recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.types...)
}

type fixture struct {
	store    store.Store
	subjects service.SubjectService
	ledger   service.LedgerService
	schedule service.ScheduleService
	events   *recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := newTestStore(t)
	rec := &recorder{}
	log, _ := logger.NewTestLogger(t)
	opts := []service.Option{
		service.WithClock(func() time.Time { return fixedNow }),
		service.WithLocation(time.UTC),
		service.WithEmitter(rec),
	}

	subjects, err := service.NewSubjectService(st, log, opts...)
	require.NoError(t, err)
	ledger, err := service.NewLedgerService(st, log, opts...)
	require.NoError(t, err)
	schedule, err := service.NewScheduleService(st, log, opts...)
	require.NoError(t, err)

	return &fixture{store: st, subjects: subjects, ledger: ledger, schedule: schedule, events: rec}
}

func (f *fixture) addSubject(t *testing.T, name string) *domain.Subject {
	t.Helper()
	s, err := f.subjects.AddSubject(context.Background(), name)
	require.NoError(t, err)
	return s
}

func (f *fixture) unit(t *testing.T, subjectID int64, code string) int64 {
	t.Helper()
	id, err := f.ledger.GetOrCreateUnit(context.Background(), subjectID, code)
	require.NoError(t, err)
	return id
}

func (f *fixture) review(t *testing.T, unitID int64, no int, date string) *domain.Review {
	t.Helper()
	r, err := f.ledger.InsertReview(context.Background(), unitID, no, date)
	require.NoError(t, err)
	return r
}
