package snapshot_test

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/371050/study-pwa/internal/domain"
	"github.com/371050/study-pwa/internal/platform/boltstore"
	"github.com/371050/study-pwa/internal/platform/logger"
	"github.com/371050/study-pwa/internal/platform/sqlstore"
	"github.com/371050/study-pwa/internal/service"
	"github.com/371050/study-pwa/internal/service/snapshot"
	"github.com/371050/study-pwa/internal/store"
)

var fixedNow = time.Date(2024, 1, 20, 9, 0, 0, 0, time.UTC)

type backend struct {
	name string
	open func(t *testing.T) store.Store
}

var backends = []backend{
	{"sqlite", func(t *testing.T) store.Store {
		log, _ := logger.NewTestLogger(t)
		s, err := sqlstore.Open(context.Background(), sqlstore.DialectSQLite, filepath.Join(t.TempDir(), "study.db"), log)
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		return s
	}},
	{"bolt", func(t *testing.T) store.Store {
		log, _ := logger.NewTestLogger(t)
		s, err := boltstore.Open(filepath.Join(t.TempDir(), "study.bolt"), log)
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		return s
	}},
}

func newService(t *testing.T, st store.Store) *snapshot.Service {
	t.Helper()
	log, _ := logger.NewTestLogger(t)
	svc, err := snapshot.NewService(st, log,
		service.WithClock(func() time.Time { return fixedNow }),
		service.WithLocation(time.UTC))
	require.NoError(t, err)
	return svc
}

// populate writes a small ledger with a gap in the subject ids.
func populate(t *testing.T, st store.Store) {
	t.Helper()
	ctx := context.Background()
	created := time.Date(2024, 1, 2, 3, 4, 5, 678_000_000, time.UTC)

	require.NoError(t, st.RunInTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		for _, s := range []domain.Subject{
			{ID: 1, Name: "消費税法", SortOrder: 1, CreatedAt: created},
			{ID: 3, Name: "所得税法", SortOrder: 0, CreatedAt: created},
		} {
			s := s
			if err := tx.Subjects().Put(ctx, &s); err != nil {
				return err
			}
		}
		for _, u := range []domain.Unit{
			{ID: 1, SubjectID: 1, UnitCode: "1-1", Title: "入門", CreatedAt: created},
			{ID: 2, SubjectID: 3, UnitCode: "2-10", CreatedAt: created},
		} {
			u := u
			if err := tx.Units().Put(ctx, &u); err != nil {
				return err
			}
		}
		for _, r := range []domain.Review{
			{ID: 1, UnitID: 1, ReviewNo: 1, DoneDate: "2024-01-01", CreatedAt: created},
			{ID: 2, UnitID: 1, ReviewNo: 2, DoneDate: "2024-01-02", CreatedAt: created},
			{ID: 5, UnitID: 2, ReviewNo: 1, DoneDate: "2024-01-03", CreatedAt: created},
		} {
			r := r
			if err := tx.Reviews().Put(ctx, &r); err != nil {
				return err
			}
		}
		return tx.ResetSequences(ctx)
	}))
}

// records returns the three arrays of an export, without exportedAt.
func records(t *testing.T, snap *snapshot.Snapshot) string {
	t.Helper()
	b, err := json.Marshal(map[string]any{
		"subjects": snap.Subjects,
		"units":    snap.Units,
		"reviews":  snap.Reviews,
	})
	require.NoError(t, err)
	return string(b)
}

func encode(t *testing.T, snap *snapshot.Snapshot) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, snap.Encode(&buf))
	return buf.Bytes()
}

func TestExport(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			st := b.open(t)
			populate(t, st)
			svc := newService(t, st)

			snap, err := svc.Export(context.Background())
			require.NoError(t, err)
			assert.Equal(t, 1, snap.SchemaVersion)
			require.Len(t, snap.Subjects, 2)
			assert.Equal(t, []int64{1, 3}, []int64{snap.Subjects[0].ID, snap.Subjects[1].ID})
			require.Len(t, snap.Reviews, 3)
			assert.Equal(t, int64(5), snap.Reviews[2].ID)

			var doc map[string]any
			require.NoError(t, json.Unmarshal(encode(t, snap), &doc))
			assert.Equal(t, "2024-01-20T09:00:00.000Z", doc["exportedAt"])
			first := doc["subjects"].([]any)[0].(map[string]any)
			assert.Equal(t, "2024-01-02T03:04:05.678Z", first["createdAt"])
			assert.Equal(t, "消費税法", first["name"])
		})
	}
}

func TestExportEmpty(t *testing.T) {
	svc := newService(t, backends[0].open(t))
	snap, err := svc.Export(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `{"subjects":[],"units":[],"reviews":[]}`, records(t, snap))
}

func TestImportExportRoundTrip(t *testing.T) {
	ctx := context.Background()
	source := backends[0].open(t)
	populate(t, source)
	exported, err := newService(t, source).Export(ctx)
	require.NoError(t, err)
	raw := encode(t, exported)

	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			st := b.open(t)
			svc := newService(t, st)
			_, err := svc.SeedDefaultSubjects(ctx)
			require.NoError(t, err)

			require.NoError(t, svc.ImportOverwrite(ctx, raw))

			again, err := svc.Export(ctx)
			require.NoError(t, err)
			assert.Equal(t, records(t, exported), records(t, again))

			// Ids continue above the imported maximum.
			s, err := domain.NewSubject("法人税法", 9, fixedNow)
			require.NoError(t, err)
			require.NoError(t, st.Subjects().Insert(ctx, s))
			assert.Greater(t, s.ID, int64(3))
		})
	}
}

func TestImportRejectsMalformed(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		raw  string
	}{
		{"not json", `{"subjects":`},
		{"missing array", `{"schemaVersion":1,"subjects":[],"units":[]}`},
		{"wrong shape", `{"subjects":{},"units":[],"reviews":[]}`},
		{"bad unit code", `{"subjects":[{"id":1,"name":"a"}],"units":[{"id":1,"subjectId":1,"unitCode":"x"}],"reviews":[]}`},
		{"bad date", `{"subjects":[],"units":[],"reviews":[{"id":1,"unitId":1,"reviewNo":1,"doneDate":"2024-13-40"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := backends[0].open(t)
			populate(t, st)
			svc := newService(t, st)

			err := svc.ImportOverwrite(ctx, []byte(tt.raw))
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrFormat)

			var fe *domain.FormatError
			require.ErrorAs(t, err, &fe)
			assert.NotEmpty(t, fe.Problems)

			subjects, err := st.Subjects().GetAll(ctx)
			require.NoError(t, err)
			assert.Len(t, subjects, 2)
		})
	}
}

func TestImportInconsistentSnapshotLeavesLedger(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		raw  string
		want error
	}{
		{
			name: "duplicate subject name",
			raw:  `{"subjects":[{"id":1,"name":"a"},{"id":2,"name":"a"}],"units":[],"reviews":[]}`,
			want: store.ErrDuplicate,
		},
		{
			name: "dangling unit",
			raw:  `{"subjects":[{"id":1,"name":"a"}],"units":[{"id":1,"subjectId":7,"unitCode":"1-1"}],"reviews":[]}`,
			want: store.ErrInvalidReference,
		},
	}

	for _, b := range backends {
		for _, tt := range tests {
			t.Run(b.name+"/"+tt.name, func(t *testing.T) {
				st := b.open(t)
				populate(t, st)
				svc := newService(t, st)
				before, err := svc.Export(ctx)
				require.NoError(t, err)

				err = svc.ImportOverwrite(ctx, []byte(tt.raw))
				assert.ErrorIs(t, err, tt.want)

				after, err := svc.Export(ctx)
				require.NoError(t, err)
				assert.Equal(t, records(t, before), records(t, after))
			})
		}
	}
}

func TestImportDefaultsCreatedAt(t *testing.T) {
	ctx := context.Background()
	st := backends[0].open(t)
	svc := newService(t, st)

	require.NoError(t, svc.ImportOverwrite(ctx, []byte(`{"subjects":[{"id":4,"name":"a"}],"units":[],"reviews":[]}`)))
	s, err := st.Subjects().Get(ctx, 4)
	require.NoError(t, err)
	assert.True(t, s.CreatedAt.Equal(fixedNow))
	assert.Equal(t, 0, s.SortOrder)
}

func TestImportNormalizesTimestamps(t *testing.T) {
	ctx := context.Background()
	st := backends[0].open(t)
	svc := newService(t, st)

	raw := `{"subjects":[{"id":1,"name":"a","sortOrder":0,"createdAt":"2024-01-02T09:00:00.123456+09:00"}],` +
		`"units":[],"reviews":[]}`
	require.NoError(t, svc.ImportOverwrite(ctx, []byte(raw)))

	snap, err := svc.Export(ctx)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"subjects":[{"id":1,"name":"a","sortOrder":0,"createdAt":"2024-01-02T00:00:00.123Z"}],"units":[],"reviews":[]}`,
		records(t, snap))

	// A normalized document is stable under a second import.
	require.NoError(t, svc.ImportOverwrite(ctx, encode(t, snap)))
	again, err := svc.Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, records(t, snap), records(t, again))
}

func TestSeedClearWipe(t *testing.T) {
	ctx := context.Background()
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			st := b.open(t)
			svc := newService(t, st)

			n, err := svc.SeedDefaultSubjects(ctx)
			require.NoError(t, err)
			assert.Equal(t, 5, n)

			n, err = svc.SeedDefaultSubjects(ctx)
			require.NoError(t, err)
			assert.Zero(t, n)

			subjects, err := st.Subjects().GetAll(ctx)
			require.NoError(t, err)
			require.Len(t, subjects, 5)
			for i, s := range subjects {
				assert.Equal(t, domain.DefaultSubjects[i], s.Name)
				assert.Equal(t, i, s.SortOrder)
			}

			require.NoError(t, svc.ClearAll(ctx))
			populate(t, st)
			require.NoError(t, svc.ClearAll(ctx))
			snap, err := svc.Export(ctx)
			require.NoError(t, err)
			assert.Empty(t, snap.Subjects)
			assert.Empty(t, snap.Units)
			assert.Empty(t, snap.Reviews)

			populate(t, st)
			require.NoError(t, svc.Wipe(ctx))
			subjects, err = st.Subjects().GetAll(ctx)
			require.NoError(t, err)
			assert.Len(t, subjects, 5)
			units, err := st.Units().GetAll(ctx)
			require.NoError(t, err)
			assert.Empty(t, units)
		})
	}
}

func TestExportFileName(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	log, _ := logger.NewTestLogger(t)
	svc, err := snapshot.NewService(backends[0].open(t), log,
		service.WithClock(func() time.Time { return time.Date(2024, 3, 31, 16, 0, 0, 0, time.UTC) }),
		service.WithLocation(tokyo))
	require.NoError(t, err)
	assert.Equal(t, "study-sync-2024-04-01.json", svc.ExportFileName())
}
