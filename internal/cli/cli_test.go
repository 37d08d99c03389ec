package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/371050/study-pwa/internal/config"
	"github.com/371050/study-pwa/internal/domain"
	"github.com/371050/study-pwa/internal/platform/sqlstore"
	"github.com/371050/study-pwa/internal/service"
	"github.com/371050/study-pwa/internal/service/auth"
)

var fixedNow = time.Date(2024, 4, 10, 9, 0, 0, 0, time.UTC)

type harness struct {
	t   *testing.T
	cfg *config.Config
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg := config.Default()
	cfg.Server.LogLevel = "error"
	cfg.Database.URL = filepath.Join(t.TempDir(), "study.db")
	return &harness{t: t, cfg: cfg}
}

func (h *harness) options() *RootOptions {
	return &RootOptions{
		LoadConfig: func() (*config.Config, error) { return h.cfg, nil },
		Connect: func(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Env, error) {
			st, err := sqlstore.Open(ctx, sqlstore.DialectSQLite, cfg.Database.URL, log)
			if err != nil {
				return nil, err
			}
			return NewEnv(cfg, st, log,
				service.WithClock(func() time.Time { return fixedNow }),
				service.WithLocation(time.UTC))
		},
	}
}

// run executes studyctl with args and returns stdout, stderr and the error.
func (h *harness) run(stdin string, args ...string) (string, string, error) {
	h.t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand(h.options())
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, errOut, err := h.run("", args...)
	require.NoError(h.t, err, errOut)
	return out
}

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestSubjectsCommands(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, "seeded 5 subjects\n", h.mustRun("seed"))
	assert.Equal(t, "seeded 0 subjects\n", h.mustRun("seed"))

	newGoldie(t).Assert(t, "subjects_list", []byte(h.mustRun("subjects", "list")))

	var subjects []domain.Subject
	require.NoError(t, json.Unmarshal([]byte(h.mustRun("--format", "json", "subjects", "list")), &subjects))
	require.Len(t, subjects, 5)

	out := h.mustRun("subjects", "move", "2", "up")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 6)
	assert.Contains(t, lines[1], "所得税法")

	out = h.mustRun("subjects", "add", "相続税法")
	assert.Contains(t, out, "相続税法")

	_, _, err := h.run("", "subjects", "add", "相続税法")
	require.Error(t, err)
	assert.Equal(t, ExitConflict, GetExitCode(err))

	_, _, err = h.run("", "subjects", "move", "2", "sideways")
	assert.Equal(t, ExitUsage, GetExitCode(err))
}

func TestIngestAndSchedule(t *testing.T) {
	h := newHarness(t)
	h.mustRun("seed")
	g := newGoldie(t)

	g.Assert(t, "ingest", []byte(h.mustRun("ingest", "1", "1-1:入門,", "2-3,", "x")))
	g.Assert(t, "units_list", []byte(h.mustRun("units", "list", "1")))
	g.Assert(t, "upcoming", []byte(h.mustRun("upcoming")))
	g.Assert(t, "reviews_next_yaml", []byte(h.mustRun("--format", "yaml", "reviews", "next", "1")))

	assert.Equal(t, "today: 2024-04-10\nSUBJECT  UNIT  TITLE  LAST  NEXT DUE  OVERDUE\n", h.mustRun("due"))

	// Entries can also come from standard input; the same day is skipped.
	out, errOut, err := h.run("1-1\n", "ingest", "1")
	require.NoError(t, err, errOut)
	assert.Contains(t, out, "recorded 0, skipped 1, invalid 0")
}

func TestReviewCommands(t *testing.T) {
	h := newHarness(t)
	h.mustRun("seed")
	assert.Equal(t, "1\n", h.mustRun("units", "get-or-create", "1", "1-1"))
	assert.Equal(t, "1\n", h.mustRun("units", "get-or-create", "1", "1-1"))

	h.mustRun("reviews", "add", "1", "1", "2024-04-01")
	h.mustRun("reviews", "add", "1", "3", "2024-04-03")

	_, _, err := h.run("", "reviews", "add", "1", "1", "2024-04-05")
	assert.Equal(t, ExitConflict, GetExitCode(err))
	_, _, err = h.run("", "reviews", "add", "1", "0", "2024-04-05")
	assert.Equal(t, ExitUsage, GetExitCode(err))
	_, _, err = h.run("", "reviews", "add", "1", "4", "2024/04/05")
	assert.Equal(t, ExitUsage, GetExitCode(err))

	out := h.mustRun("reviews", "renumber", "1")
	assert.Equal(t, "ID  NO  DATE\n1   1   2024-04-01\n2   2   2024-04-03\n", out)

	h.mustRun("reviews", "update", "2", "1", "2", "2024-04-04")
	h.mustRun("reviews", "delete", "1")
	assert.Equal(t, "ID  NO  DATE\n2   2   2024-04-04\n", h.mustRun("reviews", "list", "1"))

	h.mustRun("units", "title", "1", "基礎")
	out = h.mustRun("units", "status", "1")
	assert.Contains(t, out, "基礎")
	assert.Contains(t, out, "2024-04-11")

	h.mustRun("units", "delete", "1")
	_, _, err = h.run("", "units", "status", "1")
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestRecordCommand(t *testing.T) {
	h := newHarness(t)
	h.mustRun("seed")

	out := h.mustRun("record", "1", "3-1", "--title", "基礎", "--date", "2024-04-01")
	assert.Equal(t, "ID  NO  DATE\n1   1   2024-04-01\n", out)

	out = h.mustRun("record", "1", "3-1", "--no", "5")
	assert.Equal(t, "ID  NO  DATE\n2   5   2024-04-10\n", out)

	_, _, err := h.run("", "record", "1", "3-1", "--date", "2024-04-01")
	assert.Equal(t, ExitConflict, GetExitCode(err))
	_, _, err = h.run("", "record", "1", "3-1", "--no", "0")
	assert.Equal(t, ExitUsage, GetExitCode(err))
}

func TestSnapshotCommands(t *testing.T) {
	h := newHarness(t)
	h.mustRun("seed")
	h.mustRun("ingest", "1", "1-1:入門")

	dir := t.TempDir()
	_, errOut, err := h.run("", "export", "--out", dir)
	require.NoError(t, err)
	path := filepath.Join(dir, "study-sync-2024-04-10.json")
	assert.Contains(t, errOut, "exported 5 subjects, 1 units, 1 reviews")
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, h.mustRun("export"), string(raw))

	h.mustRun("clear")
	assert.Equal(t, "ID  ORDER  NAME\n", h.mustRun("subjects", "list"))

	h.mustRun("import", path)
	newGoldie(t).Assert(t, "subjects_list", []byte(h.mustRun("subjects", "list")))

	_, _, err = h.run(`{"subjects": []}`, "import", "-")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid snapshot format")
	assert.Contains(t, h.mustRun("units", "list", "1"), "入門")

	h.mustRun("clear", "--reseed")
	assert.Equal(t, "today: 2024-04-10\nSUBJECT  UNIT  TITLE  LAST  NEXT DUE\n", h.mustRun("upcoming"))
	assert.Len(t, strings.Split(strings.TrimSpace(h.mustRun("subjects", "list")), "\n"), 6)
}

func TestMigrateAndTokenCommands(t *testing.T) {
	h := newHarness(t)
	h.mustRun("migrate", "up")

	_, _, err := h.run("", "migrate", "sideways")
	assert.Equal(t, ExitUsage, GetExitCode(err))

	_, _, err = h.run("", "token", "laptop")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	h.cfg.Auth.JWTSecret = "0123456789abcdef0123456789abcdef"
	token := strings.TrimSpace(h.mustRun("token", "laptop"))
	svc, err := auth.NewJWTService(h.cfg.Auth)
	require.NoError(t, err)
	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "laptop", claims.Subject)
}

func TestUsageErrors(t *testing.T) {
	h := newHarness(t)
	tests := []struct {
		name string
		args []string
	}{
		{"bad format", []string{"--format", "xml", "subjects", "list"}},
		{"unknown flag", []string{"subjects", "list", "--bogus"}},
		{"missing argument", []string{"units", "list"}},
		{"bad id", []string{"units", "list", "abc"}},
		{"ingest without subject", []string{"ingest"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := h.run("", tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitUsage, GetExitCode(err))
		})
	}
}
