package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	// Registers the "pgx" database/sql driver.
	_ "github.com/jackc/pgx/v5/stdlib"
	// Registers the "sqlite3" database/sql driver.
	_ "github.com/mattn/go-sqlite3"

	"github.com/371050/study-pwa/internal/domain"
	"github.com/371050/study-pwa/internal/store"
)

// Dialect identifies the SQL engine behind a Store.
type Dialect string

const (
	// DialectSQLite uses github.com/mattn/go-sqlite3.
	DialectSQLite Dialect = "sqlite"
	// DialectPostgres uses the pgx database/sql driver.
	DialectPostgres Dialect = "postgres"
)

// driverName returns the database/sql driver registered for d.
func (d Dialect) driverName() (string, error) {
	switch d {
	case DialectSQLite:
		return "sqlite3", nil
	case DialectPostgres:
		return "pgx", nil
	default:
		return "", fmt.Errorf("unsupported sql dialect %q", d)
	}
}

// sqlitePragmas are appended to SQLite file DSNs. Foreign keys must be
// switched on per connection, and immediate transactions take the write lock
// up front so a lookup-then-insert cannot interleave with another writer.
const sqlitePragmas = "_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL&_txlock=immediate"

// Store implements store.Store on a *sql.DB.
type Store struct {
	db      *sql.DB
	dialect Dialect
	logger  *slog.Logger
	tables
}

// tables bundles the three entity stores bound to one DBTX.
type tables struct {
	subjects *SubjectStore
	units    *UnitStore
	reviews  *ReviewStore
	q        querier
}

var _ store.Store = (*Store)(nil)

// Open connects to the database, applies pending migrations and returns a
// ready Store. For SQLite, dsn is a file path; for PostgreSQL it is a
// connection URL.
func Open(ctx context.Context, dialect Dialect, dsn string, logger *slog.Logger) (*Store, error) {
	driver, err := dialect.driverName()
	if err != nil {
		return nil, err
	}

	if dialect == DialectSQLite {
		dsn = sqliteDSN(dsn)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", dialect, err)
	}

	if dialect == DialectSQLite {
		// A single connection serialises writers and keeps :memory: databases alive.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w", dialect, err)
	}

	if err := Migrate(ctx, db, dialect, "up", logger); err != nil {
		_ = db.Close()
		return nil, err
	}

	return New(db, dialect, logger), nil
}

func sqliteDSN(path string) string {
	if strings.Contains(path, "?") {
		return path
	}
	if path == ":memory:" {
		return "file::memory:?" + sqlitePragmas
	}
	return "file:" + path + "?" + sqlitePragmas
}

// New wraps an open, migrated database.
func New(db *sql.DB, dialect Dialect, logger *slog.Logger) *Store {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "sql_store"), slog.String("dialect", string(dialect)))

	return &Store{
		db:      db,
		dialect: dialect,
		logger:  logger,
		tables:  newTables(querier{db: db, dialect: dialect}, logger),
	}
}

func newTables(q querier, logger *slog.Logger) tables {
	return tables{
		subjects: &SubjectStore{q: q, logger: logger.With(slog.String("entity", "subject"))},
		units:    &UnitStore{q: q, logger: logger.With(slog.String("entity", "unit"))},
		reviews:  &ReviewStore{q: q, logger: logger.With(slog.String("entity", "review"))},
		q:        q,
	}
}

// Subjects implements store.Tx.
func (t tables) Subjects() store.SubjectStore { return t.subjects }

// Units implements store.Tx.
func (t tables) Units() store.UnitStore { return t.units }

// Reviews implements store.Tx.
func (t tables) Reviews() store.ReviewStore { return t.reviews }

// ResetSequences implements store.Tx. SQLite AUTOINCREMENT already tracks the
// highest id ever written; PostgreSQL identity sequences must be moved.
func (t tables) ResetSequences(ctx context.Context) error {
	if t.q.dialect != DialectPostgres {
		return nil
	}
	for _, table := range []string{"subjects", "units", "reviews"} {
		query := fmt.Sprintf(
			"SELECT setval(pg_get_serial_sequence('%[1]s', 'id'), COALESCE(MAX(id), 0) + 1, false) FROM %[1]s",
			table,
		)
		if _, err := t.q.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to reset %s id sequence: %w", table, MapError(err))
		}
	}
	return nil
}

// RunInTransaction implements store.Store.
func (s *Store) RunInTransaction(ctx context.Context, fn store.TxFunc) error {
	return store.RunSQLTransaction(ctx, s.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, newTables(querier{db: tx, dialect: s.dialect}, s.logger))
	})
}

// DB returns the underlying database handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Dialect returns the SQL engine in use.
func (s *Store) Dialect() Dialect {
	return s.dialect
}

// Close implements store.Store.
func (s *Store) Close() error {
	return s.db.Close()
}

// querier runs rebound queries against a DBTX.
type querier struct {
	db      store.DBTX
	dialect Dialect
}

func (q querier) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return q.db.ExecContext(ctx, q.rebind(query), args...)
}

func (q querier) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return q.db.QueryContext(ctx, q.rebind(query), args...)
}

func (q querier) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return q.db.QueryRowContext(ctx, q.rebind(query), args...)
}

// rebind rewrites ? placeholders as $1, $2, ... for PostgreSQL. Queries in
// this package never contain a literal question mark.
func (q querier) rebind(query string) string {
	if q.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// timestamp normalises a scanned time the same way the domain stores it.
func timestamp(t time.Time) time.Time {
	return domain.Timestamp(t)
}
