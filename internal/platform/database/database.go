// Package database opens the ledger store selected by configuration.
package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/371050/study-pwa/internal/config"
	"github.com/371050/study-pwa/internal/platform/boltstore"
	"github.com/371050/study-pwa/internal/platform/sqlstore"
	"github.com/371050/study-pwa/internal/store"
)

// Supported values of config.DatabaseConfig.Driver.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverBolt     = "bolt"
)

// Open returns a ready, migrated store for cfg.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (store.Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Driver {
	case DriverSQLite:
		return sqlstore.Open(ctx, sqlstore.DialectSQLite, cfg.URL, logger)
	case DriverPostgres:
		return sqlstore.Open(ctx, sqlstore.DialectPostgres, cfg.URL, logger)
	case DriverBolt:
		return boltstore.Open(cfg.URL, logger)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Migrate runs a goose migration command against a SQL backend. The bolt
// backend has no schema, so every command is a no-op there.
func Migrate(ctx context.Context, cfg config.DatabaseConfig, command string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	var dialect sqlstore.Dialect
	switch cfg.Driver {
	case DriverSQLite:
		dialect = sqlstore.DialectSQLite
	case DriverPostgres:
		dialect = sqlstore.DialectPostgres
	case DriverBolt:
		logger.Info("bolt store has no migrations", slog.String("command", command))
		return nil
	default:
		return fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	s, err := sqlstore.Open(ctx, dialect, cfg.URL, logger)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	return sqlstore.Migrate(ctx, s.DB(), dialect, command, logger)
}
