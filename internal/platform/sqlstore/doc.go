// Package sqlstore implements the ledger store on database/sql, for SQLite
// (github.com/mattn/go-sqlite3) and PostgreSQL (pgx stdlib driver).
//
// Queries are written once with ? placeholders and rebound for PostgreSQL.
// The schema is managed by goose migrations embedded per dialect. Unique and
// foreign key violations reported by either engine are mapped onto the
// sentinel errors of package store.
package sqlstore
