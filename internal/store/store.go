package store

import (
	"context"
)

// Tx gives access to the entity stores. Outside RunInTransaction each call is
// its own transaction; inside, all calls share one.
type Tx interface {
	Subjects() SubjectStore
	Units() UnitStore
	Reviews() ReviewStore

	// ResetSequences moves id generation past the highest stored id of every
	// entity, after records were written with explicit ids.
	ResetSequences(ctx context.Context) error
}

// TxFunc is the unit of work passed to Store.RunInTransaction.
type TxFunc func(ctx context.Context, tx Tx) error

// Store is a complete ledger backend.
type Store interface {
	Tx

	// RunInTransaction executes fn atomically. The transaction commits when fn
	// returns nil and rolls back when it returns an error or panics; on
	// rollback no write made through tx is visible afterwards.
	RunInTransaction(ctx context.Context, fn TxFunc) error

	// Close releases the backend's resources.
	Close() error
}
