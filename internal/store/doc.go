// Package store defines the persistence contract for the study ledger.
// Backends (SQL databases, bbolt) implement these interfaces; services only
// ever see the interfaces, so the scheduling and ledger rules stay
// independent of the storage engine.
package store
