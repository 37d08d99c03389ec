// Package boltstore implements the ledger store on an embedded bbolt file.
//
// Each entity lives in its own bucket keyed by a big-endian id, with JSON
// values. Unique constraints are kept as index buckets whose keys are the
// constrained columns and whose values are the owning id; the same index
// buckets answer the reference checks a relational foreign key would.
package boltstore
