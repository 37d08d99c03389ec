// Package snapshot exports the whole ledger as one JSON document and
// replaces it from one. It also owns the ledger-wide resets: clearing every
// record and seeding the default subjects.
package snapshot
