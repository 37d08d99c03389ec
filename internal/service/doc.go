// Package service contains the study ledger use cases. It orchestrates the
// domain entities and the store interfaces (internal/store) to fulfil the
// subject, unit, review and schedule operations.
//
// Every multi-step mutation runs inside one store transaction. After a
// mutation commits, the services publish an events.LedgerEvent when an
// emitter is configured.
//
// The exported Tx helpers (GetOrCreateUnitTx, NextReviewNo, ApplyTitle)
// let sibling packages such as ingest compose the same steps inside their
// own transactions.
package service
