// Package domain contains the study ledger entities (subjects, units and their
// reviews), their validation rules and the error values shared by the store
// and service layers. It has no dependency on storage or transport.
package domain
