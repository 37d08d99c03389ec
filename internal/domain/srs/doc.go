// Package srs computes review schedules for study units. Everything here is a
// pure function of a unit's review history and the current calendar day; no
// derived state is ever persisted.
package srs
