// Package events lets the ledger services announce committed changes
// without depending on the components that react to them.
//
// The primary components are:
// - LedgerEvent: a committed change, typed by one of the event constants
// - EventHandler: interface for components that handle events
// - EventEmitter: interface for components that publish events
package events
