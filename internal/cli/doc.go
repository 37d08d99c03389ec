// Package cli implements studyctl, a command-line client that works on the
// ledger store directly. Commands share the services used by the HTTP server.
package cli
