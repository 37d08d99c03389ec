// Package api provides the HTTP handlers of the study ledger API. Handlers
// decode and validate requests, call the services and map service errors to
// status codes and safe messages; routes are wired in cmd/server.
package api
