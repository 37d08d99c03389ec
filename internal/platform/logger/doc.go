// Package logger provides structured logging for the study ledger.
//
// It configures log/slog with a JSON handler at the configured level, and
// carries request-scoped loggers through context.Context so that trace ids
// attached by the HTTP middleware follow a request into the services.
package logger
