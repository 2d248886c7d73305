// Package logging assembles the structured slog loggers used across avsub.
//
// It owns the console and JSON handlers, the per-run JSON log file tee, and
// context-aware helpers that stamp run identifiers onto every record. A no-op
// logger is provided for tests and wiring code that cannot fail. Old run logs
// are pruned by PruneRunLogs.
package logging
