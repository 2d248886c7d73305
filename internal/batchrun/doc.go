// Package batchrun wires a single `avsub` invocation together.
//
// It owns the process-level concerns around the batch executor: run IDs and
// per-run logs, the output-folder lock, preflight checks, subtitle staging,
// signal handling, failed-output cleanup, the summary, run history, and the
// optional shutdown.
package batchrun
