// Package services defines shared utilities consumed by the batch runner and
// the CLI.
//
// Key responsibilities:
//   - Context helpers that stamp run identifiers and stage names for logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     (configuration vs external tool vs transient) and map them to exit codes.
//
// Use these helpers when wiring new components so error handling and
// observability stay uniform across the tool.
package services
