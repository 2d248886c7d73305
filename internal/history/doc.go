// Package history records every batch run in a small SQLite database under
// the state directory.
//
// A run row is inserted before the first file is processed and completed with
// the outcome and per-file states when the batch returns, so a crashed run
// shows up with no outcome. `avsub history` reads it back.
package history
