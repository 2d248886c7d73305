// Package command compiles a validated OptionSet into the argument vector
// handed to ffmpeg for every file of a batch, plus the force_style
// descriptor used when subtitles are burned in.
//
// Build is pure and deterministic: the same OptionSet always yields the same
// tokens in the same order. Token order matters to ffmpeg (later flags win),
// so the emission order is fixed and covered by tests. The vector never
// contains the per-file destination or source; WithFiles appends those to a
// copy at execution time.
package command
