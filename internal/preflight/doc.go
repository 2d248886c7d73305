// Package preflight provides readiness checks for the ffmpeg binary and the
// filesystem paths avsub writes to.
//
// A run calls RunAll before planning destinations and refuses to start when a
// check fails. The `avsub status` command renders the same results.
package preflight
