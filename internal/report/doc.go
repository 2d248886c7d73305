// Package report renders human-facing output: the end-of-run summary, the
// run history tables, and status lines. Colour is applied only when the
// destination is a terminal.
package report
