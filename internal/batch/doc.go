// Package batch drives the transcoder once per input file and records the
// outcome of every file.
//
// A Context owns the two pieces of run state: the Tracker, which partitions
// files into pending, succeeded, and failed, and the Controller, a set-once
// stop flag raised from signal handlers. The Executor is the only writer of
// the Tracker. It processes files strictly in order, checks the Controller
// before each file, skips files whose destination already exists, isolates
// non-zero exits to the file that produced them, and aborts the whole batch
// when the transcoder cannot be started at all.
package batch
