// Package main hosts the avsub CLI entrypoint and command graph.
//
// The root command is the transcoder itself: it turns flags into an
// options.OptionSet, hands the batch to batchrun.Run, and maps the returned
// error to an exit status. Subcommands cover configuration scaffolding,
// environment status, and run history.
package main
