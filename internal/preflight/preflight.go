package preflight

import (
	"strings"

	"avsub/internal/config"
	"avsub/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll checks the transcoder and every directory a run writes to. An empty
// outputDir skips the output folder check.
func RunAll(cfg *config.Config, outputDir string) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	results = append(results, CheckTranscoder(cfg.FFmpeg.Binary))
	if strings.TrimSpace(outputDir) != "" {
		results = append(results, CheckDirectoryAccess("Output directory", outputDir))
	}
	results = append(results,
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckDirectoryAccess("Temp directory", cfg.Paths.TempDir),
	)
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}

// CheckTranscoder reports whether the configured ffmpeg binary resolves.
func CheckTranscoder(binary string) Result {
	status := deps.CheckBinaries([]deps.Requirement{deps.Transcoder(binary)})[0]
	if !status.Available {
		return Result{Name: status.Name, Detail: status.Detail}
	}
	return Result{Name: status.Name, Passed: true, Detail: status.Path}
}
