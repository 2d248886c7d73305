package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

const runLogPattern = "avsub-*.log"

// PruneRunLogs deletes run logs in dir last modified more than retentionDays
// ago and returns the removed paths. current is never removed. A
// retentionDays value of 0 disables pruning.
func PruneRunLogs(logger *slog.Logger, dir, current string, retentionDays int) []string {
	if retentionDays <= 0 || dir == "" {
		return nil
	}
	if logger == nil {
		logger = NewNop()
	}
	matches, err := filepath.Glob(filepath.Join(dir, runLogPattern))
	if err != nil {
		return nil
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	keep := sameFile(current)

	var removed []string
	for _, path := range matches {
		if keep(path) {
			continue
		}
		info, err := os.Lstat(path)
		if err != nil || !info.Mode().IsRegular() || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(path); err != nil {
			WarnWithContext(logger, "old run log could not be removed", "log_retention_failed",
				String("path", path),
				Error(err),
				String(FieldErrorHint, "check permissions on paths.log_dir"),
				String(FieldImpact, "old log file remains on disk"),
			)
			continue
		}
		removed = append(removed, path)
	}
	if len(removed) > 0 {
		logger.Debug("old run logs pruned",
			String(FieldEventType, "log_pruned"),
			Int("count", len(removed)),
			Int("retention_days", retentionDays),
		)
	}
	return removed
}

func sameFile(current string) func(string) bool {
	if current == "" {
		return func(string) bool { return false }
	}
	want, err := filepath.Abs(current)
	if err != nil {
		want = current
	}
	return func(path string) bool {
		got, err := filepath.Abs(path)
		if err != nil {
			got = path
		}
		return got == want
	}
}
