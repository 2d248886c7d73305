package command

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"avsub/internal/fileutil"
)

// StagedSubtitleName is the fixed file name subtitles are copied to before
// being referenced from the filter graph.
const StagedSubtitleName = "avsub.tmp"

// StageSubtitle copies src to the fixed staging file inside tempDir (the OS
// temp directory when empty) and returns its absolute path. The original
// file name never reaches the filter string.
func StageSubtitle(src, tempDir string) (string, error) {
	if strings.TrimSpace(tempDir) == "" {
		tempDir = os.TempDir()
	}
	target, err := filepath.Abs(filepath.Join(tempDir, StagedSubtitleName))
	if err != nil {
		return "", fmt.Errorf("resolve subtitle staging path: %w", err)
	}
	if err := fileutil.CopyFileVerified(src, target); err != nil {
		return "", fmt.Errorf("stage subtitle %s: %w", src, err)
	}
	return target, nil
}

// EscapeFilterPath normalizes separators to forward slashes and escapes
// every colon for the filtergraph parser (two escaping levels).
func EscapeFilterPath(path string) string {
	path = strings.ReplaceAll(path, `\`, "/")
	return strings.ReplaceAll(path, ":", `\\:`)
}

// SubtitleFilter returns the video-filter argument pair that burns the
// subtitle at path using style.
func SubtitleFilter(path string, style Style) []string {
	return []string{"-vf", fmt.Sprintf("subtitles=%s:force_style='%s'", EscapeFilterPath(path), style.String())}
}

// WithSubtitle returns a copy of args with the subtitle burn filter appended.
func (a Args) WithSubtitle(path string, style Style) Args {
	out := make(Args, 0, len(a)+2)
	out = append(out, a...)
	return append(out, SubtitleFilter(path, style)...)
}
