package batch

import (
	"fmt"
	"path/filepath"
	"strings"
)

// KeepExtension requests that every output keeps its source extension.
const KeepExtension = "-"

// SplitExt splits a file name at its last dot. Dot-files are treated as pure
// extensions (".bashrc" has an empty stem).
func SplitExt(name string) (stem, ext string) {
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return name, ""
	}
	return name[:idx], name[idx:]
}

// NormalizeExtension returns ext with exactly one leading dot. KeepExtension
// and the empty string pass through unchanged.
func NormalizeExtension(ext string) string {
	ext = strings.TrimSpace(ext)
	if ext == KeepExtension || ext == "" {
		return ext
	}
	return "." + strings.TrimLeft(ext, ".")
}

// Destination computes <outputDir>/<stem><ext> as an absolute path.
func Destination(source, outputDir, extension string) (string, error) {
	stem, ext := SplitExt(filepath.Base(source))
	if extension = NormalizeExtension(extension); extension != KeepExtension {
		ext = extension
	}
	dest, err := filepath.Abs(filepath.Join(outputDir, stem+ext))
	if err != nil {
		return "", fmt.Errorf("resolve destination for %s: %w", source, err)
	}
	return dest, nil
}

// PlanDestinations computes one job per distinct source, preserving the
// order of first appearance.
func PlanDestinations(files []string, outputDir, extension string) ([]Job, error) {
	if strings.TrimSpace(outputDir) == "" {
		return nil, fmt.Errorf("plan destinations: output directory is required")
	}
	seen := make(map[string]struct{}, len(files))
	jobs := make([]Job, 0, len(files))
	for _, file := range files {
		if _, dup := seen[file]; dup {
			continue
		}
		seen[file] = struct{}{}
		dest, err := Destination(file, outputDir, extension)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, Job{Source: file, Destination: dest})
	}
	return jobs, nil
}

// Sources returns the source paths of jobs in order.
func Sources(jobs []Job) []string {
	out := make([]string, len(jobs))
	for i, job := range jobs {
		out[i] = job.Source
	}
	return out
}
