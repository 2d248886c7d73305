//go:build !unix

package preflight

import (
	"os"
	"path/filepath"
)

// Without access(2), probe by creating and removing a file.
func checkAccess(path string) error {
	probe, err := os.CreateTemp(path, ".avsub-probe-*")
	if err != nil {
		return err
	}
	name := probe.Name()
	_ = probe.Close()
	return os.Remove(filepath.Clean(name))
}
