package testsupport

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// CopyingFFmpegScript mimics `ffmpeg [flags] DEST -i SRC` by copying SRC to
// DEST. It fails with status 1 when SRC contains "corrupt" so tests can
// exercise the failure path.
const CopyingFFmpegScript = `#!/bin/sh
dest=""
src=""
prev=""
for arg in "$@"; do
  if [ "$prev" = "-i" ]; then
    src="$arg"
  elif [ "$arg" != "-i" ]; then
    dest="$arg"
  fi
  prev="$arg"
done
case "$src" in
  *corrupt*) echo "invalid data found when processing input" >&2; exit 1 ;;
esac
cp "$src" "$dest"
`

// RecordingFFmpegScript appends its argv, one argument per line followed by
// a "--" separator, to the file named by $AVSUB_ARGV_LOG and exits 0.
const RecordingFFmpegScript = `#!/bin/sh
for arg in "$@"; do
  printf '%s\n' "$arg" >> "$AVSUB_ARGV_LOG"
done
printf -- '--\n' >> "$AVSUB_ARGV_LOG"
`

// RequireShell skips the test on platforms without /bin/sh.
func RequireShell(t testing.TB) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell stubs are not supported on windows")
	}
}

// StubBinary writes an executable script named name inside dir and returns
// its path.
func StubBinary(t testing.TB, dir, name, script string) string {
	t.Helper()
	RequireShell(t)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir bin dir: %v", err)
	}
	target := filepath.Join(dir, name)
	if err := os.WriteFile(target, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", name, err)
	}
	return target
}
