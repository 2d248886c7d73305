package report

import (
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
)

// ShouldColorize reports whether writer is an interactive terminal.
func ShouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// paint wraps s in escape sequences directly so the terminal check above is
// the only switch, regardless of go-pretty's environment detection.
func paint(s string, colors text.Colors, colorize bool) string {
	if !colorize || len(colors) == 0 {
		return s
	}
	return colors.EscapeSeq() + s + text.Reset.EscapeSeq()
}
