package report

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"
)

// Kind classifies a status line.
type Kind int

const (
	KindInfo Kind = iota
	KindOK
	KindWarn
	KindError
)

const (
	statusLabelWidth = 20
	statusIndent     = "  "
)

// StatusLine renders "  label:   [KIND] message".
func StatusLine(label string, kind Kind, message string, colorize bool) string {
	statusText := kindLabel(kind)
	if message != "" {
		statusText = fmt.Sprintf("[%s] %s", statusText, message)
	} else {
		statusText = fmt.Sprintf("[%s]", statusText)
	}
	base := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", statusText)
	return paint(base, kindColors(kind), colorize)
}

// SectionHeader renders a titled rule.
func SectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	blue := text.Colors{text.FgBlue}
	return []string{paint(line, blue, colorize), paint(rule, blue, colorize)}
}

func kindLabel(kind Kind) string {
	switch kind {
	case KindOK:
		return "OK"
	case KindWarn:
		return "WARN"
	case KindError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func kindColors(kind Kind) text.Colors {
	switch kind {
	case KindOK:
		return text.Colors{text.FgGreen}
	case KindWarn:
		return text.Colors{text.FgYellow}
	case KindError:
		return text.Colors{text.FgRed}
	default:
		return text.Colors{text.FgBlue}
	}
}
