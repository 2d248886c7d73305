package command

import (
	"strconv"
	"strings"

	"avsub/internal/options"
)

// DefaultBinary is the transcoder executable used when none is configured.
const DefaultBinary = "ffmpeg"

// Args is the ordered ffmpeg argument vector, binary first.
type Args []string

// WithFiles returns a new slice with the destination and the input appended.
// The receiver is never modified.
func (a Args) WithFiles(destination, source string) []string {
	out := make([]string, 0, len(a)+3)
	out = append(out, a...)
	return append(out, destination, "-i", source)
}

// Binary returns the executable token.
func (a Args) Binary() string {
	if len(a) == 0 {
		return ""
	}
	return a[0]
}

// String renders the vector for logs. It is not shell-safe.
func (a Args) String() string {
	return strings.Join(a, " ")
}

// Style is the ordered list of key=value subtitle style attributes.
type Style []string

// String joins the attributes with commas, the force_style syntax.
func (s Style) String() string {
	return strings.Join(s, ",")
}

// Base returns the fixed invocation prefix: never overwrite outputs and
// always print statistics.
func Base(binary string) Args {
	if strings.TrimSpace(binary) == "" {
		binary = DefaultBinary
	}
	return Args{binary, "-n", "-stats"}
}

var loglevels = map[int]string{
	0: "24",
	1: "32",
}

const defaultLoglevel = "40"

// Loglevel maps a verbosity count to ffmpeg's numeric log level.
func Loglevel(verbosity int) string {
	if level, ok := loglevels[verbosity]; ok {
		return level
	}
	return defaultLoglevel
}

// Build compiles opts using the default ffmpeg binary.
func Build(opts options.OptionSet) (Args, Style) {
	return BuildFor(DefaultBinary, opts)
}

// BuildFor compiles opts into the argument vector and style descriptor.
// opts must already be validated.
func BuildFor(binary string, opts options.OptionSet) (Args, Style) {
	args := Base(binary)

	if ch := opts.Channel.Value(); ch != "" {
		args = append(args, "-ac", ch)
	}

	if opts.AudioCodec != "" {
		args = append(args, "-codec:a", opts.AudioCodec)
	}
	if opts.SubtitleCodec != "" {
		args = append(args, "-codec:s", opts.SubtitleCodec)
	}
	if opts.VideoCodec != "" {
		args = append(args, "-codec:v", opts.VideoCodec)
	}

	args = append(args, "-crf", strconv.Itoa(opts.Compression))

	for _, stream := range opts.Copy {
		args = append(args, "-codec:"+stream.Specifier(), "copy")
	}

	if !opts.DisableSelectAll {
		args = append(args, "-map", "0")
	}

	if opts.FrameRate != nil {
		args = append(args, "-r", formatFloat(*opts.FrameRate))
	}

	args = append(args, opts.Only.Flags()...)

	for _, stream := range opts.Remove {
		args = append(args, "-"+stream.Specifier()+"n")
	}

	args = append(args, "-map_chapters", strconv.Itoa(-boolInt(opts.RemoveChapters)))
	args = append(args, "-map_metadata", strconv.Itoa(-boolInt(opts.RemoveMetadata)))

	if opts.Speed != nil {
		args = append(args, "-af", AudioTempoFilter(opts.Speed.Audio))
		args = append(args, "-vf", VideoSpeedFilter(opts.Speed.Video))
	}

	if opts.Trim != nil {
		args = append(args,
			"-ss", strconv.Itoa(TrimOffset(opts.Trim.Start)),
			"-to", strconv.Itoa(TrimOffset(opts.Trim.Stop)),
		)
	}

	args = append(args, "-loglevel", Loglevel(opts.Verbosity))

	if extra := strings.Fields(opts.ExtraArgs); len(extra) > 0 {
		args = append(args, extra...)
	}

	return args, BuildStyle(opts)
}

// BuildStyle assembles the force_style descriptor. It is always computed and
// only used when subtitles are burned.
func BuildStyle(opts options.OptionSet) Style {
	return Style{
		"Fontname=" + opts.FontName,
		"Fontsize=" + strconv.Itoa(absInt(opts.FontSize)),
		"PrimaryColour=" + opts.PrimaryColor.Hex(),
		"OutlineColour=" + opts.OutlineColor.Hex(),
		"Alignment=" + opts.Alignment.Code(),
	}
}

// TrimOffset converts an H:M:S triple to seconds.
func TrimOffset(ts options.Timestamp) int {
	return ts.Seconds()
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// formatFloat renders the shortest round-trip form and keeps a ".0" suffix
// on integral values so tokens read as rates ("2.0", "0.5", "29.97").
func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}
