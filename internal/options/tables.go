package options

import (
	"fmt"
	"sort"
	"strings"

	"avsub/internal/services"
)

// Channel selects the output audio channel count.
type Channel string

const (
	ChannelUnset  Channel = ""
	ChannelMono   Channel = "mono"
	ChannelStereo Channel = "stereo"
)

var channelValues = map[Channel]string{
	ChannelMono:   "1",
	ChannelStereo: "2",
}

// Value returns the channel count token, or "" when unset.
func (c Channel) Value() string {
	return channelValues[c]
}

// Stream names a media stream kind. StreamAll ("-") stands for every stream
// and is only meaningful for copy requests.
type Stream string

const (
	StreamAll      Stream = "-"
	StreamAudio    Stream = "audio"
	StreamData     Stream = "data"
	StreamSubtitle Stream = "subtitle"
	StreamVideo    Stream = "video"
)

// Specifier returns the single-letter stream specifier ("a", "d", "s", "v"),
// or "" for StreamAll.
func (s Stream) Specifier() string {
	if s == StreamAll || s == "" {
		return ""
	}
	return string(s[0])
}

var copyStreams = map[Stream]struct{}{
	StreamAll:      {},
	StreamAudio:    {},
	StreamSubtitle: {},
	StreamVideo:    {},
}

var removeStreams = map[Stream]struct{}{
	StreamAudio:    {},
	StreamData:     {},
	StreamSubtitle: {},
	StreamVideo:    {},
}

// OnlySelector keeps a single stream kind by suppressing the others.
type OnlySelector string

const (
	OnlyNone     OnlySelector = ""
	OnlyAudio    OnlySelector = "audio"
	OnlySubtitle OnlySelector = "subtitle"
	OnlyVideo    OnlySelector = "video"
)

var onlyFlags = map[OnlySelector][]string{
	OnlyAudio:    {"-dn", "-sn", "-vn"},
	OnlySubtitle: {"-an", "-dn", "-vn"},
	OnlyVideo:    {"-an", "-dn", "-sn"},
}

// Flags returns the suppression flags for the selector.
func (o OnlySelector) Flags() []string {
	flags := onlyFlags[o]
	out := make([]string, len(flags))
	copy(out, flags)
	return out
}

// SpeedRatio is one of the supported speed keywords.
type SpeedRatio string

const (
	SpeedEighth  SpeedRatio = "1/8"
	SpeedQuarter SpeedRatio = "1/4"
	SpeedHalf    SpeedRatio = "1/2"
	SpeedNormal  SpeedRatio = "1"
	SpeedDouble  SpeedRatio = "2"
	SpeedQuad    SpeedRatio = "4"
	SpeedOctuple SpeedRatio = "8"
)

type speedEntry struct {
	value float64
	step  float64
}

// Slow-down keywords factor with 0.5 steps, everything else with 2.0 steps.
var speedTable = map[SpeedRatio]speedEntry{
	SpeedEighth:  {value: 0.125, step: 0.5},
	SpeedQuarter: {value: 0.25, step: 0.5},
	SpeedHalf:    {value: 0.5, step: 0.5},
	SpeedNormal:  {value: 1, step: 2},
	SpeedDouble:  {value: 2, step: 2},
	SpeedQuad:    {value: 4, step: 2},
	SpeedOctuple: {value: 8, step: 2},
}

// Value returns the ratio as a float.
func (r SpeedRatio) Value() float64 {
	return speedTable[r].value
}

// Step returns the tempo step factor associated with the keyword.
func (r SpeedRatio) Step() float64 {
	return speedTable[r].step
}

// Color is a subtitle colour keyword.
type Color string

const (
	ColorBlack Color = "black"
	ColorBlue  Color = "blue"
	ColorGreen Color = "green"
	ColorRed   Color = "red"
	ColorWhite Color = "white"
)

// Colours are BGR as expected by the ASS force_style syntax.
var colorTable = map[Color]string{
	ColorBlack: "&H000000&",
	ColorBlue:  "&HFF0000&",
	ColorGreen: "&H00FF00&",
	ColorRed:   "&H0000FF&",
	ColorWhite: "&HFFFFFF&",
}

// Hex returns the force_style colour literal.
func (c Color) Hex() string {
	return colorTable[c]
}

// Alignment places burned subtitles on screen.
type Alignment string

const (
	AlignBottom Alignment = "bottom"
	AlignMiddle Alignment = "middle"
	AlignTop    Alignment = "top"
)

var alignmentTable = map[Alignment]string{
	AlignBottom: "2",
	AlignMiddle: "10",
	AlignTop:    "6",
}

// Code returns the force_style alignment code.
func (a Alignment) Code() string {
	return alignmentTable[a]
}

// ParseChannel converts a CLI keyword to a Channel.
func ParseChannel(value string) (Channel, error) {
	v := Channel(normalizeKeyword(value))
	if v == ChannelUnset {
		return ChannelUnset, nil
	}
	if _, ok := channelValues[v]; !ok {
		return ChannelUnset, invalidChoice("channel", value, keys(channelValues))
	}
	return v, nil
}

// ParseCopyStream converts a CLI keyword to a stream eligible for copying.
func ParseCopyStream(value string) (Stream, error) {
	v := Stream(normalizeKeyword(value))
	if _, ok := copyStreams[v]; !ok {
		return "", invalidChoice("copy", value, keys(copyStreams))
	}
	return v, nil
}

// ParseRemoveStream converts a CLI keyword to a stream eligible for removal.
func ParseRemoveStream(value string) (Stream, error) {
	v := Stream(normalizeKeyword(value))
	if _, ok := removeStreams[v]; !ok {
		return "", invalidChoice("remove", value, keys(removeStreams))
	}
	return v, nil
}

// ParseSpeedRatio converts a CLI keyword to a SpeedRatio.
func ParseSpeedRatio(value string) (SpeedRatio, error) {
	v := SpeedRatio(normalizeKeyword(value))
	if _, ok := speedTable[v]; !ok {
		return "", invalidChoice("speed", value, keys(speedTable))
	}
	return v, nil
}

// ParseColor converts a CLI keyword to a Color.
func ParseColor(value string) (Color, error) {
	v := Color(normalizeKeyword(value))
	if _, ok := colorTable[v]; !ok {
		return "", invalidChoice("color", value, keys(colorTable))
	}
	return v, nil
}

// ParseAlignment converts a CLI keyword to an Alignment.
func ParseAlignment(value string) (Alignment, error) {
	v := Alignment(normalizeKeyword(value))
	if _, ok := alignmentTable[v]; !ok {
		return "", invalidChoice("position", value, keys(alignmentTable))
	}
	return v, nil
}

func normalizeKeyword(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func invalidChoice(field, value string, choices []string) error {
	return services.Wrap(services.ErrConfiguration, "options", field,
		fmt.Sprintf("invalid choice %q (choices: %s)", value, strings.Join(choices, ", ")), nil)
}

func keys[K ~string, V any](m map[K]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, string(k))
	}
	sort.Strings(out)
	return out
}
