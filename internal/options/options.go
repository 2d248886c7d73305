package options

import (
	"fmt"

	"avsub/internal/services"
)

const (
	// DefaultCompression is the crf applied when no compression is requested.
	DefaultCompression = 23
	// CompressionConst is the crf applied when compression is requested
	// without an explicit value.
	CompressionConst = 33
	MaxCompression   = 51

	DefaultFontSize = 16

	maxTimestampComponent = 59
)

// Timestamp is an H:M:S triple with every component in [0,59].
type Timestamp struct {
	H int
	M int
	S int
}

// Seconds converts the triple to a single offset.
func (t Timestamp) Seconds() int {
	return t.H*3600 + t.M*60 + t.S
}

func (t Timestamp) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.H, t.M, t.S)
}

// Trim is a cut window.
type Trim struct {
	Start Timestamp
	Stop  Timestamp
}

// Speed pairs the audio and video speed ratios.
type Speed struct {
	Audio SpeedRatio
	Video SpeedRatio
}

// OptionSet describes a transcode. Build one with Default, adjust fields,
// and call Validate before handing it to the command builder.
type OptionSet struct {
	Channel       Channel
	AudioCodec    string
	SubtitleCodec string
	VideoCodec    string

	Compression      int
	Copy             []Stream
	DisableSelectAll bool
	ExtraArgs        string
	FrameRate        *float64
	Only             OnlySelector
	Remove           []Stream
	RemoveChapters   bool
	RemoveMetadata   bool
	Speed            *Speed
	Trim             *Trim
	Verbosity        int

	Burn         bool
	FontName     string
	FontSize     int
	PrimaryColor Color
	OutlineColor Color
	Alignment    Alignment
}

// Default returns an OptionSet populated with the documented defaults.
func Default() OptionSet {
	return OptionSet{
		Compression:  DefaultCompression,
		FontSize:     DefaultFontSize,
		PrimaryColor: ColorWhite,
		OutlineColor: ColorBlack,
		Alignment:    AlignBottom,
	}
}

// Validate ensures every field lies within its domain.
func (o OptionSet) Validate() error {
	if o.Channel != ChannelUnset {
		if _, ok := channelValues[o.Channel]; !ok {
			return configErr("channel", "unknown channel %q", o.Channel)
		}
	}
	if o.Compression < 0 || o.Compression > MaxCompression {
		return configErr("compress", "crf %d outside [0,%d]", o.Compression, MaxCompression)
	}
	for _, s := range o.Copy {
		if _, ok := copyStreams[s]; !ok {
			return configErr("copy", "stream %q cannot be copied", s)
		}
	}
	for _, s := range o.Remove {
		if _, ok := removeStreams[s]; !ok {
			return configErr("remove", "stream %q cannot be removed", s)
		}
	}
	if o.FrameRate != nil && !(*o.FrameRate > 0) {
		return configErr("frame", "frame rate must be positive, got %v", *o.FrameRate)
	}
	if o.Only != OnlyNone {
		if _, ok := onlyFlags[o.Only]; !ok {
			return configErr("only", "unknown stream selector %q", o.Only)
		}
	}
	if o.Speed != nil {
		for _, r := range []SpeedRatio{o.Speed.Audio, o.Speed.Video} {
			if _, ok := speedTable[r]; !ok {
				return configErr("speed", "unknown speed ratio %q", r)
			}
		}
	}
	if o.Trim != nil {
		for _, ts := range []Timestamp{o.Trim.Start, o.Trim.Stop} {
			for _, c := range []int{ts.H, ts.M, ts.S} {
				if c < 0 || c > maxTimestampComponent {
					return configErr("trim", "component %d outside [0,%d]", c, maxTimestampComponent)
				}
			}
		}
	}
	if o.Verbosity < 0 {
		return configErr("verbose", "verbosity must not be negative")
	}
	if _, ok := colorTable[o.PrimaryColor]; !ok {
		return configErr("color-primary", "unknown color %q", o.PrimaryColor)
	}
	if _, ok := colorTable[o.OutlineColor]; !ok {
		return configErr("color-outline", "unknown color %q", o.OutlineColor)
	}
	if _, ok := alignmentTable[o.Alignment]; !ok {
		return configErr("position", "unknown position %q", o.Alignment)
	}
	return nil
}

func configErr(field, format string, args ...any) error {
	return services.Wrap(services.ErrConfiguration, "options", field, fmt.Sprintf(format, args...), nil)
}
