package config

import "avsub/internal/options"

const (
	defaultConfigPath       = "~/.config/avsub/config.toml"
	projectConfigName       = "avsub.toml"
	defaultLogDir           = "~/.local/share/avsub/logs"
	defaultStateDir         = "~/.local/share/avsub"
	defaultBinary           = "ffmpeg"
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultLogRetentionDays = 30

	// BinaryEnv overrides ffmpeg.binary when set.
	BinaryEnv = "AVSUB_FFMPEG"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:   defaultLogDir,
			StateDir: defaultStateDir,
		},
		FFmpeg: FFmpeg{Binary: defaultBinary},
		Output: Output{RemoveFailed: true},
		Subtitles: Subtitles{
			FontSize:     options.DefaultFontSize,
			PrimaryColor: string(options.ColorWhite),
			OutlineColor: string(options.ColorBlack),
			Position:     string(options.AlignBottom),
		},
		History: History{Enabled: true},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
