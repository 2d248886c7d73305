package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"avsub/internal/batchrun"
	"avsub/internal/options"
	"avsub/internal/services"
)

type transcodeFlags struct {
	channel       string
	audioCodec    string
	subtitleCodec string
	videoCodec    string

	compress         int
	copyStreams      []string
	disableSelectAll bool
	ffmpegList       string
	frame            float64
	onlyAudio        bool
	onlySubtitle     bool
	onlyVideo        bool
	remove           []string
	removeChapters   bool
	removeMetadata   bool
	speed            []string
	trim             []int

	burn         bool
	colorOutline string
	colorPrimary string
	fontName     string
	fontSize     int
	position     string
	subtitle     string

	shutdown int
	verbose  int
	logLevel string
	output   string
}

func (f *transcodeFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.SortFlags = false

	fs.StringVar(&f.channel, "channel", "", "Set the output audio channel layout (choices: mono, stereo)")
	fs.StringVarP(&f.audioCodec, "codec-audio", "a", "", "Use CODEC for audio streams")
	fs.StringVarP(&f.subtitleCodec, "codec-subtitle", "s", "", "Use CODEC for subtitle streams")
	fs.StringVarP(&f.videoCodec, "codec-video", "v", "", "Use CODEC for video streams")
	fs.IntVarP(&f.compress, "compress", "C", options.DefaultCompression, "Set the crf VALUE for compression (bare flag: "+strconv.Itoa(options.CompressionConst)+")")
	fs.Lookup("compress").NoOptDefVal = strconv.Itoa(options.CompressionConst)
	fs.StringSliceVarP(&f.copyStreams, "copy", "c", nil, "Copy STREAM without re-encoding (choices: -, audio, subtitle, video)")
	fs.BoolVar(&f.disableSelectAll, "disable-select-all", false, "Do not select all input streams")
	fs.StringVarP(&f.ffmpegList, "ffmpeg-list", "f", "", "Pass ARGS to ffmpeg verbatim")
	fs.Float64VarP(&f.frame, "frame", "p", 0, "Set the output frame rate")
	fs.BoolVarP(&f.onlyAudio, "only-audio", "A", false, "Keep the audio stream only")
	fs.BoolVarP(&f.onlySubtitle, "only-subtitle", "S", false, "Keep the subtitle stream only")
	fs.BoolVarP(&f.onlyVideo, "only-video", "V", false, "Keep the video stream only")
	fs.StringSliceVarP(&f.remove, "remove", "r", nil, "Drop STREAM from the output (choices: audio, data, subtitle, video)")
	fs.BoolVar(&f.removeChapters, "remove-chapters", false, "Remove chapters")
	fs.BoolVar(&f.removeMetadata, "remove-metadata", false, "Remove metadata")
	fs.StringSliceVar(&f.speed, "speed", nil, "Change speed as AUDIO,VIDEO (choices: 1/8, 1/4, 1/2, 1, 2, 4, 8)")
	fs.IntSliceVar(&f.trim, "trim", nil, "Cut from H,M,S to H,M,S")

	fs.BoolVar(&f.burn, "burn", false, "Burn the --subtitle file into the video (single input only)")
	fs.StringVar(&f.colorOutline, "color-outline", "", "Subtitle outline COLOR (choices: black, blue, green, red, white)")
	fs.StringVar(&f.colorPrimary, "color-primary", "", "Subtitle primary COLOR (choices: black, blue, green, red, white)")
	fs.StringVar(&f.fontName, "font-name", "", "Subtitle font NAME")
	fs.IntVar(&f.fontSize, "font-size", 0, "Subtitle font SIZE")
	fs.StringVar(&f.position, "position", "", "Subtitle POSITION (choices: bottom, middle, top)")
	fs.StringVar(&f.subtitle, "subtitle", "", "Subtitle file to burn")

	fs.IntVar(&f.shutdown, "shutdown", 0, "Shut the machine down TIMEOUT seconds after the batch")
	fs.Lookup("shutdown").NoOptDefVal = "0"
	fs.CountVar(&f.verbose, "verbose", "Raise ffmpeg verbosity, repeatable")
	fs.StringVar(&f.logLevel, "log-level", "", "Override logging.level for this run")
	fs.StringVarP(&f.output, "output", "o", "", "Folder receiving the transcoded files")

	cmd.MarkFlagsMutuallyExclusive("only-audio", "only-subtitle", "only-video")
	_ = cmd.MarkFlagRequired("output")
}

func runTranscode(cmd *cobra.Command, ctx *commandContext, flags *transcodeFlags, args []string) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	req, err := flags.request(cmd, cfg.OptionDefaults(), args)
	if err != nil {
		return err
	}
	_, err = batchrun.Run(cmd.Context(), cfg, req, batchrun.Options{
		LogLevel:      flags.logLevel,
		Stdout:        cmd.OutOrStdout(),
		Stderr:        cmd.ErrOrStderr(),
		HandleSignals: true,
	})
	return err
}

// request maps parsed flags onto a batch request. defaults carries the
// configured subtitle style, which explicit flags override.
func (f *transcodeFlags) request(cmd *cobra.Command, defaults options.OptionSet, args []string) (batchrun.Request, error) {
	if len(args) < 2 {
		return batchrun.Request{}, services.Wrap(services.ErrValidation, "cli", "arguments", "need EXTENSION and at least one FILE", nil)
	}
	if err := f.checkDetachedValues(cmd, args[0]); err != nil {
		return batchrun.Request{}, err
	}
	opts, err := f.optionSet(cmd, defaults)
	if err != nil {
		return batchrun.Request{}, err
	}
	req := batchrun.Request{
		Options:   opts,
		Extension: args[0],
		Files:     args[1:],
		OutputDir: f.output,
		Subtitle:  f.subtitle,
	}
	if cmd.Flags().Changed("shutdown") {
		seconds := f.shutdown
		req.Shutdown = &seconds
	}
	return req, nil
}

// checkDetachedValues rejects "--compress 40" and "--shutdown 60". Flags with
// a bare form only take a value through "=", so the number would otherwise
// become the extension while the flag silently falls back to its bare value.
func (f *transcodeFlags) checkDetachedValues(cmd *cobra.Command, first string) error {
	if _, err := strconv.Atoi(first); err != nil {
		return nil
	}
	changed := cmd.Flags().Changed
	if changed("compress") && f.compress == options.CompressionConst {
		return services.Wrap(services.ErrValidation, "cli", "compress",
			fmt.Sprintf("value %s looks detached from --compress; use --compress=%s", first, first), nil)
	}
	if changed("shutdown") && f.shutdown == 0 {
		return services.Wrap(services.ErrValidation, "cli", "shutdown",
			fmt.Sprintf("value %s looks detached from --shutdown; use --shutdown=%s", first, first), nil)
	}
	return nil
}

func (f *transcodeFlags) optionSet(cmd *cobra.Command, defaults options.OptionSet) (options.OptionSet, error) {
	changed := cmd.Flags().Changed
	opts := defaults

	channel, err := options.ParseChannel(f.channel)
	if err != nil {
		return opts, err
	}
	opts.Channel = channel
	opts.AudioCodec = f.audioCodec
	opts.SubtitleCodec = f.subtitleCodec
	opts.VideoCodec = f.videoCodec
	opts.Compression = f.compress

	for _, value := range f.copyStreams {
		stream, err := options.ParseCopyStream(value)
		if err != nil {
			return opts, err
		}
		opts.Copy = append(opts.Copy, stream)
	}
	for _, value := range f.remove {
		stream, err := options.ParseRemoveStream(value)
		if err != nil {
			return opts, err
		}
		opts.Remove = append(opts.Remove, stream)
	}

	opts.DisableSelectAll = f.disableSelectAll
	opts.ExtraArgs = f.ffmpegList
	if changed("frame") {
		frame := f.frame
		opts.FrameRate = &frame
	}
	switch {
	case f.onlyAudio:
		opts.Only = options.OnlyAudio
	case f.onlySubtitle:
		opts.Only = options.OnlySubtitle
	case f.onlyVideo:
		opts.Only = options.OnlyVideo
	}
	opts.RemoveChapters = f.removeChapters
	opts.RemoveMetadata = f.removeMetadata

	if changed("speed") {
		speed, err := parseSpeed(f.speed)
		if err != nil {
			return opts, err
		}
		opts.Speed = speed
	}
	if changed("trim") {
		trim, err := parseTrim(f.trim)
		if err != nil {
			return opts, err
		}
		opts.Trim = trim
	}
	opts.Verbosity = f.verbose

	opts.Burn = f.burn
	if changed("font-name") {
		opts.FontName = f.fontName
	}
	if changed("font-size") {
		opts.FontSize = f.fontSize
	}
	if changed("color-primary") {
		if opts.PrimaryColor, err = options.ParseColor(f.colorPrimary); err != nil {
			return opts, err
		}
	}
	if changed("color-outline") {
		if opts.OutlineColor, err = options.ParseColor(f.colorOutline); err != nil {
			return opts, err
		}
	}
	if changed("position") {
		if opts.Alignment, err = options.ParseAlignment(f.position); err != nil {
			return opts, err
		}
	}

	if err := opts.Validate(); err != nil {
		return opts, err
	}
	return opts, nil
}

func parseSpeed(values []string) (*options.Speed, error) {
	if len(values) != 2 {
		return nil, services.Wrap(services.ErrConfiguration, "options", "speed",
			fmt.Sprintf("expected AUDIO,VIDEO, got %d values", len(values)), nil)
	}
	audio, err := options.ParseSpeedRatio(values[0])
	if err != nil {
		return nil, err
	}
	video, err := options.ParseSpeedRatio(values[1])
	if err != nil {
		return nil, err
	}
	return &options.Speed{Audio: audio, Video: video}, nil
}

func parseTrim(values []int) (*options.Trim, error) {
	if len(values) != 6 {
		return nil, services.Wrap(services.ErrConfiguration, "options", "trim",
			fmt.Sprintf("expected H,M,S,H,M,S, got %d values", len(values)), nil)
	}
	return &options.Trim{
		Start: options.Timestamp{H: values[0], M: values[1], S: values[2]},
		Stop:  options.Timestamp{H: values[3], M: values[4], S: values[5]},
	}, nil
}
