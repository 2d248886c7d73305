package command_test

import (
	"reflect"
	"strings"
	"testing"

	"avsub/internal/command"
	"avsub/internal/options"
)

func TestBuildDefaults(t *testing.T) {
	args, _ := command.Build(options.Default())
	want := command.Args{
		"ffmpeg", "-n", "-stats",
		"-crf", "23",
		"-map", "0",
		"-map_chapters", "0",
		"-map_metadata", "0",
		"-loglevel", "24",
	}
	if !reflect.DeepEqual(args, want) {
		t.Fatalf("Build defaults:\n got %q\nwant %q", args, want)
	}
}

func TestBuildFullOptionOrder(t *testing.T) {
	frame := 29.97
	opts := options.Default()
	opts.Channel = options.ChannelMono
	opts.AudioCodec = "aac"
	opts.SubtitleCodec = "mov_text"
	opts.VideoCodec = "libx265"
	opts.Compression = options.CompressionConst
	opts.Copy = []options.Stream{options.StreamAudio, options.StreamAll}
	opts.FrameRate = &frame
	opts.Only = options.OnlyVideo
	opts.Remove = []options.Stream{options.StreamData, options.StreamSubtitle}
	opts.RemoveChapters = true
	opts.RemoveMetadata = true
	opts.Speed = &options.Speed{Audio: options.SpeedQuad, Video: options.SpeedQuad}
	opts.Trim = &options.Trim{
		Start: options.Timestamp{H: 0, M: 1, S: 30},
		Stop:  options.Timestamp{H: 1, M: 2, S: 3},
	}
	opts.Verbosity = 1
	opts.ExtraArgs = "  -preset   slow\t-tune film "

	args, _ := command.Build(opts)
	want := command.Args{
		"ffmpeg", "-n", "-stats",
		"-ac", "1",
		"-codec:a", "aac",
		"-codec:s", "mov_text",
		"-codec:v", "libx265",
		"-crf", "33",
		"-codec:a", "copy",
		"-codec:", "copy",
		"-map", "0",
		"-r", "29.97",
		"-an", "-dn", "-sn",
		"-dn", "-sn",
		"-map_chapters", "-1",
		"-map_metadata", "-1",
		"-af", "atempo=2.0,atempo=2.0,atempo=1.0",
		"-vf", "setpts=PTS/4.0",
		"-ss", "90",
		"-to", "3723",
		"-loglevel", "32",
		"-preset", "slow", "-tune", "film",
	}
	if !reflect.DeepEqual(args, want) {
		t.Fatalf("Build:\n got %q\nwant %q", args, want)
	}
}

func TestBuildDisableSelectAll(t *testing.T) {
	opts := options.Default()
	opts.DisableSelectAll = true
	args, _ := command.Build(opts)
	for _, tok := range args {
		if tok == "-map" {
			t.Fatalf("unexpected -map in %q", args)
		}
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	opts := options.Default()
	opts.Speed = &options.Speed{Audio: options.SpeedEighth, Video: options.SpeedHalf}
	opts.Remove = []options.Stream{options.StreamAudio}
	first, firstStyle := command.Build(opts)
	for i := 0; i < 20; i++ {
		args, style := command.Build(opts)
		if !reflect.DeepEqual(args, first) || !reflect.DeepEqual(style, firstStyle) {
			t.Fatalf("Build not deterministic on iteration %d", i)
		}
	}
}

func TestBuildForCustomBinary(t *testing.T) {
	args, _ := command.BuildFor("/opt/ffmpeg/bin/ffmpeg", options.Default())
	if args.Binary() != "/opt/ffmpeg/bin/ffmpeg" {
		t.Fatalf("unexpected binary %q", args.Binary())
	}
	if got := command.Base(" "); got.Binary() != command.DefaultBinary {
		t.Fatalf("blank binary should fall back to default, got %q", got.Binary())
	}
}

func TestLoglevelTable(t *testing.T) {
	cases := map[int]string{0: "24", 1: "32", 2: "40", 7: "40"}
	for verbosity, want := range cases {
		if got := command.Loglevel(verbosity); got != want {
			t.Fatalf("Loglevel(%d) = %q, want %q", verbosity, got, want)
		}
	}
}

func TestBuildStyle(t *testing.T) {
	opts := options.Default()
	opts.FontName = "DejaVu Sans"
	opts.FontSize = -24
	opts.PrimaryColor = options.ColorGreen
	opts.OutlineColor = options.ColorBlue
	opts.Alignment = options.AlignMiddle

	_, style := command.Build(opts)
	want := "Fontname=DejaVu Sans,Fontsize=24,PrimaryColour=&H00FF00&,OutlineColour=&HFF0000&,Alignment=10"
	if style.String() != want {
		t.Fatalf("style = %q, want %q", style.String(), want)
	}
}

func TestWithFilesDoesNotMutate(t *testing.T) {
	args, _ := command.Build(options.Default())
	before := append(command.Args(nil), args...)

	full := args.WithFiles("/out/a.mkv", "/in/a.mp4")
	tail := full[len(full)-3:]
	if !reflect.DeepEqual(tail, []string{"/out/a.mkv", "-i", "/in/a.mp4"}) {
		t.Fatalf("unexpected tail %q", tail)
	}
	full[0] = "mutated"
	if !reflect.DeepEqual(args, before) {
		t.Fatalf("WithFiles mutated the prebuilt vector: %q", args)
	}
	if strings.Contains(args.String(), "/in/a.mp4") {
		t.Fatal("prebuilt vector must not contain per-file paths")
	}
}
