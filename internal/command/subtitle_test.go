package command_test

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"avsub/internal/command"
	"avsub/internal/options"
)

func TestEscapeFilterPath(t *testing.T) {
	cases := map[string]string{
		`C:\Users\me\AppData\Local\Temp\avsub.tmp`: `C\\:/Users/me/AppData/Local/Temp/avsub.tmp`,
		"/tmp/avsub.tmp":                            "/tmp/avsub.tmp",
		"/tmp/a:b/avsub.tmp":                        `/tmp/a\\:b/avsub.tmp`,
	}
	for in, want := range cases {
		if got := command.EscapeFilterPath(in); got != want {
			t.Fatalf("EscapeFilterPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSubtitleFilter(t *testing.T) {
	_, style := command.Build(options.Default())
	got := command.SubtitleFilter("/tmp/avsub.tmp", style)
	want := []string{"-vf", "subtitles=/tmp/avsub.tmp:force_style='Fontname=,Fontsize=16,PrimaryColour=&HFFFFFF&,OutlineColour=&H000000&,Alignment=2'"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("SubtitleFilter:\n got %q\nwant %q", got, want)
	}
}

func TestWithSubtitleAppendsCopy(t *testing.T) {
	args, style := command.Build(options.Default())
	burned := args.WithSubtitle("/tmp/avsub.tmp", style)
	if len(burned) != len(args)+2 {
		t.Fatalf("expected two extra tokens, got %q", burned)
	}
	if burned[len(burned)-2] != "-vf" {
		t.Fatalf("expected -vf before filter, got %q", burned)
	}
	for _, tok := range args {
		if tok == "-vf" {
			t.Fatal("original vector must not be modified")
		}
	}
}

func TestStageSubtitle(t *testing.T) {
	srcDir := t.TempDir()
	tempDir := t.TempDir()
	src := filepath.Join(srcDir, "Movie - Part 1.srt")
	if err := os.WriteFile(src, []byte("subtitle"), 0o644); err != nil {
		t.Fatal(err)
	}

	staged, err := command.StageSubtitle(src, tempDir)
	if err != nil {
		t.Fatalf("StageSubtitle: %v", err)
	}
	if filepath.Base(staged) != command.StagedSubtitleName {
		t.Fatalf("unexpected staged name %q", staged)
	}
	if !filepath.IsAbs(staged) {
		t.Fatalf("expected absolute path, got %q", staged)
	}
	data, err := os.ReadFile(staged)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "subtitle" {
		t.Fatalf("unexpected staged content %q", data)
	}
}

func TestStageSubtitleMissingSource(t *testing.T) {
	if _, err := command.StageSubtitle(filepath.Join(t.TempDir(), "missing.srt"), t.TempDir()); err == nil {
		t.Fatal("expected error for missing subtitle")
	}
}
