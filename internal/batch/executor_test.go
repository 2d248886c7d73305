package batch_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"avsub/internal/batch"
	"avsub/internal/command"
	"avsub/internal/options"
	"avsub/internal/services"
	"avsub/internal/testsupport"
)

type fixture struct {
	inDir  string
	outDir string
	bc     *batch.Context
	files  []string
}

func newFixture(t *testing.T, names ...string) *fixture {
	t.Helper()
	f := &fixture{inDir: t.TempDir(), outDir: t.TempDir(), bc: batch.NewContext()}
	f.files = testsupport.WriteInputs(t, f.inDir, names...)
	jobs, err := batch.PlanDestinations(f.files, f.outDir, "mkv")
	if err != nil {
		t.Fatalf("PlanDestinations: %v", err)
	}
	if err := f.bc.Tracker.AddAll(jobs); err != nil {
		t.Fatalf("AddAll: %v", err)
	}
	return f
}

func stubArgs(t *testing.T, script string) command.Args {
	t.Helper()
	bin := testsupport.StubBinary(t, t.TempDir(), "ffmpeg", script)
	args, _ := command.BuildFor(bin, options.Default())
	return args
}

func quietExecutor() *batch.Executor {
	return &batch.Executor{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}}
}

func TestRunCompletesEveryFile(t *testing.T) {
	f := newFixture(t, "a.avi", "b.avi")
	args := stubArgs(t, testsupport.CopyingFFmpegScript)

	var seen []batch.Progress
	exec := quietExecutor()
	exec.Progress = func(p batch.Progress) { seen = append(seen, p) }

	result := exec.Run(context.Background(), args, f.files, f.bc)
	if result.Outcome != batch.OutcomeCompleted || result.Err != nil {
		t.Fatalf("result = %+v", result)
	}
	if result.Attempted != 2 || result.Skipped != 0 {
		t.Fatalf("attempted=%d skipped=%d", result.Attempted, result.Skipped)
	}
	if got := f.bc.Tracker.Counts(); got != (batch.Counts{Succeeded: 2}) {
		t.Fatalf("counts = %+v", got)
	}
	for _, job := range f.bc.Tracker.Succeeded() {
		if _, err := os.Stat(job.Destination); err != nil {
			t.Fatalf("expected output %s: %v", job.Destination, err)
		}
	}
	if len(seen) != 2 || seen[0].Index != 1 || seen[1].Total != 2 || seen[1].Source != f.files[1] {
		t.Fatalf("unexpected progress: %+v", seen)
	}
}

func TestRunMarksNonZeroExitFailedAndContinues(t *testing.T) {
	f := newFixture(t, "good.avi", "corrupt.avi", "later.avi")
	args := stubArgs(t, testsupport.CopyingFFmpegScript)

	result := quietExecutor().Run(context.Background(), args, f.files, f.bc)
	if result.Outcome != batch.OutcomeCompleted {
		t.Fatalf("outcome = %s", result.Outcome)
	}
	failed := f.bc.Tracker.Failed()
	if len(failed) != 1 || failed[0].Source != f.files[1] {
		t.Fatalf("failed = %+v", failed)
	}
	if state, _ := f.bc.Tracker.State(f.files[2]); state != batch.StateSucceeded {
		t.Fatalf("file after failure should still run, state = %s", state)
	}
}

func TestRunSkipsExistingDestination(t *testing.T) {
	f := newFixture(t, "a.avi", "b.avi")
	dest, _ := f.bc.Tracker.Destination(f.files[0])
	if err := os.WriteFile(dest, []byte("existing"), 0o644); err != nil {
		t.Fatal(err)
	}
	args := stubArgs(t, testsupport.CopyingFFmpegScript)

	result := quietExecutor().Run(context.Background(), args, f.files, f.bc)
	if result.Skipped != 1 || result.Attempted != 1 {
		t.Fatalf("skipped=%d attempted=%d", result.Skipped, result.Attempted)
	}
	if state, _ := f.bc.Tracker.State(f.files[0]); state != batch.StatePending {
		t.Fatalf("skipped file should stay pending, got %s", state)
	}
	data, _ := os.ReadFile(dest)
	if string(data) != "existing" {
		t.Fatal("existing destination must not be overwritten")
	}
}

func TestRunSkipsDanglingSymlinkDestination(t *testing.T) {
	testsupport.RequireShell(t)
	f := newFixture(t, "a.avi")
	dest, _ := f.bc.Tracker.Destination(f.files[0])
	if err := os.Symlink(filepath.Join(f.outDir, "nowhere"), dest); err != nil {
		t.Fatal(err)
	}
	args := stubArgs(t, testsupport.CopyingFFmpegScript)

	result := quietExecutor().Run(context.Background(), args, f.files, f.bc)
	if result.Skipped != 1 {
		t.Fatalf("dangling symlink should count as present, skipped=%d", result.Skipped)
	}
}

func TestRunIsIdempotentOnSecondPass(t *testing.T) {
	f := newFixture(t, "a.avi", "b.avi")
	args := stubArgs(t, testsupport.CopyingFFmpegScript)
	if r := quietExecutor().Run(context.Background(), args, f.files, f.bc); r.Attempted != 2 {
		t.Fatalf("first pass attempted %d", r.Attempted)
	}

	second := batch.NewContext()
	jobs, _ := batch.PlanDestinations(f.files, f.outDir, "mkv")
	if err := second.Tracker.AddAll(jobs); err != nil {
		t.Fatal(err)
	}
	result := quietExecutor().Run(context.Background(), args, f.files, second)
	if result.Attempted != 0 || result.Skipped != 2 {
		t.Fatalf("second pass attempted=%d skipped=%d", result.Attempted, result.Skipped)
	}
	if got := second.Tracker.Counts(); got != (batch.Counts{Pending: 2}) {
		t.Fatalf("counts = %+v", got)
	}
}

func TestRunStopsBeforeFirstFileWhenCancelled(t *testing.T) {
	f := newFixture(t, "a.avi", "b.avi")
	args := stubArgs(t, testsupport.CopyingFFmpegScript)
	f.bc.Controller.RequestStop()

	result := quietExecutor().Run(context.Background(), args, f.files, f.bc)
	if result.Outcome != batch.OutcomeCancelled || result.Attempted != 0 {
		t.Fatalf("result = %+v", result)
	}
	if got := f.bc.Tracker.Counts(); got != (batch.Counts{Pending: 2}) {
		t.Fatalf("counts = %+v", got)
	}
}

func TestRunStopsAfterInFlightFile(t *testing.T) {
	f := newFixture(t, "a.avi", "b.avi", "c.avi")
	args := stubArgs(t, testsupport.CopyingFFmpegScript)

	exec := quietExecutor()
	exec.Progress = func(p batch.Progress) {
		if p.Index == 2 {
			f.bc.Controller.RequestStop()
		}
	}
	result := exec.Run(context.Background(), args, f.files, f.bc)
	if result.Outcome != batch.OutcomeCancelled {
		t.Fatalf("outcome = %s", result.Outcome)
	}
	if got := f.bc.Tracker.Counts(); got != (batch.Counts{Succeeded: 2, Pending: 1}) {
		t.Fatalf("in-flight file should finish; counts = %+v", got)
	}
}

func TestRunHonoursContextCancellation(t *testing.T) {
	f := newFixture(t, "a.avi")
	args := stubArgs(t, testsupport.CopyingFFmpegScript)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := quietExecutor().Run(ctx, args, f.files, f.bc)
	if result.Outcome != batch.OutcomeCancelled {
		t.Fatalf("outcome = %s", result.Outcome)
	}
}

func TestRunAbortsWhenBinaryMissing(t *testing.T) {
	f := newFixture(t, "a.avi", "b.avi")
	args, _ := command.BuildFor(filepath.Join(t.TempDir(), "no-such-ffmpeg"), options.Default())

	result := quietExecutor().Run(context.Background(), args, f.files, f.bc)
	if result.Outcome != batch.OutcomeAborted {
		t.Fatalf("outcome = %s", result.Outcome)
	}
	if !errors.Is(result.Err, batch.ErrExecutableMissing) || !errors.Is(result.Err, services.ErrExternalTool) {
		t.Fatalf("err = %v", result.Err)
	}
	if services.ExitCode(result.Err) != services.ExitExternalTool {
		t.Fatalf("exit code = %d", services.ExitCode(result.Err))
	}
	if got := f.bc.Tracker.Counts(); got != (batch.Counts{Pending: 2}) {
		t.Fatalf("all files should stay pending, counts = %+v", got)
	}
	if result.Attempted != 0 {
		t.Fatalf("attempted = %d", result.Attempted)
	}
}

func TestRunPassesArgvInOrder(t *testing.T) {
	f := newFixture(t, "a.avi")
	logPath := filepath.Join(t.TempDir(), "argv.log")
	t.Setenv("AVSUB_ARGV_LOG", logPath)
	args := stubArgs(t, testsupport.RecordingFFmpegScript)
	before := append(command.Args(nil), args...)

	quietExecutor().Run(context.Background(), args, f.files, f.bc)

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read argv log: %v", err)
	}
	got := strings.Split(strings.TrimSuffix(string(data), "--\n"), "\n")
	got = got[:len(got)-1]
	dest, _ := f.bc.Tracker.Destination(f.files[0])
	want := append(append([]string(nil), before[1:]...), dest, "-i", f.files[0])
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("argv mismatch\n got: %q\nwant: %q", got, want)
	}
	if args.String() != before.String() {
		t.Fatal("Run must not mutate the prebuilt argument vector")
	}
}

func TestRunRejectsUntrackedFiles(t *testing.T) {
	f := newFixture(t, "a.avi")
	args := stubArgs(t, testsupport.CopyingFFmpegScript)
	result := quietExecutor().Run(context.Background(), args, []string{"other.avi"}, f.bc)
	if !errors.Is(result.Err, batch.ErrUnknownJob) || !errors.Is(result.Err, services.ErrValidation) {
		t.Fatalf("err = %v", result.Err)
	}
	result = quietExecutor().Run(context.Background(), nil, f.files, f.bc)
	if !errors.Is(result.Err, services.ErrValidation) {
		t.Fatalf("empty args err = %v", result.Err)
	}
}

func TestRunRejectsRepeatedSources(t *testing.T) {
	f := newFixture(t, "corrupt.avi", "b.avi")
	argvLog := filepath.Join(t.TempDir(), "argv.log")
	t.Setenv("AVSUB_ARGV_LOG", argvLog)
	args := stubArgs(t, testsupport.RecordingFFmpegScript)

	files := []string{f.files[0], f.files[1], f.files[0]}
	result := quietExecutor().Run(context.Background(), args, files, f.bc)
	if !errors.Is(result.Err, batch.ErrDuplicateJob) || !errors.Is(result.Err, services.ErrValidation) {
		t.Fatalf("err = %v", result.Err)
	}
	if result.Outcome != batch.OutcomeAborted || result.Attempted != 0 {
		t.Fatalf("result = %+v", result)
	}
	if _, err := os.Stat(argvLog); !os.IsNotExist(err) {
		t.Fatalf("transcoder must not run for a rejected batch: %v", err)
	}
	if got := f.bc.Tracker.Counts(); got != (batch.Counts{Pending: 2}) {
		t.Fatalf("counts = %+v", got)
	}
}
