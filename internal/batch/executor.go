package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"avsub/internal/command"
	"avsub/internal/fileutil"
	"avsub/internal/logging"
	"avsub/internal/services"
)

// Outcome describes how a batch ended.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeCancelled Outcome = "cancelled"
	OutcomeAborted   Outcome = "aborted"
)

// Result summarises a Run. Per-file results live in the Tracker.
type Result struct {
	Outcome   Outcome
	Attempted int
	Skipped   int
	Elapsed   time.Duration
	// Err is set only when the batch aborted.
	Err error
}

// Progress reports the file about to be handled.
type Progress struct {
	Index       int
	Total       int
	Source      string
	Destination string
}

// Executor runs the transcoder once per file. The zero value discards the
// transcoder's output and logs nowhere.
type Executor struct {
	Stdout   io.Writer
	Stderr   io.Writer
	Logger   *slog.Logger
	Progress func(Progress)
}

// NewExecutor returns an executor that streams transcoder output to the
// terminal.
func NewExecutor(logger *slog.Logger) *Executor {
	return &Executor{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Logger: logging.NewComponentLogger(logger, "batch"),
	}
}

// Run applies args to each file in order, updating bc.Tracker. Every file
// must already be tracked and appear once. The loop stops before the next file once
// bc.Controller is stopped or ctx is done; an in-flight transcode is never
// interrupted by this check.
func (e *Executor) Run(ctx context.Context, args command.Args, files []string, bc *Context) Result {
	start := time.Now()
	logger := logging.WithContext(ctx, e.logger())

	if len(args) == 0 {
		return Result{Outcome: OutcomeAborted, Elapsed: time.Since(start),
			Err: services.Wrap(services.ErrValidation, "batch", "run", "empty argument vector", nil)}
	}
	seen := make(map[string]struct{}, len(files))
	for _, file := range files {
		if _, ok := bc.Tracker.Destination(file); !ok {
			return Result{Outcome: OutcomeAborted, Elapsed: time.Since(start),
				Err: services.Wrap(services.ErrValidation, "batch", "run", "", fmt.Errorf("%w: %s", ErrUnknownJob, file))}
		}
		// Each job gets at most one attempt per run.
		if _, dup := seen[file]; dup {
			return Result{Outcome: OutcomeAborted, Elapsed: time.Since(start),
				Err: services.Wrap(services.ErrValidation, "batch", "run", "", fmt.Errorf("%w: %s", ErrDuplicateJob, file))}
		}
		seen[file] = struct{}{}
	}

	result := Result{Outcome: OutcomeCompleted}
	total := len(files)

	for i, source := range files {
		if bc.Controller.Stopped() || ctx.Err() != nil {
			logger.Warn("batch interrupted; remaining files left unprocessed",
				logging.Int("remaining", total-i),
				logging.String(logging.FieldEventType, "batch_cancelled"),
			)
			result.Outcome = OutcomeCancelled
			break
		}

		destination, _ := bc.Tracker.Destination(source)
		fileLogger := logger.With(
			logging.Int(logging.FieldFileIndex, i+1),
			logging.Int(logging.FieldFileCount, total),
			logging.String("source", source),
		)
		fileLogger.Info(fmt.Sprintf("running [%d/%d] -> %q", i+1, total, source))
		if e.Progress != nil {
			e.Progress(Progress{Index: i + 1, Total: total, Source: source, Destination: destination})
		}

		// Also catches files that differ from an earlier one only by extension.
		if fileutil.Exists(destination) {
			fileLogger.Info("destination already exists; passing",
				logging.String("destination", destination),
				logging.String(logging.FieldEventType, "destination_exists"),
			)
			result.Skipped++
			continue
		}

		runErr := e.transcode(args, source, destination)
		var exitErr *exec.ExitError
		switch {
		case runErr == nil:
			result.Attempted++
			_ = bc.Tracker.MarkSucceeded(source)
			fileLogger.Info("transcode completed",
				logging.String("destination", destination),
				logging.String(logging.FieldEventType, "transcode_completed"),
			)
		case errors.As(runErr, &exitErr):
			result.Attempted++
			_ = bc.Tracker.MarkFailed(source)
			logging.WarnWithContext(fileLogger, "transcode failed", "transcode_failed",
				logging.Int("exit_code", exitErr.ExitCode()),
				logging.String("destination", destination),
				logging.String(logging.FieldErrorHint, "inspect the ffmpeg output above"),
				logging.String(logging.FieldImpact, "file marked failed; batch continues"),
			)
		default:
			result.Outcome = OutcomeAborted
			result.Err = executableMissing(args.Binary(), runErr)
			logging.ErrorWithContext(fileLogger, "transcoder could not be executed; exiting", "transcoder_missing",
				logging.Error(runErr),
				logging.String(logging.FieldErrorHint, "install ffmpeg or set ffmpeg.binary in the config"),
			)
		}
		if result.Outcome == OutcomeAborted {
			break
		}
	}

	result.Elapsed = time.Since(start)
	return result
}

func (e *Executor) transcode(args command.Args, source, destination string) error {
	argv := args.WithFiles(destination, source)
	// Stdin stays nil so ffmpeg reads the null device and never prompts.
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr
	return cmd.Run()
}

func (e *Executor) logger() *slog.Logger {
	if e.Logger == nil {
		return logging.NewNop()
	}
	return e.Logger
}
