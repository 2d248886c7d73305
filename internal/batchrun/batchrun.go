package batchrun

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"avsub/internal/batch"
	"avsub/internal/command"
	"avsub/internal/config"
	"avsub/internal/deps"
	"avsub/internal/fileutil"
	"avsub/internal/history"
	"avsub/internal/logging"
	"avsub/internal/options"
	"avsub/internal/preflight"
	"avsub/internal/report"
	"avsub/internal/services"
	"avsub/internal/shutdown"
)

// ErrOutputBusy marks an output folder already targeted by another run.
var ErrOutputBusy = errors.New("output folder is in use by another avsub run")

// Request is one invocation of the transcode command.
type Request struct {
	Options   options.OptionSet
	Extension string
	Files     []string
	OutputDir string
	// Subtitle is burned into the single input when Options.Burn is set.
	Subtitle string
	// Shutdown, when non-nil, schedules a power-off that many seconds after
	// the batch.
	Shutdown *int
}

// Options configures process-level behaviour of Run.
type Options struct {
	// LogLevel overrides logging.level from the config.
	LogLevel string
	Stdout   io.Writer
	Stderr   io.Writer
	// HandleSignals installs SIGINT/SIGTERM handlers that stop the batch
	// between files.
	HandleSignals bool
	Scheduler     *shutdown.Scheduler
}

// Outcome is what a run produced.
type Outcome struct {
	RunID   string
	LogPath string
	Args    command.Args
	Result  batch.Result
	Batch   *batch.Context
	// Removed lists failed outputs deleted after the batch.
	Removed  []string
	Shutdown *shutdown.Plan
}

// Run executes a complete batch: preflight, planning, transcoding, cleanup,
// summary, history, and the optional shutdown. The returned error is non-nil
// when the run could not start or the batch aborted; per-file failures are
// reported through the summary only.
func Run(ctx context.Context, cfg *config.Config, req Request, opts Options) (*Outcome, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "batchrun", "run", "config is required", nil)
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	stdout, stderr := opts.Stdout, opts.Stderr
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	if err := cfg.EnsureDirectories(); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "batchrun", "ensure directories", "", err)
	}

	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	logPath := logging.RunLogPath(cfg.Paths.LogDir, runID)
	level := cfg.Logging.Level
	if strings.TrimSpace(opts.LogLevel) != "" {
		level = opts.LogLevel
	}
	baseLogger, err := logging.New(logging.Options{
		Level:    level,
		Format:   cfg.Logging.Format,
		Console:  stderr,
		FilePath: logPath,
	})
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "batchrun", "init logger", "", err)
	}
	logger := logging.WithContext(ctx, logging.NewComponentLogger(baseLogger, "run"))
	logging.PruneRunLogs(logger, cfg.Paths.LogDir, logPath, cfg.Logging.RetentionDays)

	outputDir, err := filepath.Abs(req.OutputDir)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "batchrun", "resolve output", req.OutputDir, err)
	}
	if err := runPreflight(logger, cfg, outputDir); err != nil {
		return nil, err
	}

	lock, err := acquireLock(cfg.LockDir(), outputDir)
	if err != nil {
		return nil, err
	}
	defer func() { _ = lock.Unlock() }()

	jobs, err := batch.PlanDestinations(req.Files, outputDir, req.Extension)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "batchrun", "plan", "", err)
	}
	bc := batch.NewContext()
	if err := bc.Tracker.AddAll(jobs); err != nil {
		return nil, services.Wrap(services.ErrValidation, "batchrun", "plan", "", err)
	}
	sources := batch.Sources(jobs)

	args, style := command.BuildFor(cfg.FFmpeg.Binary, req.Options)
	args, cleanupSubtitle, err := applyBurn(logger, cfg, req, len(jobs), args, style)
	if err != nil {
		return nil, err
	}
	defer cleanupSubtitle()

	logger.Info("batch planned",
		logging.String(logging.FieldEventType, "batch_planned"),
		logging.Int(logging.FieldFileCount, len(jobs)),
		logging.String("output_dir", outputDir),
		logging.String("command", args.String()),
		logging.String("log_path", logPath),
	)

	store := openHistory(ctx, logger, cfg, history.Run{
		ID:        runID,
		OutputDir: outputDir,
		Extension: req.Extension,
		Command:   args.String(),
	})
	if store != nil {
		defer store.Close()
	}

	if opts.HandleSignals {
		stopSignals := watchSignals(logger, bc.Controller)
		defer stopSignals()
	}

	executor := batch.NewExecutor(baseLogger)
	executor.Stdout = stdout
	executor.Stderr = stderr
	result := executor.Run(services.WithStage(ctx, "batch"), args, sources, bc)

	outcome := &Outcome{RunID: runID, LogPath: logPath, Args: args, Result: result, Batch: bc}
	if cfg.Output.RemoveFailed {
		outcome.Removed = removeFailedOutputs(logger, bc.Tracker)
	}

	if err := report.WriteSummary(stdout, bc.Tracker, report.ShouldColorize(stdout)); err != nil {
		logger.Warn("summary could not be written", logging.Error(err))
	}

	counts := bc.Tracker.Counts()
	logger.Info("batch finished",
		logging.String(logging.FieldEventType, "batch_finished"),
		logging.String("outcome", string(result.Outcome)),
		logging.Int("succeeded", counts.Succeeded),
		logging.Int("failed", counts.Failed),
		logging.Int("pending", counts.Pending),
		logging.Int("skipped", result.Skipped),
		logging.Duration("elapsed", result.Elapsed),
	)

	if store != nil {
		finishHistory(ctx, logger, store, runID, result, bc.Tracker)
	}

	if req.Shutdown != nil {
		scheduler := opts.Scheduler
		if scheduler == nil {
			scheduler = shutdown.New(baseLogger)
		}
		if plan, err := scheduler.Schedule(ctx, *req.Shutdown); err == nil {
			outcome.Shutdown = &plan
		}
	}

	return outcome, result.Err
}

func validateRequest(req Request) error {
	if len(req.Files) == 0 {
		return services.Wrap(services.ErrValidation, "batchrun", "validate", "no input files given", nil)
	}
	if strings.TrimSpace(req.OutputDir) == "" {
		return services.Wrap(services.ErrValidation, "batchrun", "validate", "output folder is required", nil)
	}
	if strings.TrimSpace(req.Extension) == "" {
		return services.Wrap(services.ErrValidation, "batchrun", "validate", "extension is required (use - to keep it)", nil)
	}
	return req.Options.Validate()
}

// A missing transcoder is only logged: the executor reports it per run as
// an aborted batch with every file left pending.
func runPreflight(logger *slog.Logger, cfg *config.Config, outputDir string) error {
	for _, result := range preflight.Failed(preflight.RunAll(cfg, outputDir)) {
		if result.Name == deps.TranscoderName {
			logging.WarnWithContext(logger, "transcoder not found on PATH", "transcoder_unresolved",
				logging.String("detail", result.Detail),
				logging.String(logging.FieldErrorHint, "install ffmpeg or set ffmpeg.binary"),
				logging.String(logging.FieldImpact, "batch will abort before the first file"),
			)
			continue
		}
		return services.Wrap(services.ErrConfiguration, "batchrun", "preflight", result.Name+": "+result.Detail, nil)
	}
	return nil
}

func acquireLock(lockDir, outputDir string) (*flock.Flock, error) {
	if err := os.MkdirAll(lockDir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "batchrun", "lock", lockDir, err)
	}
	lockPath := filepath.Join(lockDir, lockName(outputDir))
	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "batchrun", "lock", lockPath, err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrValidation, "batchrun", "lock", outputDir, ErrOutputBusy)
	}
	return lock, nil
}

func applyBurn(logger *slog.Logger, cfg *config.Config, req Request, jobCount int, args command.Args, style command.Style) (command.Args, func(), error) {
	noop := func() {}
	subtitle := strings.TrimSpace(req.Subtitle)
	switch {
	case !req.Options.Burn:
		if subtitle != "" {
			logger.Warn("subtitle given without --burn; ignoring",
				logging.String(logging.FieldEventType, "subtitle_ignored"),
				logging.String("subtitle", subtitle),
			)
		}
		return args, noop, nil
	case jobCount != 1:
		logging.WarnWithContext(logger, "burning needs exactly one input file; continuing without subtitles", "burn_skipped",
			logging.Int(logging.FieldFileCount, jobCount),
			logging.String(logging.FieldImpact, "outputs are produced without burned subtitles"),
		)
		return args, noop, nil
	case subtitle == "":
		return nil, noop, services.Wrap(services.ErrValidation, "batchrun", "burn", "--burn needs --subtitle PATH", nil)
	}

	staged, err := command.StageSubtitle(subtitle, cfg.Paths.TempDir)
	if err != nil {
		return nil, noop, services.Wrap(services.ErrValidation, "batchrun", "stage subtitle", "", err)
	}
	logger.Info("subtitle staged for burning",
		logging.String(logging.FieldEventType, "subtitle_staged"),
		logging.String("subtitle", subtitle),
		logging.String("staged", staged),
		logging.String("style", style.String()),
	)
	cleanup := func() {
		if _, err := fileutil.RemoveFiles(staged); err != nil {
			logger.Debug("staged subtitle not removed", logging.Error(err))
		}
	}
	return args.WithSubtitle(staged, style), cleanup, nil
}

func openHistory(ctx context.Context, logger *slog.Logger, cfg *config.Config, run history.Run) *history.Store {
	if !cfg.History.Enabled {
		return nil
	}
	store, err := history.Open(cfg.HistoryPath())
	if err == nil {
		err = store.StartRun(ctx, run)
		if err != nil {
			_ = store.Close()
		}
	}
	if err != nil {
		logging.WarnWithContext(logger, "run history unavailable", "history_unavailable",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check paths.state_dir or set history.enabled = false"),
			logging.String(logging.FieldImpact, "this run will not appear in avsub history"),
		)
		return nil
	}
	return store
}

func finishHistory(ctx context.Context, logger *slog.Logger, store *history.Store, runID string, result batch.Result, tracker *batch.Tracker) {
	jobs := tracker.Jobs()
	files := make([]history.File, 0, len(jobs))
	for _, job := range jobs {
		state, _ := tracker.State(job.Source)
		files = append(files, history.File{Source: job.Source, Destination: job.Destination, State: string(state)})
	}
	run := history.Run{
		ID:         runID,
		FinishedAt: time.Now(),
		Outcome:    string(result.Outcome),
		Attempted:  result.Attempted,
		Skipped:    result.Skipped,
	}
	if result.Err != nil {
		run.Error = result.Err.Error()
	}
	if err := store.FinishRun(context.WithoutCancel(ctx), run, files); err != nil {
		logging.WarnWithContext(logger, "run history not updated", "history_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "run shows as unfinished in avsub history"),
		)
	}
}

func removeFailedOutputs(logger *slog.Logger, tracker *batch.Tracker) []string {
	failed := tracker.Failed()
	if len(failed) == 0 {
		return nil
	}
	paths := make([]string, 0, len(failed))
	for _, job := range failed {
		paths = append(paths, job.Destination)
	}
	removed, err := fileutil.RemoveFiles(paths...)
	if err != nil {
		logging.WarnWithContext(logger, "failed output not removed", "cleanup_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "delete the partial output manually"),
			logging.String(logging.FieldImpact, "a partial output remains in the output folder"),
		)
	}
	for _, path := range removed {
		logger.Info("removed partial output",
			logging.String(logging.FieldEventType, "partial_output_removed"),
			logging.String("destination", path),
		)
	}
	return removed
}

// watchSignals stops the batch on the first SIGINT/SIGTERM. Later signals
// are ignored.
func watchSignals(logger *slog.Logger, controller *batch.Controller) func() {
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case sig := <-ch:
				if controller.RequestStop() {
					logger.Warn("stop requested; finishing the current file",
						logging.String(logging.FieldEventType, "stop_requested"),
						logging.String("signal", sig.String()),
					)
				} else {
					logger.Debug("stop already requested", logging.String("signal", sig.String()))
				}
			case <-done:
				return
			}
		}
	}()
	return func() {
		signal.Stop(ch)
		close(done)
	}
}

// lockName derives a stable file name from the absolute output folder.
func lockName(outputDir string) string {
	sum := sha256.Sum256([]byte(outputDir))
	return fmt.Sprintf("%x.lock", sum[:8])
}
