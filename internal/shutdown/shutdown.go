package shutdown

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"

	"avsub/internal/logging"
	"avsub/internal/services"
)

// ErrUnsupportedPlatform is returned on platforms without a known shutdown command.
var ErrUnsupportedPlatform = errors.New("cannot schedule shutdown on this platform")

// Runner executes a command, returning its combined output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Plan is a resolved shutdown invocation.
type Plan struct {
	Argv    []string
	Cancel  string
	Message string
	At      time.Time
}

// Scheduler schedules a machine power-off after a batch.
type Scheduler struct {
	GOOS   string
	Now    func() time.Time
	Run    Runner
	Logger *slog.Logger
}

// New returns a scheduler for the running platform.
func New(logger *slog.Logger) *Scheduler {
	return &Scheduler{
		GOOS:   runtime.GOOS,
		Now:    time.Now,
		Run:    execRunner,
		Logger: logging.NewComponentLogger(logger, "shutdown"),
	}
}

// Build resolves the command for a delay in seconds. Negative delays are
// treated as their absolute value.
func (s *Scheduler) Build(seconds int) (Plan, error) {
	if seconds < 0 {
		seconds = -seconds
	}
	at := s.now().Add(time.Duration(seconds) * time.Second)
	message := fmt.Sprintf("avsub has scheduled a shutdown for %s.", at.Format(time.TimeOnly))
	sec := strconv.Itoa(seconds)

	switch s.goos() {
	case "linux":
		return Plan{Argv: []string{"shutdown", "-P", sec, message}, Cancel: "shutdown -c", Message: message, At: at}, nil
	case "windows":
		return Plan{Argv: []string{"shutdown", "/t", sec, "/s", "/c", message}, Cancel: "shutdown /a", Message: message, At: at}, nil
	default:
		return Plan{}, fmt.Errorf("%w: %s", ErrUnsupportedPlatform, s.goos())
	}
}

// Schedule builds and runs the shutdown command. Failures are logged and
// returned; callers treat them as non-fatal.
func (s *Scheduler) Schedule(ctx context.Context, seconds int) (Plan, error) {
	logger := logging.WithContext(ctx, s.logger())
	plan, err := s.Build(seconds)
	if err != nil {
		logging.WarnWithContext(logger, "shutdown not scheduled", "shutdown_unsupported",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "power off the machine manually"),
			logging.String(logging.FieldImpact, "machine stays on"),
		)
		return Plan{}, err
	}

	out, err := s.run(ctx, plan.Argv[0], plan.Argv[1:]...)
	if err != nil {
		wrapped := services.Wrap(services.ErrExternalTool, "shutdown", "schedule", strings.TrimSpace(string(out)), err)
		logging.WarnWithContext(logger, "shutdown command failed", "shutdown_failed",
			logging.Error(wrapped),
			logging.String(logging.FieldErrorHint, "check that the shutdown command is installed and permitted"),
			logging.String(logging.FieldImpact, "machine stays on"),
		)
		return plan, wrapped
	}

	logger.Info(plan.Message+" Use '"+plan.Cancel+"' to cancel.",
		logging.String(logging.FieldEventType, "shutdown_scheduled"),
		logging.Int("delay_seconds", absInt(seconds)),
	)
	return plan, nil
}

func (s *Scheduler) goos() string {
	if s.GOOS == "" {
		return runtime.GOOS
	}
	return s.GOOS
}

func (s *Scheduler) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *Scheduler) run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if s.Run == nil {
		return execRunner(ctx, name, args...)
	}
	return s.Run(ctx, name, args...)
}

func (s *Scheduler) logger() *slog.Logger {
	if s.Logger == nil {
		return logging.NewNop()
	}
	return s.Logger
}

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()
	return out.Bytes(), err
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
