package batch

import (
	"errors"
	"fmt"

	"avsub/internal/services"
)

var (
	// ErrExecutableMissing marks a transcoder that could not be started. It
	// aborts the remainder of the batch.
	ErrExecutableMissing = errors.New("transcoder executable unavailable")
	// ErrInvalidTransition marks an attempt to move a job out of a terminal state.
	ErrInvalidTransition = errors.New("invalid job state transition")
	// ErrUnknownJob marks a source that was never added to the tracker.
	ErrUnknownJob = errors.New("unknown job")
	// ErrDuplicateJob marks a source listed more than once in a single run.
	ErrDuplicateJob = errors.New("duplicate job")
)

func executableMissing(binary string, err error) error {
	return services.Wrap(services.ErrExternalTool, "batch", "start "+binary, "",
		fmt.Errorf("%w: %w", ErrExecutableMissing, err))
}
