package batch

import (
	"fmt"
	"strings"
)

// State is the lifecycle position of a single job.
type State string

const (
	StatePending   State = "pending"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

// Job pairs a source file with its computed destination.
type Job struct {
	Source      string
	Destination string
}

type trackedJob struct {
	destination string
	state       State
}

// Tracker owns the state of every job of a run. It has a single writer (the
// executor) and is read after the batch returns, so it does no locking.
type Tracker struct {
	order []string
	jobs  map[string]*trackedJob
}

// Counts summarises a partition.
type Counts struct {
	Pending   int
	Succeeded int
	Failed    int
}

// Total returns the number of tracked jobs.
func (c Counts) Total() int {
	return c.Pending + c.Succeeded + c.Failed
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{jobs: make(map[string]*trackedJob)}
}

// Add registers a job in the pending state.
func (t *Tracker) Add(job Job) error {
	if strings.TrimSpace(job.Source) == "" {
		return fmt.Errorf("add job: empty source")
	}
	if _, exists := t.jobs[job.Source]; exists {
		return fmt.Errorf("add job %q: already tracked", job.Source)
	}
	t.jobs[job.Source] = &trackedJob{destination: job.Destination, state: StatePending}
	t.order = append(t.order, job.Source)
	return nil
}

// AddAll registers every job, stopping at the first error.
func (t *Tracker) AddAll(jobs []Job) error {
	for _, job := range jobs {
		if err := t.Add(job); err != nil {
			return err
		}
	}
	return nil
}

// Destination returns the destination recorded for source.
func (t *Tracker) Destination(source string) (string, bool) {
	job, ok := t.jobs[source]
	if !ok {
		return "", false
	}
	return job.destination, true
}

// State returns the current state of source.
func (t *Tracker) State(source string) (State, bool) {
	job, ok := t.jobs[source]
	if !ok {
		return "", false
	}
	return job.state, true
}

// MarkSucceeded moves a pending job to succeeded.
func (t *Tracker) MarkSucceeded(source string) error {
	return t.transition(source, StateSucceeded)
}

// MarkFailed moves a pending job to failed.
func (t *Tracker) MarkFailed(source string) error {
	return t.transition(source, StateFailed)
}

func (t *Tracker) transition(source string, to State) error {
	job, ok := t.jobs[source]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownJob, source)
	}
	if job.state != StatePending {
		return fmt.Errorf("%w: %s is %s, cannot become %s", ErrInvalidTransition, source, job.state, to)
	}
	job.state = to
	return nil
}

// Pending returns jobs that were never completed, in insertion order.
func (t *Tracker) Pending() []Job { return t.filter(StatePending) }

// Succeeded returns jobs whose transcoder exited cleanly, in insertion order.
func (t *Tracker) Succeeded() []Job { return t.filter(StateSucceeded) }

// Failed returns jobs whose transcoder exited with an error, in insertion order.
func (t *Tracker) Failed() []Job { return t.filter(StateFailed) }

// Jobs returns every job in insertion order.
func (t *Tracker) Jobs() []Job {
	out := make([]Job, 0, len(t.order))
	for _, src := range t.order {
		out = append(out, Job{Source: src, Destination: t.jobs[src].destination})
	}
	return out
}

// Counts returns the size of each partition.
func (t *Tracker) Counts() Counts {
	var c Counts
	for _, job := range t.jobs {
		switch job.state {
		case StatePending:
			c.Pending++
		case StateSucceeded:
			c.Succeeded++
		case StateFailed:
			c.Failed++
		}
	}
	return c
}

// Len returns the number of tracked jobs.
func (t *Tracker) Len() int {
	return len(t.order)
}

func (t *Tracker) filter(state State) []Job {
	var out []Job
	for _, src := range t.order {
		job := t.jobs[src]
		if job.state == state {
			out = append(out, Job{Source: src, Destination: job.destination})
		}
	}
	return out
}
