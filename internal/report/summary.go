package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"avsub/internal/batch"
)

const (
	labelPending   = "Not processed"
	labelFailed    = "Not completed"
	labelSucceeded = "Job completed"
)

var stateColors = map[batch.State]text.Colors{
	batch.StatePending:   {text.FgYellow},
	batch.StateFailed:    {text.FgRed},
	batch.StateSucceeded: {text.FgGreen},
}

// StateLabel returns the summary wording for a job state.
func StateLabel(state batch.State) string {
	switch state {
	case batch.StateSucceeded:
		return labelSucceeded
	case batch.StateFailed:
		return labelFailed
	default:
		return labelPending
	}
}

// OutcomeLabel title-cases an outcome keyword ("completed" -> "Completed").
// Empty outcomes read as "Unfinished".
func OutcomeLabel(outcome string) string {
	outcome = strings.TrimSpace(outcome)
	if outcome == "" {
		outcome = "unfinished"
	}
	return cases.Title(language.Und).String(outcome)
}

// CompletionLine returns "N out of M jobs completed." where M counts every
// tracked job and pending jobs count as failures.
func CompletionLine(counts batch.Counts) string {
	return fmt.Sprintf("%d out of %d jobs completed.", counts.Succeeded, counts.Total())
}

// WriteSummary renders the per-file table grouped pending, failed, then
// succeeded, followed by the completion line.
func WriteSummary(w io.Writer, tracker *batch.Tracker, colorize bool) error {
	var rows [][]string
	groups := []struct {
		state batch.State
		jobs  []batch.Job
	}{
		{batch.StatePending, tracker.Pending()},
		{batch.StateFailed, tracker.Failed()},
		{batch.StateSucceeded, tracker.Succeeded()},
	}
	for _, group := range groups {
		for _, job := range group.jobs {
			rows = append(rows, []string{
				paint(StateLabel(group.state), stateColors[group.state], colorize),
				job.Source,
				job.Destination,
			})
		}
	}

	var b strings.Builder
	if len(rows) > 0 {
		b.WriteString(RenderTable([]string{"Status", "Source", "Destination"}, rows, nil))
		b.WriteByte('\n')
	}
	b.WriteString(CompletionLine(tracker.Counts()))
	b.WriteByte('\n')
	_, err := io.WriteString(w, b.String())
	return err
}
