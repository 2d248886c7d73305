package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"avsub/internal/history"
)

const shortIDLength = 8

// WriteRuns renders recent runs as a table.
func WriteRuns(w io.Writer, runs []history.Run) error {
	if len(runs) == 0 {
		_, err := io.WriteString(w, "No runs recorded.\n")
		return err
	}
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			ShortID(run.ID),
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			formatDuration(run),
			OutcomeLabel(run.Outcome),
			strconv.Itoa(run.Succeeded),
			strconv.Itoa(run.Failed),
			strconv.Itoa(run.Pending),
			run.OutputDir,
		})
	}
	headers := []string{"Run", "Started", "Duration", "Outcome", "Done", "Failed", "Pending", "Output"}
	aligns := []Alignment{AlignLeft, AlignLeft, AlignRight, AlignLeft, AlignRight, AlignRight, AlignRight, AlignLeft}
	_, err := fmt.Fprintln(w, RenderTable(headers, rows, aligns))
	return err
}

// WriteRunDetail renders a single run followed by its files.
func WriteRunDetail(w io.Writer, run history.Run, files []history.File) error {
	if _, err := fmt.Fprintf(w, "Run %s: %s\n  Output:  %s\n  Command: %s\n",
		run.ID, OutcomeLabel(run.Outcome), run.OutputDir, run.Command); err != nil {
		return err
	}
	if run.Error != "" {
		if _, err := fmt.Fprintf(w, "  Error:   %s\n", run.Error); err != nil {
			return err
		}
	}
	rows := make([][]string, 0, len(files))
	for _, f := range files {
		rows = append(rows, []string{strconv.Itoa(f.Position), OutcomeLabel(f.State), f.Source, f.Destination})
	}
	if len(rows) == 0 {
		return nil
	}
	_, err := fmt.Fprintln(w, RenderTable([]string{"#", "State", "Source", "Destination"}, rows,
		[]Alignment{AlignRight}))
	return err
}

// ShortID truncates a run ID for display.
func ShortID(id string) string {
	if len(id) <= shortIDLength {
		return id
	}
	return id[:shortIDLength]
}

func formatDuration(run history.Run) string {
	if run.FinishedAt.IsZero() || run.StartedAt.IsZero() {
		return "-"
	}
	return run.FinishedAt.Sub(run.StartedAt).Round(time.Second).String()
}
