package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"avsub/internal/services"
)

// Run is one recorded batch invocation.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	OutputDir  string
	Extension  string
	Command    string
	// Outcome is empty while the run is in progress or if it crashed.
	Outcome   string
	Attempted int
	Skipped   int
	Succeeded int
	Failed    int
	Pending   int
	Error     string
}

// Finished reports whether FinishRun was recorded for the run.
func (r Run) Finished() bool {
	return r.Outcome != ""
}

// File is the final state of one source within a run.
type File struct {
	Position    int
	Source      string
	Destination string
	State       string
}

// StartRun inserts a run row before any file is processed.
func (s *Store) StartRun(ctx context.Context, run Run) error {
	if strings.TrimSpace(run.ID) == "" {
		return errors.New("start run: id is required")
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO runs (id, started_at, output_dir, extension, command) VALUES (?, ?, ?, ?, ?)`,
			run.ID,
			formatTime(run.StartedAt),
			run.OutputDir,
			run.Extension,
			run.Command,
		)
		if err != nil {
			return fmt.Errorf("insert run: %w", err)
		}
		return nil
	})
}

// FinishRun stores the outcome of a run together with every file's state.
// Counts are derived from files.
func (s *Store) FinishRun(ctx context.Context, run Run, files []File) error {
	if run.FinishedAt.IsZero() {
		run.FinishedAt = time.Now()
	}
	run.Succeeded, run.Failed, run.Pending = 0, 0, 0
	for _, f := range files {
		switch f.State {
		case "succeeded":
			run.Succeeded++
		case "failed":
			run.Failed++
		default:
			run.Pending++
		}
	}

	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin finish tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		res, err := tx.ExecContext(ctx,
			`UPDATE runs SET finished_at = ?, outcome = ?, attempted = ?, skipped = ?,
                succeeded = ?, failed = ?, pending = ?, error_message = ?
             WHERE id = ?`,
			formatTime(run.FinishedAt),
			run.Outcome,
			run.Attempted,
			run.Skipped,
			run.Succeeded,
			run.Failed,
			run.Pending,
			nullableString(run.Error),
			run.ID,
		)
		if err != nil {
			return fmt.Errorf("update run: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return services.Wrap(services.ErrNotFound, "history", "finish run", run.ID, nil)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM run_files WHERE run_id = ?`, run.ID); err != nil {
			return fmt.Errorf("clear run files: %w", err)
		}
		for i, f := range files {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO run_files (run_id, position, source, destination, state) VALUES (?, ?, ?, ?, ?)`,
				run.ID, i+1, f.Source, f.Destination, f.State,
			); err != nil {
				return fmt.Errorf("insert run file: %w", err)
			}
		}
		return tx.Commit()
	})
}

const runColumns = "id, started_at, finished_at, output_dir, extension, command, outcome, attempted, skipped, succeeded, failed, pending, error_message"

// ListRuns returns the most recent runs first. A non-positive limit returns
// every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, id DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// GetRun returns a run and its files. Unknown IDs yield services.ErrNotFound.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, []File, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, services.Wrap(services.ErrNotFound, "history", "get run", id, nil)
	}
	if err != nil {
		return nil, nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT position, source, destination, state FROM run_files WHERE run_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, nil, fmt.Errorf("list run files: %w", err)
	}
	defer rows.Close()

	var files []File
	for rows.Next() {
		var f File
		if err := rows.Scan(&f.Position, &f.Source, &f.Destination, &f.State); err != nil {
			return nil, nil, fmt.Errorf("scan run file: %w", err)
		}
		files = append(files, f)
	}
	return run, files, rows.Err()
}

// Prune deletes runs started before cutoff and returns how many were removed.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	var removed int64
	err := retryOnBusy(ctx, func() error {
		res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE started_at < ?`, formatTime(cutoff))
		if err != nil {
			return fmt.Errorf("prune runs: %w", err)
		}
		removed, _ = res.RowsAffected()
		return nil
	})
	return removed, err
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		run         Run
		startedRaw  string
		finishedRaw sql.NullString
		outcome     sql.NullString
		errMsg      sql.NullString
	)
	if err := scanner.Scan(
		&run.ID,
		&startedRaw,
		&finishedRaw,
		&run.OutputDir,
		&run.Extension,
		&run.Command,
		&outcome,
		&run.Attempted,
		&run.Skipped,
		&run.Succeeded,
		&run.Failed,
		&run.Pending,
		&errMsg,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan run: %w", err)
	}
	run.StartedAt = parseTime(startedRaw)
	if finishedRaw.Valid {
		run.FinishedAt = parseTime(finishedRaw.String)
	}
	run.Outcome = outcome.String
	run.Error = errMsg.String
	return &run, nil
}

// Fixed width so that timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(raw string) time.Time {
	t, err := time.Parse(timeLayout, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}
