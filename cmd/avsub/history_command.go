package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"avsub/internal/history"
	"avsub/internal/report"
	"avsub/internal/services"
)

const defaultHistoryLimit = 20

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [RUN_ID]",
		Short: "List recent runs or show the files of one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.History.Enabled {
				fmt.Fprintln(cmd.OutOrStdout(), "Run history is disabled (history.enabled = false).")
				return nil
			}
			store, err := history.Open(cfg.HistoryPath())
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			if len(args) == 0 {
				runs, err := store.ListRuns(cmd.Context(), limit)
				if err != nil {
					return fmt.Errorf("list runs: %w", err)
				}
				return report.WriteRuns(out, runs)
			}

			id := strings.TrimSpace(args[0])
			run, files, err := findRun(cmd, store, id)
			if err != nil {
				return err
			}
			return report.WriteRunDetail(out, *run, files)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", defaultHistoryLimit, "Number of runs to list")
	return cmd
}

// findRun resolves a full run ID or the short prefix printed by the list view.
func findRun(cmd *cobra.Command, store *history.Store, id string) (*history.Run, []history.File, error) {
	run, files, err := store.GetRun(cmd.Context(), id)
	if err == nil {
		return run, files, nil
	}
	if !errors.Is(err, services.ErrNotFound) {
		return nil, nil, fmt.Errorf("load run: %w", err)
	}
	runs, listErr := store.ListRuns(cmd.Context(), 0)
	if listErr != nil {
		return nil, nil, fmt.Errorf("list runs: %w", listErr)
	}
	var match string
	for _, candidate := range runs {
		if strings.HasPrefix(candidate.ID, id) {
			if match != "" {
				return nil, nil, services.Wrap(services.ErrValidation, "history", "lookup", fmt.Sprintf("run id %q is ambiguous", id), nil)
			}
			match = candidate.ID
		}
	}
	if match == "" {
		return nil, nil, err
	}
	return store.GetRun(cmd.Context(), match)
}
