package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"avsub/internal/deps"
	"avsub/internal/preflight"
	"avsub/internal/report"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check ffmpeg and the folders avsub writes to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := report.ShouldColorize(out)

			var lines []string
			lines = append(lines, report.SectionHeader("Dependencies", colorize)...)
			for _, status := range deps.CheckBinaries([]deps.Requirement{deps.Transcoder(cfg.FFmpeg.Binary)}) {
				if !status.Available {
					lines = append(lines, report.StatusLine(status.Name, report.KindError, status.Detail, colorize))
					continue
				}
				detail := status.Path
				if v, err := deps.Version(cmd.Context(), status.Path); err == nil {
					detail = fmt.Sprintf("%s (%s)", status.Path, v)
				}
				lines = append(lines, report.StatusLine(status.Name, report.KindOK, detail, colorize))
			}

			lines = append(lines, "")
			lines = append(lines, report.SectionHeader("Directories", colorize)...)
			for _, result := range preflight.RunAll(cfg, strings.TrimSpace(outputDir)) {
				if result.Name == deps.TranscoderName {
					continue
				}
				kind := report.KindOK
				if !result.Passed {
					kind = report.KindError
				}
				lines = append(lines, report.StatusLine(result.Name, kind, result.Detail, colorize))
			}

			lines = append(lines, "")
			lines = append(lines, report.SectionHeader("Configuration", colorize)...)
			historyKind, historyDetail := report.KindInfo, "disabled"
			if cfg.History.Enabled {
				historyKind, historyDetail = report.KindOK, cfg.HistoryPath()
			}
			lines = append(lines,
				report.StatusLine("History", historyKind, historyDetail, colorize),
				report.StatusLine("Remove failed", report.KindInfo, yesNo(cfg.Output.RemoveFailed), colorize),
				report.StatusLine("Log retention", report.KindInfo, fmt.Sprintf("%d days", cfg.Logging.RetentionDays), colorize),
			)

			fmt.Fprintln(out, strings.Join(lines, "\n"))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Also check this output folder")
	return cmd
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
