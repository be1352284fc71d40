package main

import (
	"github.com/pistekit/ftlexport/internal/config"
	"github.com/spf13/cobra"
)

// NewAllCmd creates the all command.
func NewAllCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "all <tournament-url>...",
		Short: "Export every report type for one or more tournaments",
		Long: `All exports final results, pool sheets, bout orders, and the direct
elimination tableau for each tournament given.

Multiple tournaments share one browser session and export concurrently;
--concurrency bounds how many run at once. Each export drives its own
browser tabs, so high concurrency mostly buys contention.

Examples:
  # Everything for one tournament
  ftlexport all https://www.fencingtimelive.com/tournaments/eventSchedule/B2F78D0A6E5D

  # Several tournaments, two at a time
  ftlexport all --concurrency 2 <url> <url> <url>

  # Quiet run writing into a directory
  ftlexport all --quiet -o ./exports <url> <url>`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExportCmd(cmd, args, exportSelection{results: true, pools: true, tableau: true})
		},
	}

	addExportFlags(cmd)

	cmd.Flags().Int("concurrency", config.DefaultBatchSize,
		"Number of tournaments exported concurrently")

	return cmd
}
