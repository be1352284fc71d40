package main

import (
	"github.com/spf13/cobra"
)

// NewPoolsCmd creates the pools command.
func NewPoolsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pools <tournament-url>",
		Short: "Export pool sheets and bout orders to CSV",
		Long: `Pools exports the pool round of every event in a tournament.

Two CSV files are produced:
- Pool sheets: one row per fencer per pool with the full scores grid
- Bout orders: one row per bout in piste order with positions and scores

Pool pages fill their pool list asynchronously, so the export polls each
pool round until its pool identifiers appear or the attempt budget runs
out. Events without a pool round are skipped.

Examples:
  # Export pool sheets and bout orders for every event
  ftlexport pools https://www.fencingtimelive.com/tournaments/eventSchedule/B2F78D0A6E5D

  # Write the CSVs to a specific directory
  ftlexport pools -o ./exports https://www.fencingtimelive.com/tournaments/eventSchedule/B2F78D0A6E5D`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExportCmd(cmd, args, exportSelection{pools: true})
		},
	}

	addExportFlags(cmd)

	return cmd
}
