package main

import (
	"github.com/spf13/cobra"
)

// NewTableauCmd creates the tableau command.
func NewTableauCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tableau <tournament-url>",
		Short: "Export direct elimination tableaus to CSV",
		Long: `Tableau exports the direct elimination bracket of every event in a
tournament: one CSV row per fencer per bracket slot, with the round
name, seed, bout score, and referee where the site shows them.

Bracket data is fetched from the table fragment endpoints when they
respond, and rendered in a wide browser viewport otherwise. Brackets
lay out horizontally, so a normal viewport clips fencer cells out of
the page. Events without a bracket are skipped.

Examples:
  # Export the bracket for every event
  ftlexport tableau https://www.fencingtimelive.com/tournaments/eventSchedule/B2F78D0A6E5D

  # Markdown summary instead of the console form
  ftlexport tableau --format markdown <url>`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExportCmd(cmd, args, exportSelection{tableau: true})
		},
	}

	addExportFlags(cmd)

	return cmd
}
