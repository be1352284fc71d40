// Package main provides the entry point for the ftlexport CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for ftlexport.
// The root command itself runs the default export: final results for
// every event of one tournament.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ftlexport <tournament-url>",
		Short: "Export FencingTimeLive tournament results to CSV",
		Long: `ftlexport exports fencing tournament results from FencingTimeLive
(fencingtimelive.com) to CSV files.

The site builds its pages client-side, so ftlexport drives a headless
Chrome session, waits for the tables to populate, and extracts the data.
The root command exports final results for every event of a tournament;
the pools, tableau, and all subcommands cover the other report types.

Examples:
  # Export final results for every event of a tournament
  ftlexport https://www.fencingtimelive.com/tournaments/eventSchedule/B2F78D0A6E5D

  # Export pool sheets and bout orders
  ftlexport pools https://www.fencingtimelive.com/tournaments/eventSchedule/B2F78D0A6E5D

  # Export everything for several tournaments concurrently
  ftlexport all --concurrency 2 <url> <url>

  # Write CSVs to a directory and skip the stdout summary
  ftlexport -o ./exports --quiet <url>

  # Review past exports
  ftlexport history`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExportCmd(cmd, args, exportSelection{results: true})
		},
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// The root command doubles as the results exporter
	addExportFlags(cmd)

	// Add subcommands
	cmd.AddCommand(NewPoolsCmd())
	cmd.AddCommand(NewTableauCmd())
	cmd.AddCommand(NewAllCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
