package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pistekit/ftlexport/internal/config"
	"github.com/pistekit/ftlexport/internal/database"
	"github.com/pistekit/ftlexport/internal/model"
	"github.com/spf13/cobra"
)

// History output format names and table messages.
const (
	historyFormatTable    = "table"
	historyFormatJSON     = "json"
	historyFormatMarkdown = "markdown"
	noRowsMessage         = "No rows"
)

// NewHistoryCmd creates the history command.
// It reads the SQLite database the export commands write into.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [tournament-id]",
		Short: "Show export history from the local database",
		Long: `History lists past exports recorded in the SQLite history database.

Without arguments it lists the most recent exports across all
tournaments. With a tournament ID it lists only that tournament's
exports. Use --list-tournaments to see the known IDs.

Examples:
  # Most recent exports
  ftlexport history

  # Exports of one tournament
  ftlexport history B2F78D0A6E5D

  # Every tournament ever exported
  ftlexport history --list-tournaments

  # Events recorded for a tournament
  ftlexport history --events B2F78D0A6E5D

  # Everything stored about one export, by ID
  ftlexport history --id 5

  # The most recent stored export of a tournament
  ftlexport history --latest B2F78D0A6E5D

  # Markdown instead of the table
  ftlexport history --format markdown`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	// Listing flags
	cmd.Flags().IntP("limit", "n", 20,
		"Maximum number of exports to list")
	cmd.Flags().BoolP("list-tournaments", "L", false,
		"List all tournaments in the database")
	cmd.Flags().BoolP("events", "e", false,
		"List the events recorded for the given tournament ID")

	// Detail flags
	cmd.Flags().Int64P("id", "i", 0,
		"Show one export by ID (use the listing to see available IDs)")
	cmd.Flags().BoolP("latest", "l", false,
		"Show the most recent export of the given tournament ID")

	// Output flags
	cmd.Flags().String("format", historyFormatTable,
		"Output format: table, json, or markdown")
	cmd.Flags().String("db", "",
		"History database path (default: ftlexport.db in the XDG data directory)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	switch format {
	case historyFormatTable, historyFormatJSON, historyFormatMarkdown:
	default:
		return fmt.Errorf("unknown format %q (want table, json, or markdown)", format)
	}

	dbPath, err := cmd.Flags().GetString("db")
	if err != nil {
		return err
	}
	if dbPath == "" {
		dbPath = filepath.Join(config.XDGDataDir(), config.DatabaseFileName)
	}

	db, err := database.Open(dbPath, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	// Handle --list-tournaments flag
	listTournaments, err := cmd.Flags().GetBool("list-tournaments")
	if err != nil {
		return err
	}
	if listTournaments {
		return listExportedTournaments(ctx, db)
	}

	// Handle --events flag (requires a tournament ID argument)
	listEvents, err := cmd.Flags().GetBool("events")
	if err != nil {
		return err
	}
	if listEvents {
		if len(args) == 0 {
			return errors.New("tournament ID is required with --events (use --list-tournaments to see available IDs)")
		}
		return listTournamentEvents(ctx, db, args[0])
	}

	// Handle --id flag
	exportID, err := cmd.Flags().GetInt64("id")
	if err != nil {
		return err
	}
	if exportID > 0 {
		exportReport, err := db.ReportByID(ctx, exportID)
		if err != nil {
			return fmt.Errorf("failed to load export %d: %w", exportID, err)
		}
		if exportReport == nil {
			return fmt.Errorf("export with ID %d not found", exportID)
		}
		return showExportDetail(exportReport, format)
	}

	// Handle --latest flag (requires a tournament ID argument)
	latest, err := cmd.Flags().GetBool("latest")
	if err != nil {
		return err
	}
	if latest {
		if len(args) == 0 {
			return errors.New("tournament ID is required with --latest (use --list-tournaments to see available IDs)")
		}
		exportReport, err := db.LatestReport(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to load latest export: %w", err)
		}
		if exportReport == nil {
			return fmt.Errorf("no exports found for %s", args[0])
		}
		return showExportDetail(exportReport, format)
	}

	// Default: list exports, either for one tournament or across all
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	var records []database.ExportRecord
	var heading string
	if len(args) == 1 {
		records, err = db.ExportsForTournament(ctx, args[0])
		heading = fmt.Sprintf("Export history for %s", args[0])
	} else {
		records, err = db.RecentExports(ctx, limit)
		heading = "Recent exports"
	}
	if err != nil {
		return fmt.Errorf("failed to read export history: %w", err)
	}
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}

	return outputHistory(records, heading, format)
}

// listExportedTournaments lists every tournament with at least one
// recorded export.
func listExportedTournaments(ctx context.Context, db *database.HistoryDB) error {
	tournaments, err := db.ListTournaments(ctx)
	if err != nil {
		return fmt.Errorf("failed to list tournaments: %w", err)
	}

	if len(tournaments) == 0 {
		fmt.Println("No exports found in the database.")
		fmt.Println("\nUse 'ftlexport <tournament-url>' to export a tournament.")
		return nil
	}

	fmt.Printf("Exported tournaments (%d):\n\n", len(tournaments))
	fmt.Printf("  %-14s  %-32s  %-20s  %s\n", "ID", "Name", "Last Export", "Exports")
	fmt.Println("  " + strings.Repeat("-", 80))
	for _, tournament := range tournaments {
		fmt.Printf("  %-14s  %-32s  %-20s  %d\n",
			tournament.TournamentID,
			truncateName(tournament.Name, 32),
			tournament.LastExport.Format("2006-01-02 15:04:05"),
			tournament.ExportCount,
		)
	}
	fmt.Println("\nUse 'ftlexport history <tournament-id>' to see one tournament's exports.")

	return nil
}

// listTournamentEvents lists the events recorded for one tournament.
func listTournamentEvents(ctx context.Context, db *database.HistoryDB, tournamentID string) error {
	events, err := db.EventsForTournament(ctx, tournamentID)
	if err != nil {
		return fmt.Errorf("failed to list events: %w", err)
	}

	if len(events) == 0 {
		fmt.Printf("No events recorded for %s\n", tournamentID)
		fmt.Println("\nExport the tournament first; its events are recorded alongside the rows.")
		return nil
	}

	fmt.Printf("Events for %s (%d):\n\n", tournamentID, len(events))
	fmt.Printf("  %-44s  %-12s  %-8s  %s\n", "Event", "Level", "Sex", "Weapon")
	fmt.Println("  " + strings.Repeat("-", 76))
	for _, event := range events {
		fmt.Printf("  %-44s  %-12s  %-8s  %s\n",
			truncateName(event.Name, 44), event.Level, event.Sex, event.Weapon)
	}

	return nil
}

// exportListEntry is the JSON form of one history listing row.
type exportListEntry struct {
	// ID is the export's database row ID.
	ID int64 `json:"id"`

	// TournamentID identifies the tournament on FencingTimeLive.
	TournamentID string `json:"tournament_id"`

	// Tournament is the tournament name at export time.
	Tournament string `json:"tournament"`

	// Timestamp is when the export ran.
	Timestamp time.Time `json:"timestamp"`

	// Duration is the export's wall time.
	Duration time.Duration `json:"duration"`

	// EventCount is the number of events on the schedule.
	EventCount int `json:"event_count"`

	// ResultRows, PoolSheetRows, BoutRows, and TableauRows count the
	// extracted rows per report kind.
	ResultRows    int `json:"result_rows"`
	PoolSheetRows int `json:"pool_sheet_rows"`
	BoutRows      int `json:"bout_rows"`
	TableauRows   int `json:"tableau_rows"`

	// OutputFiles lists the CSV files the export wrote.
	OutputFiles []string `json:"output_files,omitempty"`

	// Error is the failure message when the export aborted.
	Error string `json:"error,omitempty"`
}

// outputHistory renders an export listing in the requested format.
func outputHistory(records []database.ExportRecord, heading, format string) error {
	switch format {
	case historyFormatJSON:
		return outputHistoryJSON(records)
	case historyFormatMarkdown:
		return outputHistoryMarkdown(records, heading)
	default:
		return outputHistoryTable(records, heading)
	}
}

// outputHistoryTable renders the listing as a plain text table.
func outputHistoryTable(records []database.ExportRecord, heading string) error {
	if len(records) == 0 {
		fmt.Println("No exports found.")
		fmt.Println("\nUse 'ftlexport <tournament-url>' to export a tournament.")
		return nil
	}

	fmt.Printf("%s (%d exports):\n\n", heading, len(records))
	fmt.Printf("  %-6s  %-20s  %-28s  %-7s  %-20s  %s\n",
		"ID", "Date", "Tournament", "Events", "Rows", "Status")
	fmt.Println("  " + strings.Repeat("-", 95))

	for _, record := range records {
		fmt.Printf("  %-6d  %-20s  %-28s  %-7d  %-20s  %s\n",
			record.ID,
			record.Timestamp.Format("2006-01-02 15:04:05"),
			truncateName(record.Tournament, 28),
			record.EventCount,
			formatRowCounts(record),
			formatStatus(record),
		)
	}

	fmt.Println("\nUse 'ftlexport history --id <id>' to see everything stored for one export.")

	return nil
}

// outputHistoryJSON renders the listing as a JSON array.
func outputHistoryJSON(records []database.ExportRecord) error {
	entries := make([]exportListEntry, 0, len(records))
	for _, record := range records {
		entries = append(entries, exportListEntry{
			ID:            record.ID,
			TournamentID:  record.TournamentID,
			Tournament:    record.Tournament,
			Timestamp:     record.Timestamp,
			Duration:      record.Duration,
			EventCount:    record.EventCount,
			ResultRows:    record.ResultRows,
			PoolSheetRows: record.PoolSheetRows,
			BoutRows:      record.BoutRows,
			TableauRows:   record.TableauRows,
			OutputFiles:   record.OutputFiles,
			Error:         record.Error,
		})
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(entries)
}

// outputHistoryMarkdown renders the listing as a Markdown table.
func outputHistoryMarkdown(records []database.ExportRecord, heading string) error {
	fmt.Printf("# %s\n\n", heading)

	if len(records) == 0 {
		fmt.Println("No exports found.")
		return nil
	}

	fmt.Println("| ID | Date | Tournament | Events | Rows | Status |")
	fmt.Println("|----|------|------------|--------|------|--------|")
	for _, record := range records {
		fmt.Printf("| %d | %s | %s | %d | %s | %s |\n",
			record.ID,
			record.Timestamp.Format("2006-01-02 15:04"),
			record.Tournament,
			record.EventCount,
			formatRowCounts(record),
			formatStatus(record),
		)
	}

	return nil
}

// formatRowCounts formats the per-kind row counts into a compact string.
func formatRowCounts(record database.ExportRecord) string {
	var parts []string
	if record.ResultRows > 0 {
		parts = append(parts, fmt.Sprintf("R:%d", record.ResultRows))
	}
	if record.PoolSheetRows > 0 {
		parts = append(parts, fmt.Sprintf("P:%d", record.PoolSheetRows))
	}
	if record.BoutRows > 0 {
		parts = append(parts, fmt.Sprintf("B:%d", record.BoutRows))
	}
	if record.TableauRows > 0 {
		parts = append(parts, fmt.Sprintf("T:%d", record.TableauRows))
	}

	if len(parts) == 0 {
		return noRowsMessage
	}
	return strings.Join(parts, " ")
}

// formatStatus formats a record's outcome for display.
func formatStatus(record database.ExportRecord) string {
	if record.Succeeded() {
		return "OK"
	}
	return "FAILED: " + record.Error
}

// truncateName shortens a name to fit a table column.
func truncateName(name string, maxLen int) string {
	if len(name) <= maxLen {
		return name
	}
	if maxLen <= 3 {
		return name[:maxLen]
	}
	return name[:maxLen-3] + "..."
}

// showExportDetail prints everything stored about one export.
func showExportDetail(exportReport *model.ExportReport, format string) error {
	switch format {
	case historyFormatJSON:
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(exportReport)
	case historyFormatMarkdown:
		return outputDetailMarkdown(exportReport)
	default:
		return outputDetailText(exportReport)
	}
}

// outputDetailText prints the stored export in human-readable text form.
func outputDetailText(exportReport *model.ExportReport) error {
	name := exportReport.Tournament.Name
	if name == "" {
		name = model.UnknownTournamentName
	}

	fmt.Printf("Export: %s\n", name)
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("\nTournament URL: %s\n", exportReport.Tournament.URL)
	fmt.Printf("Exported at:    %s\n", exportReport.StartedAt.Format("2006-01-02 15:04:05"))
	if exportReport.ErrorMessage != "" {
		fmt.Printf("Status:         FAILED (%s)\n", exportReport.ErrorMessage)
	} else {
		fmt.Printf("Status:         OK\n")
	}

	fmt.Println("\nRow Summary:")
	fmt.Printf("  %-12s  %d\n", "Results", len(exportReport.Results))
	fmt.Printf("  %-12s  %d\n", "Pool sheets", len(exportReport.PoolSheets))
	fmt.Printf("  %-12s  %d\n", "Bout orders", len(exportReport.PoolBouts))
	fmt.Printf("  %-12s  %d\n", "Tableau", len(exportReport.TableauEntries))

	if len(exportReport.Tournament.Events) > 0 {
		fmt.Printf("\nEvents (%d):\n", len(exportReport.Tournament.Events))
		for _, event := range exportReport.Tournament.Events {
			if event.Time != "" {
				fmt.Printf("  • %s (%s)\n", event.Name, event.Time)
			} else {
				fmt.Printf("  • %s\n", event.Name)
			}
		}
	}

	if len(exportReport.OutputFiles) > 0 {
		fmt.Printf("\nFiles written (%d):\n", len(exportReport.OutputFiles))
		for _, file := range exportReport.OutputFiles {
			fmt.Printf("  %s\n", file)
		}
	}

	return nil
}

// outputDetailMarkdown prints the stored export in Markdown form.
func outputDetailMarkdown(exportReport *model.ExportReport) error {
	name := exportReport.Tournament.Name
	if name == "" {
		name = model.UnknownTournamentName
	}

	fmt.Printf("# Export: %s\n\n", name)
	fmt.Printf("**URL:** %s\n\n", exportReport.Tournament.URL)
	fmt.Printf("**Exported at:** %s\n\n", exportReport.StartedAt.Format("2006-01-02 15:04:05"))

	fmt.Println("| Report | Rows |")
	fmt.Println("|--------|------|")
	fmt.Printf("| Results | %d |\n", len(exportReport.Results))
	fmt.Printf("| Pool sheets | %d |\n", len(exportReport.PoolSheets))
	fmt.Printf("| Bout orders | %d |\n", len(exportReport.PoolBouts))
	fmt.Printf("| Tableau | %d |\n", len(exportReport.TableauEntries))

	if len(exportReport.Tournament.Events) > 0 {
		fmt.Printf("\n## Events (%d)\n\n", len(exportReport.Tournament.Events))
		for _, event := range exportReport.Tournament.Events {
			fmt.Printf("- %s\n", event.Name)
		}
	}

	if len(exportReport.OutputFiles) > 0 {
		fmt.Printf("\n## Files (%d)\n\n", len(exportReport.OutputFiles))
		for _, file := range exportReport.OutputFiles {
			fmt.Printf("- `%s`\n", file)
		}
	}

	if exportReport.ErrorMessage != "" {
		fmt.Printf("\n**Error:** %s\n", exportReport.ErrorMessage)
	}

	return nil
}
