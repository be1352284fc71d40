package database

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pistekit/ftlexport/internal/model"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) (*HistoryDB, func()) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "history.db")

	db, err := Open(dbPath, DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	cleanup := func() {
		_ = db.Close()
	}

	return db, cleanup
}

// testReport builds a filled-in export report for storage tests.
func testReport(tournamentID, name string) *model.ExportReport {
	report := model.NewExportReport("https://www.fencingtimelive.com/tournaments/eventSchedule/" + tournamentID)
	report.Tournament.ID = tournamentID
	report.Tournament.Name = name
	report.Tournament.Events = []model.Event{
		{
			ID:     "EV1",
			Name:   "Senior Men's Épée",
			Time:   "Saturday @ 9:00 AM",
			URL:    "https://www.fencingtimelive.com/events/view/EV1",
			Level:  "Senior",
			Sex:    "Men",
			Weapon: "Epee",
		},
		{
			ID:     "EV2",
			Name:   "Y14 Mixed Foil",
			URL:    "https://www.fencingtimelive.com/events/view/EV2",
			Level:  "Y14",
			Sex:    "Mixed",
			Weapon: "Foil",
		},
	}
	report.Results = []model.ResultRow{
		{Place: "1", Fencer: "BUDOVSKYI Borys", Tournament: name, Event: "Senior Men's Épée"},
		{Place: "2", Fencer: "HU Ben", Tournament: name, Event: "Senior Men's Épée"},
	}
	report.PoolSheets = []model.PoolSheetRow{
		{PoolID: "P1", Fencer: "BUDOVSKYI Borys", Position: "1", Bouts: []string{"", "V5", "V5"}},
	}
	report.PoolBouts = []model.PoolBout{
		{PoolID: "P1", RightFencer: "BUDOVSKYI Borys", LeftFencer: "HU Ben"},
	}
	report.TableauEntries = []model.TableauEntry{
		{Round: "Finals", LastName: "BUDOVSKYI", FirstName: "Borys"},
	}
	report.OutputFiles = []string{name + "_fencing_results.csv"}
	return report
}

// TestOpen tests database opening and creation.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbPath := filepath.Join(t.TempDir(), "newdir", "subdir", "history.db")
		db, err := Open(dbPath, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
		if db.Path() != dbPath {
			t.Errorf("expected path %s, got %s", dbPath, db.Path())
		}
	})

	t.Run("CreateIfNotExists=false returns error when database does not exist", func(t *testing.T) {
		t.Parallel()

		dbPath := filepath.Join(t.TempDir(), "missing.db")
		opts := Options{
			CreateIfNotExists: false,
			EnableWAL:         true,
		}

		_, err := Open(dbPath, opts)
		if err == nil {
			t.Fatal("expected error when CreateIfNotExists=false and database does not exist")
		}
		if !strings.Contains(err.Error(), "database not found") {
			t.Errorf("expected informative error, got %q", err.Error())
		}
	})

	t.Run("CreateIfNotExists=false opens existing database", func(t *testing.T) {
		t.Parallel()

		dbPath := filepath.Join(t.TempDir(), "existing.db")

		db1, err := Open(dbPath, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}

		ctx := context.Background()
		if _, err := db1.SaveExport(ctx, testReport("T1", "Coupe Excellence")); err != nil {
			t.Fatalf("failed to save export: %v", err)
		}
		db1.Close()

		db2, err := Open(dbPath, Options{CreateIfNotExists: false, EnableWAL: true})
		if err != nil {
			t.Fatalf("failed to open existing database: %v", err)
		}
		defer db2.Close()

		records, err := db2.ExportsForTournament(ctx, "T1")
		if err != nil {
			t.Fatalf("failed to query exports: %v", err)
		}
		if len(records) != 1 {
			t.Errorf("expected 1 export to persist, got %d", len(records))
		}
	})
}

// TestDefaultOptions tests the default options values.
func TestDefaultOptions(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()

	if !opts.CreateIfNotExists {
		t.Error("expected CreateIfNotExists to be true by default")
	}
	if !opts.EnableWAL {
		t.Error("expected EnableWAL to be true by default")
	}
}

// TestSaveExport tests storing export runs and reading them back.
func TestSaveExport(t *testing.T) {
	t.Parallel()

	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	t.Run("save and list", func(t *testing.T) {
		id, err := db.SaveExport(ctx, testReport("T1", "Coupe Excellence"))
		if err != nil {
			t.Fatalf("failed to save export: %v", err)
		}
		if id == 0 {
			t.Error("expected non-zero export ID")
		}

		records, err := db.RecentExports(ctx, 10)
		if err != nil {
			t.Fatalf("failed to list exports: %v", err)
		}
		if len(records) != 1 {
			t.Fatalf("expected 1 record, got %d", len(records))
		}

		record := records[0]
		if record.TournamentID != "T1" {
			t.Errorf("expected tournament ID T1, got %q", record.TournamentID)
		}
		if record.Tournament != "Coupe Excellence" {
			t.Errorf("expected tournament name joined in, got %q", record.Tournament)
		}
		if record.EventCount != 2 {
			t.Errorf("expected 2 events, got %d", record.EventCount)
		}
		if record.ResultRows != 2 || record.PoolSheetRows != 1 || record.BoutRows != 1 || record.TableauRows != 1 {
			t.Errorf("unexpected row counts: %+v", record)
		}
		if record.TotalRows() != 5 {
			t.Errorf("expected 5 total rows, got %d", record.TotalRows())
		}
		if !record.Succeeded() {
			t.Errorf("expected a successful record, got error %q", record.Error)
		}
		if len(record.OutputFiles) != 1 {
			t.Errorf("expected 1 output file, got %v", record.OutputFiles)
		}
	})

	t.Run("failed run keeps its error", func(t *testing.T) {
		report := testReport("T2", "Broken Cup")
		report.SetError(context.DeadlineExceeded)

		if _, err := db.SaveExport(ctx, report); err != nil {
			t.Fatalf("failed to save export: %v", err)
		}

		records, err := db.ExportsForTournament(ctx, "T2")
		if err != nil {
			t.Fatalf("failed to query exports: %v", err)
		}
		if len(records) != 1 {
			t.Fatalf("expected 1 record, got %d", len(records))
		}
		if records[0].Succeeded() {
			t.Error("expected a failed record")
		}
		if records[0].Error != context.DeadlineExceeded.Error() {
			t.Errorf("unexpected error message: %q", records[0].Error)
		}
	})

	t.Run("timed out run without message is marked", func(t *testing.T) {
		report := testReport("T3", "Slow Cup")
		report.TimedOut = true

		if _, err := db.SaveExport(ctx, report); err != nil {
			t.Fatalf("failed to save export: %v", err)
		}

		records, err := db.ExportsForTournament(ctx, "T3")
		if err != nil {
			t.Fatalf("failed to query exports: %v", err)
		}
		if len(records) != 1 || records[0].Error != "timed out" {
			t.Errorf("expected timed out marker, got %+v", records)
		}
	})
}

// TestLatestReport tests full report round trips.
func TestLatestReport(t *testing.T) {
	t.Parallel()

	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	t.Run("returns nil for unknown tournament", func(t *testing.T) {
		report, err := db.LatestReport(ctx, "NOPE")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if report != nil {
			t.Error("expected nil for unknown tournament")
		}
	})

	t.Run("round trips the stored report", func(t *testing.T) {
		if _, err := db.SaveExport(ctx, testReport("T1", "Coupe Excellence")); err != nil {
			t.Fatalf("failed to save export: %v", err)
		}

		report, err := db.LatestReport(ctx, "T1")
		if err != nil {
			t.Fatalf("failed to load report: %v", err)
		}
		if report == nil {
			t.Fatal("expected report, got nil")
		}
		if report.Tournament.Name != "Coupe Excellence" {
			t.Errorf("unexpected tournament name: %q", report.Tournament.Name)
		}
		if len(report.Results) != 2 {
			t.Errorf("expected 2 result rows, got %d", len(report.Results))
		}
		if len(report.PoolSheets) != 1 || report.PoolSheets[0].PoolSize() != 3 {
			t.Errorf("unexpected pool sheets: %+v", report.PoolSheets)
		}
	})

	t.Run("newest report wins", func(t *testing.T) {
		first := testReport("T9", "Old Name")
		if _, err := db.SaveExport(ctx, first); err != nil {
			t.Fatalf("failed to save export: %v", err)
		}
		time.Sleep(10 * time.Millisecond)

		second := testReport("T9", "New Name")
		if _, err := db.SaveExport(ctx, second); err != nil {
			t.Fatalf("failed to save export: %v", err)
		}

		report, err := db.LatestReport(ctx, "T9")
		if err != nil {
			t.Fatalf("failed to load report: %v", err)
		}
		if report == nil || report.Tournament.Name != "New Name" {
			t.Errorf("expected the newest report, got %+v", report)
		}
	})
}

// TestReportByID tests report retrieval by exports row ID.
func TestReportByID(t *testing.T) {
	t.Parallel()

	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	t.Run("returns nil for non-existent ID", func(t *testing.T) {
		report, err := db.ReportByID(ctx, 99999)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if report != nil {
			t.Error("expected nil for non-existent ID")
		}
	})

	t.Run("retrieves report by ID", func(t *testing.T) {
		id, err := db.SaveExport(ctx, testReport("T1", "Coupe Excellence"))
		if err != nil {
			t.Fatalf("failed to save export: %v", err)
		}

		report, err := db.ReportByID(ctx, id)
		if err != nil {
			t.Fatalf("failed to load report: %v", err)
		}
		if report == nil {
			t.Fatal("expected report, got nil")
		}
		if report.Tournament.ID != "T1" {
			t.Errorf("expected tournament T1, got %q", report.Tournament.ID)
		}
	})
}

// TestListTournaments tests the tournament listing and upsert behavior.
func TestListTournaments(t *testing.T) {
	t.Parallel()

	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	for _, name := range []string{"First Name", "Renamed Cup"} {
		if _, err := db.SaveExport(ctx, testReport("T1", name)); err != nil {
			t.Fatalf("failed to save export: %v", err)
		}
	}
	if _, err := db.SaveExport(ctx, testReport("T2", "Other Cup")); err != nil {
		t.Fatalf("failed to save export: %v", err)
	}

	records, err := db.ListTournaments(ctx)
	if err != nil {
		t.Fatalf("failed to list tournaments: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 tournaments, got %d", len(records))
	}

	byID := make(map[string]TournamentRecord, len(records))
	for _, record := range records {
		byID[record.TournamentID] = record
	}

	if byID["T1"].Name != "Renamed Cup" {
		t.Errorf("expected the re-export to rename the tournament, got %q", byID["T1"].Name)
	}
	if byID["T1"].ExportCount != 2 {
		t.Errorf("expected 2 exports for T1, got %d", byID["T1"].ExportCount)
	}
	if byID["T2"].ExportCount != 1 {
		t.Errorf("expected 1 export for T2, got %d", byID["T2"].ExportCount)
	}
}

// TestEventsForTournament tests event upserts across repeated exports.
func TestEventsForTournament(t *testing.T) {
	t.Parallel()

	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	report := testReport("T1", "Coupe Excellence")
	if _, err := db.SaveExport(ctx, report); err != nil {
		t.Fatalf("failed to save export: %v", err)
	}

	// Re-export with one renamed event. The event list must not duplicate.
	report.Tournament.Events[1].Name = "Y14 Mixed Fleuret"
	if _, err := db.SaveExport(ctx, report); err != nil {
		t.Fatalf("failed to save export: %v", err)
	}

	events, err := db.EventsForTournament(ctx, "T1")
	if err != nil {
		t.Fatalf("failed to query events: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].ID != "EV1" || events[0].Weapon != "Epee" {
		t.Errorf("unexpected first event: %+v", events[0])
	}
	if events[1].Name != "Y14 Mixed Fleuret" {
		t.Errorf("expected renamed event, got %q", events[1].Name)
	}
}

// TestParseTimestamp tests timestamp parsing across the formats SQLite
// can return.
func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{
			name:  "sqlite default format",
			input: "2025-03-22 09:30:00",
			want:  time.Date(2025, 3, 22, 9, 30, 0, 0, time.UTC),
		},
		{
			name:  "iso 8601 with Z",
			input: "2025-03-22T09:30:00Z",
			want:  time.Date(2025, 3, 22, 9, 30, 0, 0, time.UTC),
		},
		{
			name:  "unparseable input yields zero time",
			input: "yesterday",
			want:  time.Time{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := parseTimestamp(tt.input); !got.Equal(tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
