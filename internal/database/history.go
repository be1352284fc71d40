package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/pistekit/ftlexport/internal/model"
)

// HistoryDB provides SQLite-based storage of export runs. Every run stores
// its full report as JSON plus a summary row, and tournaments and their
// events get their own tables so history listings never parse JSON.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a HistoryDB at the specified path.
// If CreateIfNotExists is true, the parent directory and database file are
// created as needed; if false, a missing database is an error.
func Open(dbPath string, opts Options) (*HistoryDB, error) {
	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite uses mode=rw to refuse creating new files and
	// mode=rwc to allow it.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite supports only one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	h := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := h.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return h, nil
}

// Close closes the database connection.
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

// Path returns the path of the underlying database file.
func (h *HistoryDB) Path() string {
	return h.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (h *HistoryDB) createTables() error {
	schema := `
	-- Tournaments seen by any export run
	CREATE TABLE IF NOT EXISTS tournaments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tournament_id TEXT NOT NULL UNIQUE,
		url TEXT NOT NULL,
		name TEXT NOT NULL,
		first_seen DATETIME DEFAULT CURRENT_TIMESTAMP,
		last_export DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_tournaments_name ON tournaments(name);

	-- Events discovered on a tournament's schedule page
	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tournament_id TEXT NOT NULL,
		event_id TEXT NOT NULL,
		name TEXT,
		level TEXT,
		sex TEXT,
		weapon TEXT,
		start_time TEXT,
		url TEXT,
		UNIQUE(tournament_id, event_id)
	);

	CREATE INDEX IF NOT EXISTS idx_events_tournament ON events(tournament_id);

	-- Export runs, one row per invocation, with the full report as JSON
	CREATE TABLE IF NOT EXISTS exports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tournament_id TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		event_count INTEGER NOT NULL DEFAULT 0,
		result_rows INTEGER NOT NULL DEFAULT 0,
		pool_sheet_rows INTEGER NOT NULL DEFAULT 0,
		bout_rows INTEGER NOT NULL DEFAULT 0,
		tableau_rows INTEGER NOT NULL DEFAULT 0,
		output_files TEXT,
		error TEXT,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_exports_tournament ON exports(tournament_id);
	CREATE INDEX IF NOT EXISTS idx_exports_timestamp ON exports(timestamp);
	`

	_, err := h.db.ExecContext(context.Background(), schema)
	return err
}

// ExportRecord summarizes one stored export run. History listings read
// these instead of loading full report JSON.
type ExportRecord struct {
	ID            int64
	TournamentID  string
	Tournament    string
	Timestamp     time.Time
	Duration      time.Duration
	EventCount    int
	ResultRows    int
	PoolSheetRows int
	BoutRows      int
	TableauRows   int
	OutputFiles   []string
	Error         string
}

// Succeeded reports whether the recorded run completed without error.
func (r ExportRecord) Succeeded() bool {
	return r.Error == ""
}

// TotalRows returns the row count across all report kinds.
func (r ExportRecord) TotalRows() int {
	return r.ResultRows + r.PoolSheetRows + r.BoutRows + r.TableauRows
}

// SaveExport stores one export run: it upserts the tournament, refreshes
// its event list, and appends an exports row carrying the full report as
// JSON. It returns the ID of the new exports row.
func (h *HistoryDB) SaveExport(ctx context.Context, report *model.ExportReport) (int64, error) {
	tournamentID := report.Tournament.ID
	if tournamentID == "" {
		tournamentID = report.Tournament.URL
	}

	summary := model.NewSummaryReport(report)
	errMsg := summary.Error
	if errMsg == "" && summary.TimedOut {
		errMsg = "timed out"
	}

	reportJSON, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}
	filesJSON, err := json.Marshal(report.OutputFiles)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize output files: %w", err)
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	tournamentQuery := `
	INSERT INTO tournaments (tournament_id, url, name)
	VALUES (?, ?, ?)
	ON CONFLICT(tournament_id) DO UPDATE SET
		url = excluded.url,
		name = excluded.name,
		last_export = CURRENT_TIMESTAMP
	`
	if _, err := tx.ExecContext(ctx, tournamentQuery,
		tournamentID, report.Tournament.URL, summary.Tournament,
	); err != nil {
		return 0, fmt.Errorf("failed to upsert tournament: %w", err)
	}

	eventQuery := `
	INSERT INTO events (tournament_id, event_id, name, level, sex, weapon, start_time, url)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(tournament_id, event_id) DO UPDATE SET
		name = excluded.name,
		level = excluded.level,
		sex = excluded.sex,
		weapon = excluded.weapon,
		start_time = excluded.start_time,
		url = excluded.url
	`
	for _, ev := range report.Tournament.Events {
		if _, err := tx.ExecContext(ctx, eventQuery,
			tournamentID, ev.ID, ev.Name, ev.Level, ev.Sex, ev.Weapon, ev.Time, ev.URL,
		); err != nil {
			return 0, fmt.Errorf("failed to upsert event %s: %w", ev.ID, err)
		}
	}

	exportQuery := `
	INSERT INTO exports (
		tournament_id, duration_ms, event_count,
		result_rows, pool_sheet_rows, bout_rows, tableau_rows,
		output_files, error, report_json
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := tx.ExecContext(ctx, exportQuery,
		tournamentID,
		summary.Duration.Milliseconds(),
		summary.EventCount,
		summary.ResultRows,
		summary.PoolSheetRows,
		summary.BoutRows,
		summary.TableauRows,
		string(filesJSON),
		errMsg,
		string(reportJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert export: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read export ID: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit export: %w", err)
	}

	return id, nil
}

// exportColumns is the select list scanExportRecord expects, with the
// tournament name joined in.
const exportColumns = `
	e.id, e.tournament_id, COALESCE(t.name, ''), e.timestamp, e.duration_ms,
	e.event_count, e.result_rows, e.pool_sheet_rows, e.bout_rows, e.tableau_rows,
	e.output_files, e.error
`

// RecentExports returns the latest export runs across all tournaments,
// newest first.
func (h *HistoryDB) RecentExports(ctx context.Context, limit int) ([]ExportRecord, error) {
	query := `
	SELECT ` + exportColumns + `
	FROM exports e
	LEFT JOIN tournaments t ON t.tournament_id = e.tournament_id
	ORDER BY e.timestamp DESC, e.id DESC
	LIMIT ?
	`

	rows, err := h.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query exports: %w", err)
	}
	defer rows.Close()

	return collectExportRecords(rows)
}

// ExportsForTournament returns the export runs of one tournament, newest
// first.
func (h *HistoryDB) ExportsForTournament(ctx context.Context, tournamentID string) ([]ExportRecord, error) {
	query := `
	SELECT ` + exportColumns + `
	FROM exports e
	LEFT JOIN tournaments t ON t.tournament_id = e.tournament_id
	WHERE e.tournament_id = ?
	ORDER BY e.timestamp DESC, e.id DESC
	`

	rows, err := h.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query exports: %w", err)
	}
	defer rows.Close()

	return collectExportRecords(rows)
}

// collectExportRecords scans every row of an exports query.
func collectExportRecords(rows *sql.Rows) ([]ExportRecord, error) {
	var records []ExportRecord
	for rows.Next() {
		var (
			record     ExportRecord
			timestamp  string
			durationMS int64
			filesJSON  sql.NullString
			errMsg     sql.NullString
		)

		if err := rows.Scan(
			&record.ID,
			&record.TournamentID,
			&record.Tournament,
			&timestamp,
			&durationMS,
			&record.EventCount,
			&record.ResultRows,
			&record.PoolSheetRows,
			&record.BoutRows,
			&record.TableauRows,
			&filesJSON,
			&errMsg,
		); err != nil {
			return nil, fmt.Errorf("failed to scan export: %w", err)
		}

		record.Timestamp = parseTimestamp(timestamp)
		record.Duration = time.Duration(durationMS) * time.Millisecond
		record.Error = errMsg.String
		if filesJSON.Valid && filesJSON.String != "" {
			if err := json.Unmarshal([]byte(filesJSON.String), &record.OutputFiles); err != nil {
				record.OutputFiles = nil
			}
		}

		records = append(records, record)
	}

	return records, rows.Err()
}

// LatestReport retrieves the most recent full report for a tournament,
// or nil when the tournament has never been exported.
func (h *HistoryDB) LatestReport(ctx context.Context, tournamentID string) (*model.ExportReport, error) {
	query := `
	SELECT report_json FROM exports
	WHERE tournament_id = ?
	ORDER BY timestamp DESC, id DESC
	LIMIT 1
	`

	var reportJSON string
	err := h.db.QueryRowContext(ctx, query, tournamentID).Scan(&reportJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	return unmarshalReport(reportJSON)
}

// ReportByID retrieves a stored report by its exports row ID, or nil when
// no such row exists.
func (h *HistoryDB) ReportByID(ctx context.Context, id int64) (*model.ExportReport, error) {
	query := `SELECT report_json FROM exports WHERE id = ?`

	var reportJSON string
	err := h.db.QueryRowContext(ctx, query, id).Scan(&reportJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	return unmarshalReport(reportJSON)
}

// unmarshalReport decodes a stored report JSON blob.
func unmarshalReport(reportJSON string) (*model.ExportReport, error) {
	var report model.ExportReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return &report, nil
}

// TournamentRecord summarizes one stored tournament.
type TournamentRecord struct {
	TournamentID string
	URL          string
	Name         string
	FirstSeen    time.Time
	LastExport   time.Time
	ExportCount  int
}

// ListTournaments returns all tournaments any run has exported, most
// recently exported first.
func (h *HistoryDB) ListTournaments(ctx context.Context) ([]TournamentRecord, error) {
	query := `
	SELECT t.tournament_id, t.url, t.name, t.first_seen, t.last_export, COUNT(e.id)
	FROM tournaments t
	LEFT JOIN exports e ON e.tournament_id = t.tournament_id
	GROUP BY t.tournament_id, t.url, t.name, t.first_seen, t.last_export
	ORDER BY t.last_export DESC
	`

	rows, err := h.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	defer rows.Close()

	var records []TournamentRecord
	for rows.Next() {
		var (
			record     TournamentRecord
			firstSeen  string
			lastExport string
		)
		if err := rows.Scan(
			&record.TournamentID,
			&record.URL,
			&record.Name,
			&firstSeen,
			&lastExport,
			&record.ExportCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan tournament: %w", err)
		}
		record.FirstSeen = parseTimestamp(firstSeen)
		record.LastExport = parseTimestamp(lastExport)
		records = append(records, record)
	}

	return records, rows.Err()
}

// EventsForTournament returns the stored event list of one tournament,
// in insertion order.
func (h *HistoryDB) EventsForTournament(ctx context.Context, tournamentID string) ([]model.Event, error) {
	query := `
	SELECT event_id, name, level, sex, weapon, start_time, url
	FROM events
	WHERE tournament_id = ?
	ORDER BY id
	`

	rows, err := h.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var ev model.Event
		if err := rows.Scan(&ev.ID, &ev.Name, &ev.Level, &ev.Sex, &ev.Weapon, &ev.Time, &ev.URL); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, ev)
	}

	return events, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple
// formats. SQLite may return timestamps in different formats depending on
// configuration. If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
