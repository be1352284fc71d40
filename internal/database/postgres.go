package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/pistekit/ftlexport/internal/model"
)

// Mirror copies run summaries to a PostgreSQL database for setups where
// exports feed a shared dashboard. The local SQLite history stays the
// source of truth; callers treat mirror failures as warnings.
type Mirror struct {
	db *sql.DB
}

const mirrorSchema = `
CREATE TABLE IF NOT EXISTS ftl_exports (
	id BIGSERIAL PRIMARY KEY,
	tournament TEXT NOT NULL,
	url TEXT NOT NULL,
	exported_at TIMESTAMPTZ NOT NULL,
	duration_ms BIGINT NOT NULL DEFAULT 0,
	event_count INTEGER NOT NULL DEFAULT 0,
	result_rows INTEGER NOT NULL DEFAULT 0,
	pool_sheet_rows INTEGER NOT NULL DEFAULT 0,
	bout_rows INTEGER NOT NULL DEFAULT 0,
	tableau_rows INTEGER NOT NULL DEFAULT 0,
	output_files JSONB NOT NULL DEFAULT '[]'::jsonb,
	error TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// OpenMirror connects to PostgreSQL with the given DSN and ensures the
// summary table exists.
func OpenMirror(ctx context.Context, dsn string) (*Mirror, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	db.SetMaxOpenConns(2)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, mirrorSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create mirror table: %w", err)
	}

	return &Mirror{db: db}, nil
}

// Close closes the connection pool.
func (m *Mirror) Close() error {
	return m.db.Close()
}

// SaveSummary appends one run summary row.
func (m *Mirror) SaveSummary(ctx context.Context, s *model.SummaryReport) error {
	files := s.OutputFiles
	if files == nil {
		files = []string{}
	}
	filesJSON, err := json.Marshal(files)
	if err != nil {
		return fmt.Errorf("failed to serialize output files: %w", err)
	}

	query := `
	INSERT INTO ftl_exports (
		tournament, url, exported_at, duration_ms, event_count,
		result_rows, pool_sheet_rows, bout_rows, tableau_rows,
		output_files, error
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10::jsonb, $11)
	`

	if _, err := m.db.ExecContext(ctx, query,
		s.Tournament,
		s.URL,
		s.ExportedAt,
		s.Duration.Milliseconds(),
		s.EventCount,
		s.ResultRows,
		s.PoolSheetRows,
		s.BoutRows,
		s.TableauRows,
		string(filesJSON),
		s.Error,
	); err != nil {
		return fmt.Errorf("failed to insert summary: %w", err)
	}

	return nil
}
