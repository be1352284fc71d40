// Package database stores export history.
//
// The primary store is a single SQLite file (via modernc.org/sqlite, no
// CGO) holding:
//   - Tournaments seen by any run
//   - The events discovered on each tournament's schedule
//   - One row per export run, with the full report as JSON
//
// An optional Mirror copies run summaries to PostgreSQL when a DSN is
// configured; mirror failures never fail an export.
package database
