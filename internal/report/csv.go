package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pistekit/ftlexport/internal/model"
)

// CSV filename suffixes, appended to the tournament stem.
const (
	resultsFileSuffix    = "_fencing_results.csv"
	poolSheetsFileSuffix = "_pool_sheets.csv"
	boutOrdersFileSuffix = "_bout_orders.csv"
	tableauFileSuffix    = "_tableau_results.csv"
)

// CSVWriter writes the extracted rows of an export as CSV files, one file
// per report kind. It does not implement the Writer interface because it
// produces multiple files rather than one stream.
type CSVWriter struct {
	// dir is the directory the files are written into.
	dir string

	// stem is the filename prefix, typically the sanitized tournament name.
	stem string
}

// NewCSVWriter creates a CSVWriter that writes into dir with the given
// filename stem. An empty dir means the current working directory.
func NewCSVWriter(dir, stem string) *CSVWriter {
	if dir == "" {
		dir = "."
	}
	return &CSVWriter{
		dir:  dir,
		stem: stem,
	}
}

// WriteFiles writes one CSV file per report kind that extracted rows and
// returns the paths written, in write order. Kinds with no rows are
// skipped so an event without pools never leaves an empty file behind.
func (w *CSVWriter) WriteFiles(report *model.ExportReport) ([]string, error) {
	if !report.HasRows() {
		return nil, nil
	}

	if err := os.MkdirAll(w.dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	var written []string

	if len(report.Results) > 0 {
		records := make([][]string, 0, len(report.Results))
		for _, row := range report.Results {
			records = append(records, row.Record())
		}

		path, err := w.writeFile(w.stem+resultsFileSuffix, model.ResultHeader(), records)
		if err != nil {
			return written, err
		}
		written = append(written, path)
	}

	if len(report.PoolSheets) > 0 {
		// All sheets share one header, sized to the largest pool.
		maxBouts := report.MaxPoolSize()
		records := make([][]string, 0, len(report.PoolSheets))
		for _, row := range report.PoolSheets {
			records = append(records, row.Record(maxBouts))
		}

		path, err := w.writeFile(w.stem+poolSheetsFileSuffix, model.PoolSheetHeader(maxBouts), records)
		if err != nil {
			return written, err
		}
		written = append(written, path)
	}

	if len(report.PoolBouts) > 0 {
		records := make([][]string, 0, len(report.PoolBouts))
		for _, bout := range report.PoolBouts {
			records = append(records, bout.Record())
		}

		path, err := w.writeFile(w.stem+boutOrdersFileSuffix, model.PoolBoutHeader(), records)
		if err != nil {
			return written, err
		}
		written = append(written, path)
	}

	if len(report.TableauEntries) > 0 {
		entries := orderTableauEntries(report.TableauEntries)
		records := make([][]string, 0, len(entries))
		for _, entry := range entries {
			records = append(records, entry.Record())
		}

		path, err := w.writeFile(w.stem+tableauFileSuffix, model.TableauHeader(), records)
		if err != nil {
			return written, err
		}
		written = append(written, path)
	}

	return written, nil
}

// orderTableauEntries returns tableau rows grouped by event and round, from
// the largest table down to the final. The bracket page interleaves rounds
// row by row, so page order scatters each round across the file. Rows keep
// their bracket order within a round.
func orderTableauEntries(entries []model.TableauEntry) []model.TableauEntry {
	type group struct {
		event string
		round string
	}

	rows := make(map[group][]model.TableauEntry)
	rounds := make(map[string][]string)
	var events []string

	for _, entry := range entries {
		key := group{event: entry.Event, round: entry.Round}
		if _, ok := rows[key]; !ok {
			if _, seen := rounds[entry.Event]; !seen {
				events = append(events, entry.Event)
			}
			rounds[entry.Event] = append(rounds[entry.Event], entry.Round)
		}
		rows[key] = append(rows[key], entry)
	}

	ordered := make([]model.TableauEntry, 0, len(entries))
	for _, event := range events {
		for _, round := range model.SortRoundLabels(rounds[event]) {
			ordered = append(ordered, rows[group{event: event, round: round}]...)
		}
	}
	return ordered
}

// writeFile writes a single CSV file with the given header and records,
// returning the full path written.
func (w *CSVWriter) writeFile(name string, header []string, records [][]string) (string, error) {
	path := filepath.Join(w.dir, name)

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", name, err)
	}

	if err := encodeCSV(file, header, records); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}

	return path, nil
}

// encodeCSV writes the header and records to wc in CSV form and closes
// it. The close error is returned: a file that failed to close may be
// truncated, and a truncated CSV must not be reported as written.
func encodeCSV(wc io.WriteCloser, header []string, records [][]string) error {
	writer := csv.NewWriter(wc)
	if err := writer.Write(header); err != nil {
		wc.Close()
		return fmt.Errorf("header: %w", err)
	}

	// WriteAll flushes and surfaces any buffered write error.
	if err := writer.WriteAll(records); err != nil {
		wc.Close()
		return fmt.Errorf("rows: %w", err)
	}

	return wc.Close()
}
