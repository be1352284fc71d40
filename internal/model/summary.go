package model

import "time"

// SummaryReport is a condensed, human-readable digest of an export.
// It carries just enough for the console and markdown writers: what was
// exported, how many rows of each kind, which files were written.
type SummaryReport struct {
	// Tournament is the tournament name.
	Tournament string `json:"tournament"`

	// URL is the tournament schedule URL.
	URL string `json:"url"`

	// ExportedAt is when the export started.
	ExportedAt time.Time `json:"exported_at"`

	// Duration is the total wall time of the export.
	Duration time.Duration `json:"duration"`

	// EventCount is the number of events discovered on the schedule.
	EventCount int `json:"event_count"`

	// ResultRows, PoolSheetRows, BoutRows, and TableauRows count the
	// extracted rows per report kind.
	ResultRows    int `json:"result_rows"`
	PoolSheetRows int `json:"pool_sheet_rows"`
	BoutRows      int `json:"bout_rows"`
	TableauRows   int `json:"tableau_rows"`

	// StagesRun lists the pipeline stages that completed, in order.
	StagesRun []string `json:"stages_run,omitempty"`

	// OutputFiles lists the files written, in write order.
	OutputFiles []string `json:"output_files,omitempty"`

	// TimedOut is true if the export hit its deadline.
	TimedOut bool `json:"timed_out,omitempty"`

	// Error is the failure message when the export aborted.
	Error string `json:"error,omitempty"`
}

// NewSummaryReport condenses an ExportReport into a SummaryReport.
func NewSummaryReport(report *ExportReport) *SummaryReport {
	s := &SummaryReport{
		Tournament:    report.Tournament.Name,
		URL:           report.Tournament.URL,
		ExportedAt:    report.StartedAt,
		Duration:      time.Since(report.StartedAt),
		EventCount:    len(report.Tournament.Events),
		ResultRows:    len(report.Results),
		PoolSheetRows: len(report.PoolSheets),
		BoutRows:      len(report.PoolBouts),
		TableauRows:   len(report.TableauEntries),
		StagesRun:     report.StagesRun,
		OutputFiles:   report.OutputFiles,
		TimedOut:      report.TimedOut,
		Error:         report.ErrorMessage,
	}
	if s.Tournament == "" {
		s.Tournament = UnknownTournamentName
	}
	return s
}

// TotalRows returns the row count across all report kinds.
func (s *SummaryReport) TotalRows() int {
	return s.ResultRows + s.PoolSheetRows + s.BoutRows + s.TableauRows
}

// Succeeded reports whether the export completed without error.
func (s *SummaryReport) Succeeded() bool {
	return s.Error == "" && !s.TimedOut
}
