package model

import "time"

// Report kind names, used for stage tracking, export history records,
// and CSV filename suffixes.
const (
	// ReportKindResults is the schedule plus final results report.
	ReportKindResults = "results"
	// ReportKindPools is the pool sheets report.
	ReportKindPools = "pools"
	// ReportKindBouts is the pool bout orders report.
	ReportKindBouts = "bouts"
	// ReportKindTableau is the direct elimination bracket report.
	ReportKindTableau = "tableau"
)

// ExportReport is the main export result structure. It accumulates
// everything one invocation extracted from one tournament, and is passed
// through the pipeline stages, each of which fills in its part.
type ExportReport struct {
	// Tournament identifies what was exported and lists its events.
	Tournament Tournament `json:"tournament"`

	// StartedAt is when the export began.
	StartedAt time.Time `json:"started_at"`

	// === Extracted rows, in source page order ===

	// Results holds final placement rows across all events.
	Results []ResultRow `json:"results,omitempty"`

	// PoolSheets holds pool sheet rows across all pools of all events.
	PoolSheets []PoolSheetRow `json:"pool_sheets,omitempty"`

	// PoolBouts holds bout order rows across all pools of all events.
	PoolBouts []PoolBout `json:"pool_bouts,omitempty"`

	// TableauEntries holds bracket rows across all events.
	TableauEntries []TableauEntry `json:"tableau_entries,omitempty"`

	// === Run state ===

	// Pages caches rendered page snapshots by URL for debugging.
	Pages map[string]*Page `json:"-"` // Excluded from JSON due to size

	// StagesRun lists the pipeline stages that completed, in order.
	StagesRun []string `json:"stages_run,omitempty"`

	// StageDurations records how long each completed stage took.
	StageDurations map[string]time.Duration `json:"-"`

	// OutputFiles lists the files the writers produced.
	OutputFiles []string `json:"output_files,omitempty"`

	// TimedOut is true if the export was terminated by its deadline.
	TimedOut bool `json:"timed_out,omitempty"`

	// Error is the error that aborted the export, if any.
	Error error `json:"-"` // Excluded from JSON

	// ErrorMessage is the string form of Error for serialization.
	ErrorMessage string `json:"error,omitempty"`
}

// NewExportReport creates a report for the given tournament URL.
func NewExportReport(url string) *ExportReport {
	return &ExportReport{
		Tournament:     Tournament{URL: url},
		StartedAt:      time.Now(),
		Pages:          make(map[string]*Page),
		StageDurations: make(map[string]time.Duration),
	}
}

// AddPage caches a rendered page snapshot.
func (r *ExportReport) AddPage(page *Page) {
	if page == nil {
		return
	}
	r.Pages[page.URL] = page
}

// GetPage retrieves a cached page by URL, or nil if it was never fetched.
func (r *ExportReport) GetPage(url string) *Page {
	return r.Pages[url]
}

// MarkStage records that a pipeline stage completed and how long it took.
func (r *ExportReport) MarkStage(name string, took time.Duration) {
	r.StagesRun = append(r.StagesRun, name)
	r.StageDurations[name] = took
}

// SetError stamps the error that aborted the export.
func (r *ExportReport) SetError(err error) {
	r.Error = err
	if err != nil {
		r.ErrorMessage = err.Error()
	}
}

// RowCount returns the number of extracted rows for the given report kind.
func (r *ExportReport) RowCount(kind string) int {
	switch kind {
	case ReportKindResults:
		return len(r.Results)
	case ReportKindPools:
		return len(r.PoolSheets)
	case ReportKindBouts:
		return len(r.PoolBouts)
	case ReportKindTableau:
		return len(r.TableauEntries)
	default:
		return 0
	}
}

// TotalRows returns the number of extracted rows across all report kinds.
func (r *ExportReport) TotalRows() int {
	return len(r.Results) + len(r.PoolSheets) + len(r.PoolBouts) + len(r.TableauEntries)
}

// HasRows reports whether any stage extracted anything.
func (r *ExportReport) HasRows() bool {
	return r.TotalRows() > 0
}

// MaxPoolSize returns the largest pool across all extracted pool sheets.
// The pool sheet CSV sizes its bout columns to this.
func (r *ExportReport) MaxPoolSize() int {
	max := 0
	for _, row := range r.PoolSheets {
		if size := row.PoolSize(); size > max {
			max = size
		}
	}
	return max
}
