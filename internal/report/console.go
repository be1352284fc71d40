package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pistekit/ftlexport/internal/model"
)

// ConsoleWriter outputs human-readable text summaries.
// This format is designed for terminal display, using plain ASCII
// formatting so the output pipes cleanly to files and other tools.
type ConsoleWriter struct {
	baseWriter

	// showEmpty controls whether sections with no content are shown.
	showEmpty bool

	// verbose enables additional detail in the output.
	verbose bool
}

// ConsoleWriterOption configures a ConsoleWriter.
type ConsoleWriterOption func(*ConsoleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) ConsoleWriterOption {
	return func(w *ConsoleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with pipeline stage details.
func WithVerbose(verbose bool) ConsoleWriterOption {
	return func(w *ConsoleWriter) {
		w.verbose = verbose
	}
}

// NewConsoleWriter creates a ConsoleWriter that outputs to the given writer.
func NewConsoleWriter(output io.Writer, opts ...ConsoleWriterOption) *ConsoleWriter {
	w := &ConsoleWriter{
		baseWriter: newBaseWriter(output),
		showEmpty:  false,
		verbose:    false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write condenses the report and outputs it in human-readable format.
func (w *ConsoleWriter) Write(report *model.ExportReport) (int, error) {
	return w.WriteSummary(model.NewSummaryReport(report))
}

// WriteSummary outputs the summary in human-readable format.
func (w *ConsoleWriter) WriteSummary(summary *model.SummaryReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, summary)
	w.writeRowSummary(&sb, summary)
	w.writeFiles(&sb, summary)
	w.writeStages(&sb, summary)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with tournament information.
func (w *ConsoleWriter) writeHeader(sb *strings.Builder, summary *model.SummaryReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                        FENCINGTIMELIVE EXPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Tournament:  %s\n", summary.Tournament))
	sb.WriteString(fmt.Sprintf("URL:         %s\n", summary.URL))
	sb.WriteString(fmt.Sprintf("Exported:    %s\n", summary.ExportedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Duration:    %s\n", summary.Duration.Round(time.Millisecond)))
	sb.WriteString(fmt.Sprintf("Events:      %d\n", summary.EventCount))

	if summary.TimedOut {
		sb.WriteString("Status:      TIMED OUT (partial results)\n")
	} else if summary.Error != "" {
		sb.WriteString(fmt.Sprintf("Status:      ERROR - %s\n", summary.Error))
	} else {
		sb.WriteString("Status:      Complete\n")
	}

	sb.WriteString("\n")
}

// writeRowSummary writes the extracted row counts per report kind.
func (w *ConsoleWriter) writeRowSummary(sb *strings.Builder, summary *model.SummaryReport) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("EXTRACTED ROWS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  RESULTS:      %d\n", summary.ResultRows))
	sb.WriteString(fmt.Sprintf("  POOL SHEETS:  %d\n", summary.PoolSheetRows))
	sb.WriteString(fmt.Sprintf("  BOUT ORDERS:  %d\n", summary.BoutRows))
	sb.WriteString(fmt.Sprintf("  TABLEAU:      %d\n", summary.TableauRows))
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("  TOTAL:        %d rows\n", summary.TotalRows()))
	sb.WriteString("\n")
}

// writeFiles writes the output file list.
func (w *ConsoleWriter) writeFiles(sb *strings.Builder, summary *model.SummaryReport) {
	if len(summary.OutputFiles) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("OUTPUT FILES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(summary.OutputFiles) == 0 {
		sb.WriteString("  No files written\n")
	} else {
		for _, file := range summary.OutputFiles {
			sb.WriteString(fmt.Sprintf("  [+] %s\n", file))
		}
	}
	sb.WriteString("\n")
}

// writeStages writes the pipeline stages that ran, in order.
// Stage detail is only interesting when debugging, so it is verbose-only.
func (w *ConsoleWriter) writeStages(sb *strings.Builder, summary *model.SummaryReport) {
	if !w.verbose {
		return
	}
	if len(summary.StagesRun) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("PIPELINE STAGES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(summary.StagesRun) == 0 {
		sb.WriteString("  No stages completed\n")
	} else {
		for i, stage := range summary.StagesRun {
			sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, stage))
		}
	}
	sb.WriteString("\n")
}

// writeFooter writes the report footer.
func (w *ConsoleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by ftlexport\n")
	sb.WriteString("https://github.com/pistekit/ftlexport\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
