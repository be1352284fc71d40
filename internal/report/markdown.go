package report

import (
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"github.com/pistekit/ftlexport/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing, for example
// posting an export digest to a club forum or repository.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write condenses the report and outputs it in Markdown format.
func (w *MarkdownWriter) Write(report *model.ExportReport) (int, error) {
	return w.WriteSummary(model.NewSummaryReport(report))
}

// WriteSummary outputs the summary in Markdown format.
func (w *MarkdownWriter) WriteSummary(summary *model.SummaryReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary)
	w.writeRowSummary(md, summary)
	w.writeFiles(md, summary)
	w.writeStages(md, summary)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with tournament information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, summary *model.SummaryReport) {
	md.H1("FencingTimeLive Export Report")
	md.PlainText("")

	// Basic info table
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Tournament", summary.Tournament},
			{"URL", "`" + summary.URL + "`"},
			{"Exported", summary.ExportedAt.Format("2006-01-02 15:04:05 MST")},
			{"Duration", summary.Duration.Round(time.Millisecond).String()},
			{"Events", strconv.Itoa(summary.EventCount)},
			{"Status", w.getStatusText(summary)},
		},
	})
	md.PlainText("")
}

// getStatusText returns the status text based on summary state.
func (w *MarkdownWriter) getStatusText(summary *model.SummaryReport) string {
	if summary.TimedOut {
		return "⚠️ Timed Out (partial results)"
	}
	if summary.Error != "" {
		return "❌ Error - " + summary.Error
	}
	return "✅ Complete"
}

// writeRowSummary writes the extracted row count section.
func (w *MarkdownWriter) writeRowSummary(md *markdown.Markdown, summary *model.SummaryReport) {
	md.H2("Extracted Rows")
	md.PlainText("")

	// Row count table
	md.Table(markdown.TableSet{
		Header: []string{"Report", "Rows"},
		Rows: [][]string{
			{"Final results", strconv.Itoa(summary.ResultRows)},
			{"Pool sheets", strconv.Itoa(summary.PoolSheetRows)},
			{"Bout orders", strconv.Itoa(summary.BoutRows)},
			{"Tableau", strconv.Itoa(summary.TableauRows)},
			{"**Total**", "**" + strconv.Itoa(summary.TotalRows()) + "**"},
		},
	})
	md.PlainText("")

	// Add pie chart if anything was extracted
	if summary.TotalRows() > 0 {
		w.writePieChart(md, summary)
	}

	// Add alert based on export outcome
	w.writeAlert(md, summary)
}

// writePieChart writes a mermaid pie chart of the row distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, summary *model.SummaryReport) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Extracted Row Distribution"),
		piechart.WithShowData(true),
	)

	if summary.ResultRows > 0 {
		chart.LabelAndIntValue("Final results", uint64(summary.ResultRows))
	}
	if summary.PoolSheetRows > 0 {
		chart.LabelAndIntValue("Pool sheets", uint64(summary.PoolSheetRows))
	}
	if summary.BoutRows > 0 {
		chart.LabelAndIntValue("Bout orders", uint64(summary.BoutRows))
	}
	if summary.TableauRows > 0 {
		chart.LabelAndIntValue("Tableau", uint64(summary.TableauRows))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an appropriate alert based on the export outcome.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, summary *model.SummaryReport) {
	switch {
	case summary.Error != "":
		md.Cautionf(
			"Export aborted: %s. Any rows above were extracted before the failure.",
			summary.Error,
		)
	case summary.TimedOut:
		md.Warningf(
			"The export timed out after %s. Rows extracted before the deadline were kept.",
			summary.Duration.Round(time.Second),
		)
	case summary.TotalRows() == 0:
		md.Importantf(
			"No rows were extracted from %d event(s). The tournament may not have published results yet.",
			summary.EventCount,
		)
	default:
		md.Tip("Export completed with no errors.")
	}
	md.PlainText("")
}

// writeFiles writes the output file list.
func (w *MarkdownWriter) writeFiles(md *markdown.Markdown, summary *model.SummaryReport) {
	md.H2("Output Files")
	md.PlainText("")

	if len(summary.OutputFiles) == 0 {
		md.PlainText("No files were written.")
		md.PlainText("")
		return
	}

	files := make([]string, len(summary.OutputFiles))
	for i, file := range summary.OutputFiles {
		files[i] = "`" + file + "`"
	}
	md.BulletList(files...)
	md.PlainText("")
}

// writeStages writes the pipeline stages that completed, in order.
func (w *MarkdownWriter) writeStages(md *markdown.Markdown, summary *model.SummaryReport) {
	if len(summary.StagesRun) == 0 {
		return
	}

	md.H2("Pipeline Stages")
	md.PlainText("")
	md.BulletList(summary.StagesRun...)
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [ftlexport](https://github.com/pistekit/ftlexport)*")
}
