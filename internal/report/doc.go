// Package report provides export report generation and output.
//
// This package contains writers for different output formats:
//   - CSVWriter: one CSV file per report kind, the primary output
//   - ConsoleWriter: human-readable text for terminal display
//   - JSONWriter: structured JSON output for tool integration
//   - MarkdownWriter: Markdown documents for sharing
//
// All writers except CSVWriter implement the Writer interface, allowing
// them to be used interchangeably and composed for multi-format output.
// Report data structures live in the model package so new formats can be
// added without touching them.
package report
