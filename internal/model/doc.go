// Package model defines the core data structures used throughout ftlexport.
//
// This package contains the following main types:
//   - Tournament, Event: identity of what is being exported
//   - ResultRow, PoolSheetRow, PoolBout, TableauEntry: report rows
//   - ExportReport: everything one invocation extracted
//   - SummaryReport: a condensed, human-readable digest
//
// Multiple packages (scraper, pipeline, report, database) share these types,
// so centralizing them prevents import cycles. The models serialize to JSON
// for report output and to flat strings for CSV rows.
package model
