// Package main provides the entry point for the ftlexport CLI.
//
// ftlexport exports fencing tournament results from FencingTimeLive
// (fencingtimelive.com) to CSV files. The site renders everything
// client-side, so ftlexport drives a headless Chrome session, waits for
// the tables to populate, and extracts final results, pool sheets, bout
// orders, and direct elimination tableaus.
//
// Usage:
//
//	ftlexport <tournament-url>
//	ftlexport all <tournament-url>...
//
// See --help for all available options.
package main

import "github.com/joho/godotenv"

// main is the entry point for ftlexport.
func main() {
	// A .env file is optional. Containers use it to inject
	// FTLEXPORT_PG_DSN and FTLEXPORT_CHROME without flags.
	_ = godotenv.Load()

	Execute()
}
