// Package log provides logging functionality with automatic truncation of
// oversized attribute values, built on top of the standard slog package.
//
// This package extends slog to provide:
//   - Automatic trimming of large values (page HTML, table fragments)
//   - Configurable log levels with verbose mode support
//   - Consistent log formatting across the application
//   - Compatibility with chromedp's slog-based logging
//
// # Why trim
//
// The exporter fetches rendered tournament pages and logs them at debug
// level while diagnosing extraction problems. A single results page can be
// several hundred kilobytes, and a tableau snapshot rendered at a wide
// viewport even more. The TrimHandler caps every string attribute at
// MaxAttrLen bytes so a debug session stays readable and log files stay
// small, without the call sites having to think about it.
//
// # Usage
//
//	// Create a trimming logger
//	logger := log.NewLogger(os.Stderr, true) // verbose=true
//
//	// Use as a standard slog.Logger
//	logger.Debug("page fetched",
//	    "url", "https://www.fencingtimelive.com/pools/scores/...",
//	    "html", pageHTML, // Trimmed to 512 bytes + "..."
//	)
//
//	// Set as default logger
//	slog.SetDefault(logger)
package log
