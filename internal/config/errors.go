package config

import "errors"

// Configuration validation errors, returned by Config.Validate().
// These are package-level sentinels so callers can match them with
// errors.Is() while still getting a readable message.
var (
	// ErrNoTarget is returned when no tournament URL was given.
	ErrNoTarget = errors.New("no target specified: provide a tournament schedule URL")

	// ErrNoBaseURL is returned when the base URL is empty. Relative links
	// on tournament pages cannot be resolved without it.
	ErrNoBaseURL = errors.New("no base URL configured")

	// ErrNoReportSelected is returned when every report type is disabled.
	// An export that extracts nothing is a configuration mistake.
	ErrNoReportSelected = errors.New("no report type selected: enable results, pools, or tableau")

	// ErrInvalidTimeout is returned when the navigation timeout is not
	// positive. A zero timeout would fail every page load immediately.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidNavigationDelay is returned when the post-navigation settle
	// delay is negative. Use 0 to snapshot without waiting.
	ErrInvalidNavigationDelay = errors.New("invalid navigation delay: must be non-negative")

	// ErrInvalidPoolPolling is returned when the window.ids polling
	// parameters are not positive. Pool extraction depends on the poll loop.
	ErrInvalidPoolPolling = errors.New("invalid pool polling: attempts and interval must be positive")

	// ErrInvalidViewport is returned when a viewport dimension is not
	// positive.
	ErrInvalidViewport = errors.New("invalid viewport: dimensions must be positive")

	// ErrInvalidRateLimit is returned when the request rate cap is not
	// positive. A zero rate would block every request forever.
	ErrInvalidRateLimit = errors.New("invalid rate limit: requests per second must be positive")

	// ErrInvalidMaxRetries is returned when the retry count is negative.
	// Use 0 to disable retries.
	ErrInvalidMaxRetries = errors.New("invalid max retries: must be non-negative")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// Use 0 for the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	// Batch mode needs at least one concurrent export.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when both the JSON and
	// Markdown summary toggles are set. Only one format applies at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: json and markdown summaries cannot be combined")
)
