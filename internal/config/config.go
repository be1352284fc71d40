package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values. Timings mirror the behavior of the
// FencingTimeLive pages themselves: everything interesting on them is
// rendered client-side, so navigation waits are generous.
const (
	// DefaultBaseURL is the FencingTimeLive origin. Relative event and
	// pool links on tournament pages resolve against this.
	DefaultBaseURL = "https://www.fencingtimelive.com"

	// DefaultTimeout bounds a single page navigation or HTTP fetch.
	// Schedule and pool pages finish their client-side rendering well
	// inside this on a normal connection.
	DefaultTimeout = 60 * time.Second

	// DefaultNavigationDelay is how long to wait after navigation before
	// snapshotting the DOM. The site populates tables from XHR calls that
	// have no reliable completion marker.
	DefaultNavigationDelay = 2 * time.Second

	// DefaultPoolPollAttempts is how many times to poll for the pool GUID
	// list (window.ids) before giving up on a pool round.
	DefaultPoolPollAttempts = 20

	// DefaultPoolPollInterval is the pause between window.ids polls.
	DefaultPoolPollInterval = 500 * time.Millisecond

	// DefaultBatchSize is the number of tournaments exported concurrently
	// in batch mode. Each export drives its own headless browser, so this
	// stays low.
	DefaultBatchSize = 2

	// DefaultUserAgent is sent on plain HTTP requests to the tableau
	// endpoints. The site serves those fragments to browser user agents.
	DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// DefaultRequestsPerSecond caps request frequency against the site.
	// Browser navigations and plain HTTP fetches each honor it.
	DefaultRequestsPerSecond = 2.0

	// DefaultMaxRetries is how many times a failed HTTP fetch is retried
	// before the error propagates. Backoff grows quadratically per attempt.
	DefaultMaxRetries = 3

	// DefaultRetryBackoff is the base unit of the retry backoff; attempt n
	// waits n*n times this.
	DefaultRetryBackoff = time.Second

	// DefaultMaxBodySize limits how much of an HTTP response body is read.
	// 5MB covers the largest bracket fragments seen in practice.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultViewportWidth and DefaultViewportHeight size the browser
	// viewport for schedule, event, and pool pages.
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 800

	// DefaultTableauViewportWidth and DefaultTableauViewportHeight size the
	// viewport for direct elimination pages. Brackets lay out horizontally
	// and clip fencer cells out of the DOM at normal widths.
	DefaultTableauViewportWidth  = 3000
	DefaultTableauViewportHeight = 2000

	// AppName is the application name used for XDG directory paths.
	AppName = "ftlexport"

	// DatabaseFileName is the SQLite file created under the XDG data
	// directory when no explicit database path is configured.
	DatabaseFileName = "ftlexport.db"
)

// Config holds all options for one invocation. It is populated from CLI
// flags plus the optional config file and passed through the application
// explicitly; there is no global state.
//
// The struct is flat. The option count is manageable and every consumer
// takes the whole struct, so nesting would only add indirection.
type Config struct {
	// BaseURL is the FencingTimeLive origin used to resolve relative links
	// found in tournament pages. Overridable for test servers.
	BaseURL string

	// Targets is the list of tournament schedule URLs to export.
	// Single-tournament commands put exactly one entry here.
	Targets []string

	// OutputDir is where CSV files are written. Empty means the current
	// working directory.
	OutputDir string

	// ExportResults, ExportPools, and ExportTableau select which report
	// types the pipeline runs. The schedule is always fetched; it names
	// the output files and lists the events.
	ExportResults bool
	ExportPools   bool
	ExportTableau bool

	// Timeout bounds each page navigation and each HTTP fetch. It is not
	// an overall deadline for the export.
	Timeout time.Duration

	// NavigationDelay is the settle time after navigation before the DOM
	// snapshot is taken.
	NavigationDelay time.Duration

	// PoolPollAttempts and PoolPollInterval control polling for the pool
	// GUID list, which the pool scores page fills in asynchronously.
	PoolPollAttempts int
	PoolPollInterval time.Duration

	// Headless runs the browser without a visible window. Disable for
	// local debugging of selector changes.
	Headless bool

	// ChromePath overrides the browser executable path. Empty lets
	// chromedp locate Chrome or Chromium on its own. Containers set this
	// via the FTLEXPORT_CHROME environment variable.
	ChromePath string

	// ViewportWidth and ViewportHeight size the browser viewport for
	// regular pages.
	ViewportWidth  int
	ViewportHeight int

	// TableauViewportWidth and TableauViewportHeight size the viewport
	// used when a bracket page must be rendered in the browser.
	TableauViewportWidth  int
	TableauViewportHeight int

	// UserAgent is sent with plain HTTP requests to the tableau endpoints.
	UserAgent string

	// RequestsPerSecond caps request frequency against the site.
	RequestsPerSecond float64

	// MaxRetries is the retry count for failed HTTP fetches.
	MaxRetries int

	// RetryBackoff is the base backoff unit; attempt n waits n*n times it.
	RetryBackoff time.Duration

	// MaxBodySize is the maximum HTTP response body size in bytes to read.
	// Larger responses are truncated. Zero means DefaultMaxBodySize.
	MaxBodySize int64

	// BatchSize is the number of concurrent exports in batch mode.
	BatchSize int

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// Quiet suppresses the summary output on stdout. CSV files are still
	// written and failures still surface through the exit code.
	Quiet bool

	// JSONReport emits the export summary as JSON instead of the
	// human-readable console form. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport emits the export summary as GitHub Flavored Markdown.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile writes the summary to this path instead of stdout.
	// Parent directories are created as needed.
	ReportFile string

	// DatabasePath is the SQLite file recording export history. Empty
	// means DatabaseFileName under the XDG data directory.
	DatabasePath string

	// SaveHistory records completed exports in the history database.
	SaveHistory bool

	// PostgresDSN, when set, mirrors export history to a Postgres
	// database. Mirroring is best-effort and never fails an export.
	// Usually supplied via the FTLEXPORT_PG_DSN environment variable.
	PostgresDSN string

	// ConfigFilePath is the path to the configuration file. If empty, the
	// tool searches for ftlexport.yml in the current directory and then
	// in the XDG config directory.
	ConfigFilePath string

	// Overrides holds values loaded from the config file, including
	// selector overrides applied when the site markup changes.
	Overrides *File
}

// NewConfig creates a Config with default values. Callers override
// specific fields after creation, normally from CLI flags.
func NewConfig() *Config {
	return &Config{
		BaseURL:               DefaultBaseURL,
		ExportResults:         true,
		Timeout:               DefaultTimeout,
		NavigationDelay:       DefaultNavigationDelay,
		PoolPollAttempts:      DefaultPoolPollAttempts,
		PoolPollInterval:      DefaultPoolPollInterval,
		Headless:              true,
		ViewportWidth:         DefaultViewportWidth,
		ViewportHeight:        DefaultViewportHeight,
		TableauViewportWidth:  DefaultTableauViewportWidth,
		TableauViewportHeight: DefaultTableauViewportHeight,
		UserAgent:             DefaultUserAgent,
		RequestsPerSecond:     DefaultRequestsPerSecond,
		MaxRetries:            DefaultMaxRetries,
		RetryBackoff:          DefaultRetryBackoff,
		MaxBodySize:           DefaultMaxBodySize,
		BatchSize:             DefaultBatchSize,
		SaveHistory:           true,
	}
}

// ResolvedDatabasePath returns the SQLite file path, falling back to the
// XDG data directory when none is configured.
func (c *Config) ResolvedDatabasePath() string {
	if c.DatabasePath != "" {
		return c.DatabasePath
	}
	return filepath.Join(XDGDataDir(), DatabaseFileName)
}

// Selectors returns the effective CSS selector set: the defaults merged
// with any overrides from the config file.
func (c *Config) Selectors() SelectorSet {
	if c.Overrides == nil {
		return DefaultSelectors()
	}
	return c.Overrides.EffectiveSelectors()
}

// XDGDataDir returns the XDG data directory for ftlexport.
// On Linux: ~/.local/share/ftlexport
// On macOS: ~/Library/Application Support/ftlexport
// On Windows: %LOCALAPPDATA%\ftlexport
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for ftlexport.
// On Linux: ~/.config/ftlexport
// On macOS: ~/Library/Application Support/ftlexport
// On Windows: %APPDATA%\ftlexport
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the configuration and returns the first problem found.
// It runs once after CLI parsing, before the browser starts.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}

	if c.BaseURL == "" {
		return ErrNoBaseURL
	}

	if !c.ExportResults && !c.ExportPools && !c.ExportTableau {
		return ErrNoReportSelected
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.NavigationDelay < 0 {
		return ErrInvalidNavigationDelay
	}

	if c.PoolPollAttempts <= 0 || c.PoolPollInterval <= 0 {
		return ErrInvalidPoolPolling
	}

	if c.ViewportWidth <= 0 || c.ViewportHeight <= 0 ||
		c.TableauViewportWidth <= 0 || c.TableauViewportHeight <= 0 {
		return ErrInvalidViewport
	}

	if c.RequestsPerSecond <= 0 {
		return ErrInvalidRateLimit
	}

	if c.MaxRetries < 0 {
		return ErrInvalidMaxRetries
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	// JSONReport and MarkdownReport are mutually exclusive
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	return nil
}
