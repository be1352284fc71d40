package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/pistekit/ftlexport/internal/browser"
	"github.com/pistekit/ftlexport/internal/config"
	"github.com/pistekit/ftlexport/internal/database"
	"github.com/pistekit/ftlexport/internal/ftl"
	"github.com/pistekit/ftlexport/internal/log"
	"github.com/pistekit/ftlexport/internal/model"
	"github.com/pistekit/ftlexport/internal/pipeline"
	"github.com/pistekit/ftlexport/internal/report"
	"github.com/pistekit/ftlexport/internal/scraper"
	"github.com/spf13/cobra"
)

// Environment variables read at startup. A .env file in the working
// directory is loaded first (see main), so containers can set these
// without flags.
const (
	envOutputDir   = "FTLEXPORT_OUTPUT"
	envChromePath  = "FTLEXPORT_CHROME"
	envPostgresDSN = "FTLEXPORT_PG_DSN"
)

// Summary format names accepted by --format.
const (
	formatCSV      = "csv"
	formatJSON     = "json"
	formatMarkdown = "markdown"
)

// exportSelection names the report types an export command produces.
// Each command constructor fixes its own selection; the rest of the
// export path is shared.
type exportSelection struct {
	results bool
	pools   bool
	tableau bool
}

// addExportFlags registers the flags every export command shares.
// They are declared per command rather than persistently so that
// non-export commands like history and init do not advertise them.
func addExportFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("output", "o", "",
		"Directory for CSV files (default: current directory, env: FTLEXPORT_OUTPUT)")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: ftlexport.yml in current or XDG config directory)")
	cmd.Flags().String("format", formatCSV,
		"Summary format: csv (console summary), json, or markdown")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each page navigation or HTTP fetch")
	cmd.Flags().Duration("delay", config.DefaultNavigationDelay,
		"Settle time after navigation before the page is read")
	cmd.Flags().Bool("no-headless", false,
		"Run the browser with a visible window")
	cmd.Flags().BoolP("quiet", "q", false,
		"Suppress the summary output on stdout")
	cmd.Flags().String("db", "",
		"Export history database path (default: ftlexport.db in the XDG data directory)")
	cmd.Flags().Bool("no-history", false,
		"Do not record this export in the history database")
	cmd.Flags().String("base-url", "",
		"FencingTimeLive origin override, mainly for testing")
	cmd.Flags().String("report-file", "",
		"Write the summary to this file instead of stdout (creates directories if needed)")
}

// runExportCmd is the shared RunE body of the export commands.
func runExportCmd(cmd *cobra.Command, args []string, sel exportSelection) error {
	// Build config from flags, environment, and the optional config file
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	// The command decides which report types run
	cfg.ExportResults = sel.results
	cfg.ExportPools = sel.pools
	cfg.ExportTableau = sel.tableau

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging
	verbose := getVerboseFlag(cmd)
	cfg.Verbose = verbose
	logger := setupLogger(verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runExport(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags, environment
// variables, and the optional config file. Precedence per setting:
// flag, then environment, then config file, then built-in default.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	// Get flag values
	var err error

	cfg.OutputDir, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = os.Getenv(envOutputDir)
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return nil, err
	}
	if err := applyFormat(cfg, format); err != nil {
		return nil, err
	}

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.NavigationDelay, err = cmd.Flags().GetDuration("delay")
	if err != nil {
		return nil, err
	}

	noHeadless, err := cmd.Flags().GetBool("no-headless")
	if err != nil {
		return nil, err
	}
	cfg.Headless = !noHeadless

	cfg.Quiet, err = cmd.Flags().GetBool("quiet")
	if err != nil {
		return nil, err
	}

	cfg.DatabasePath, err = cmd.Flags().GetString("db")
	if err != nil {
		return nil, err
	}

	noHistory, err := cmd.Flags().GetBool("no-history")
	if err != nil {
		return nil, err
	}
	cfg.SaveHistory = !noHistory

	baseURL, err := cmd.Flags().GetString("base-url")
	if err != nil {
		return nil, err
	}
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	cfg.ReportFile, err = cmd.Flags().GetString("report-file")
	if err != nil {
		return nil, err
	}

	// Only the all command registers --concurrency
	if cmd.Flags().Lookup("concurrency") != nil {
		cfg.BatchSize, err = cmd.Flags().GetInt("concurrency")
		if err != nil {
			return nil, err
		}
	}

	// Environment for settings that normally come from the container
	cfg.ChromePath = os.Getenv(envChromePath)
	cfg.PostgresDSN = os.Getenv(envPostgresDSN)

	// Load overrides from the config file.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently run on defaults if no file found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.Overrides, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		applyFileOverrides(cfg)
	} else if explicitConfigPath {
		// User explicitly specified a config file that doesn't exist
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	// Get positional arguments (tournament schedule URLs)
	cfg.Targets = args

	return cfg, nil
}

// applyFileOverrides copies config file values into fields that flags
// and environment variables left alone. Selector overrides stay in
// cfg.Overrides and are merged lazily by cfg.Selectors().
func applyFileOverrides(cfg *config.Config) {
	f := cfg.Overrides
	if f == nil {
		return
	}
	if f.BaseURL != "" && cfg.BaseURL == config.DefaultBaseURL {
		cfg.BaseURL = f.BaseURL
	}
	if f.OutputDir != "" && cfg.OutputDir == "" {
		cfg.OutputDir = f.OutputDir
	}
	if f.UserAgent != "" {
		cfg.UserAgent = f.UserAgent
	}
	if f.PostgresDSN != "" && cfg.PostgresDSN == "" {
		cfg.PostgresDSN = f.PostgresDSN
	}
}

// applyFormat maps the --format value onto the summary format toggles.
func applyFormat(cfg *config.Config, format string) error {
	switch format {
	case "", formatCSV:
		// Human-readable console summary, the default
	case formatJSON:
		cfg.JSONReport = true
	case formatMarkdown:
		cfg.MarkdownReport = true
	default:
		return fmt.Errorf("unknown format %q (want csv, json, or markdown)", format)
	}
	return nil
}

// setupLogger creates the process logger. The trimming handler keeps
// rendered page HTML from flooding log output.
func setupLogger(verbose bool) *slog.Logger {
	return log.NewLogger(os.Stderr, verbose)
}

// runExport executes the export.
func runExport(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if len(cfg.Targets) == 0 {
		return errors.New("no targets provided (specify one or more tournament schedule URLs as arguments)")
	}

	// Validate all tournament URLs before any browser work
	for i, target := range cfg.Targets {
		target = strings.TrimSpace(target)
		if _, err := ftl.ParseTournamentURL(target); err != nil {
			return err
		}
		cfg.Targets[i] = target
	}

	logger.Info("starting export",
		"targets", cfg.Targets,
		"results", cfg.ExportResults,
		"pools", cfg.ExportPools,
		"tableau", cfg.ExportTableau,
		"outputDir", cfg.OutputDir,
	)

	// Open the history database unless disabled
	var history *database.HistoryDB
	if cfg.SaveHistory {
		var err error
		history, err = database.Open(cfg.ResolvedDatabasePath(), database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open history database: %w", err)
		}
		defer history.Close()
		logger.Info("history database opened", "path", history.Path())
	}

	// The Postgres mirror is best-effort; an unreachable mirror is
	// reported but never blocks an export
	var mirror *database.Mirror
	if cfg.PostgresDSN != "" {
		var err error
		mirror, err = database.OpenMirror(ctx, cfg.PostgresDSN)
		if err != nil {
			logger.Warn("history mirror unavailable", "error", err)
		} else {
			defer mirror.Close()
			logger.Info("history mirror connected")
		}
	}

	sc, err := scraper.NewScraper(cfg.BaseURL, cfg.Selectors())
	if err != nil {
		return err
	}

	// One browser session serves every tournament in the run
	b, err := browser.New(ctx,
		browser.WithHeadless(cfg.Headless),
		browser.WithUserAgent(cfg.UserAgent),
		browser.WithExecPath(cfg.ChromePath),
		browser.WithTimeout(cfg.Timeout),
		browser.WithNavigationDelay(cfg.NavigationDelay),
		browser.WithViewport(cfg.ViewportWidth, cfg.ViewportHeight),
		browser.WithWideViewport(cfg.TableauViewportWidth, cfg.TableauViewportHeight),
		browser.WithRequestsPerSecond(cfg.RequestsPerSecond),
	)
	if err != nil {
		return err
	}
	defer func() {
		if err := b.Close(); err != nil {
			logger.Error("failed to close browser", "error", err)
		}
	}()

	deps := pipeline.ExportDeps{
		Fetcher: b,
		Client:  ftl.NewClient(cfg),
		Scraper: sc,
		History: history,
		Mirror:  mirror,
	}

	// Use the batch processor for parallel exports if multiple targets
	if len(cfg.Targets) > 1 && cfg.BatchSize > 1 {
		return runBatchExport(ctx, cfg, deps, logger)
	}

	// Single target or sequential exporting
	return runSequentialExport(ctx, cfg, deps, logger)
}

// runSequentialExport exports targets one at a time. A failed tournament
// does not stop the ones after it; the collected failures drive the
// exit code instead.
func runSequentialExport(ctx context.Context, cfg *config.Config, deps pipeline.ExportDeps, logger *slog.Logger) error {
	var failures []error

	for _, target := range cfg.Targets {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		p := pipeline.ExportPipeline(deps, cfg,
			pipeline.WithLogger(logger),
			pipeline.WithContinueOnError(true),
		)
		exportReport := model.NewExportReport(target)

		if !cfg.Quiet {
			fmt.Printf("Exporting %s...\n", target)
		}
		startTime := time.Now()

		// Execute the pipeline. Step failures land in the report; an
		// error here means the run itself was cancelled.
		if err := p.Execute(ctx, exportReport); err != nil {
			logger.Error("export failed", "target", target, "error", err)
			fmt.Fprintf(os.Stderr, "Export error for %s: %v\n", target, err)
			failures = append(failures, fmt.Errorf("%s: %w", target, err))
			continue
		}

		elapsed := time.Since(startTime)
		if exportReport.Error != nil {
			fmt.Fprintf(os.Stderr, "Export error for %s: %v\n", target, exportReport.Error)
			failures = append(failures, fmt.Errorf("%s: %w", target, exportReport.Error))
		} else if !cfg.Quiet {
			fmt.Printf("Export completed in %s\n\n", elapsed.Round(time.Millisecond))
		}

		// Generate and output the summary
		if err := outputSummary(cfg, exportReport); err != nil {
			logger.Error("summary failed", "target", target, "error", err)
			failures = append(failures, fmt.Errorf("%s: %w", target, err))
		}
	}

	return errors.Join(failures...)
}

// runBatchExport exports multiple tournaments concurrently using
// BatchProcessor. Per-tournament failures arrive through each report's
// Error field, so they are collected here to keep the exit code honest.
func runBatchExport(ctx context.Context, cfg *config.Config, deps pipeline.ExportDeps, logger *slog.Logger) error {
	if !cfg.Quiet {
		fmt.Printf("Starting batch export of %d tournaments (concurrency: %d)...\n\n",
			len(cfg.Targets), cfg.BatchSize)
	}

	startTime := time.Now()

	// Create batch processor with pipeline factory
	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline {
			return pipeline.ExportPipeline(deps, cfg,
				pipeline.WithLogger(logger),
				pipeline.WithContinueOnError(true),
			)
		},
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	// Process with callback for streaming output. The callback runs on
	// worker goroutines, so shared state stays behind the mutex.
	var mu sync.Mutex
	var failures []error
	err := bp.ProcessBatchWithCallback(ctx, cfg.Targets, func(exportReport *model.ExportReport, index int) {
		mu.Lock()
		defer mu.Unlock()

		if exportReport.Error != nil {
			fmt.Fprintf(os.Stderr, "[%d/%d] Export failed: %s: %v\n",
				index+1, len(cfg.Targets), exportReport.Tournament.URL, exportReport.Error)
			failures = append(failures, fmt.Errorf("%s: %w", exportReport.Tournament.URL, exportReport.Error))
			return
		}

		if !cfg.Quiet {
			fmt.Printf("[%d/%d] Export completed: %s\n",
				index+1, len(cfg.Targets), exportReport.Tournament.Name)
		}

		// Generate and output the summary
		if err := outputSummary(cfg, exportReport); err != nil {
			logger.Error("summary failed", "target", exportReport.Tournament.URL, "error", err)
			failures = append(failures, fmt.Errorf("%s: %w", exportReport.Tournament.URL, err))
		}
	})
	if err != nil {
		failures = append(failures, err)
	}

	elapsed := time.Since(startTime)
	if !cfg.Quiet {
		fmt.Printf("\nBatch export completed in %s\n", elapsed.Round(time.Millisecond))
	}

	return errors.Join(failures...)
}

// outputSummary writes the export summary in the requested format.
// Quiet suppresses the stdout summary, but a --report-file is still
// written; the CSV files themselves are untouched by either.
func outputSummary(cfg *config.Config, exportReport *model.ExportReport) error {
	// Determine output destination
	var output *os.File
	if cfg.ReportFile != "" {
		// Create directories if they don't exist
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create report directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		if cfg.Quiet {
			return nil
		}
		output = os.Stdout
	}

	return writeSummary(output, cfg, exportReport)
}

// writeSummary renders the report to the writer in the configured format.
func writeSummary(output io.Writer, cfg *config.Config, exportReport *model.ExportReport) error {
	// JSON output carries the full report with every extracted row
	if cfg.JSONReport {
		w := report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
		_, err := w.Write(exportReport)
		return err
	}

	// Markdown output
	if cfg.MarkdownReport {
		w := report.NewMarkdownWriter(output)
		_, err := w.Write(exportReport)
		return err
	}

	// Human-readable summary (default)
	w := report.NewConsoleWriter(output, report.WithVerbose(cfg.Verbose))
	_, err := w.Write(exportReport)
	return err
}
