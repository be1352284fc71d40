package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pistekit/ftlexport/internal/model"
)

// BatchProcessor handles concurrent exports of multiple tournaments.
// It uses errgroup to manage goroutines and respect concurrency limits.
//
// Design decision: We use a separate BatchProcessor rather than adding
// batch functionality to Pipeline because:
// 1. It keeps the Pipeline focused on single-tournament execution
// 2. It allows different batch strategies (e.g., rate limiting, retries)
// 3. It provides cleaner separation of concerns
type BatchProcessor struct {
	// pipelineFactory creates a new pipeline for each export.
	// We use a factory to ensure each export gets a fresh pipeline instance.
	pipelineFactory func() *Pipeline

	// concurrency is the maximum number of concurrent exports.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger

	// results stores completed export reports.
	// Access is synchronized via mutex.
	results []*model.ExportReport
	mu      sync.Mutex
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent exports.
// Default is 2 if not specified.
//
// Design decision: The default is deliberately low. Every export drives
// tabs in the one shared browser process and hits the same site, so wide
// batches mostly move the bottleneck rather than remove it.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
//
// The pipelineFactory function is called for each export to create a
// fresh pipeline instance. This ensures that pipeline state doesn't leak
// between exports and allows for per-export customization if needed.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     2,
		results:         make([]*model.ExportReport, 0),
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch exports multiple tournaments concurrently.
// It respects the configured concurrency limit and context cancellation.
//
// Design decision: We use errgroup.SetLimit rather than a worker pool
// because it's simpler and errgroup handles the concurrency correctly.
// Each tournament gets its own goroutine, but only 'concurrency'
// goroutines run simultaneously.
//
// Returns one report per URL in input order, even for tournaments that
// failed; a report slot is nil only when cancellation stopped its export
// from ever starting. The error return joins the per-tournament failures
// so callers can exit non-zero, and a single failure never cancels the
// exports running beside it.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, urls []string) ([]*model.ExportReport, error) {
	bp.logger.Info("starting batch export",
		"total_tournaments", len(urls),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	// Pre-allocate results slice to maintain order
	bp.results = make([]*model.ExportReport, len(urls))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, target := range urls {
		g.Go(func() error {
			// Check for cancellation before starting
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			bp.logger.Info("exporting tournament",
				"tournament", target,
				"index", i+1,
				"total", len(urls),
			)

			// Create report for this tournament
			report := model.NewExportReport(target)

			// Create and execute pipeline
			pipeline := bp.pipelineFactory()
			err := pipeline.Execute(ctx, report)

			// Store result regardless of error
			// The report contains error information if the export failed
			bp.mu.Lock()
			bp.results[i] = report
			bp.mu.Unlock()

			if err != nil {
				bp.logger.Warn("export failed",
					"tournament", target,
					"error", err,
				)
				// Don't return error to errgroup - we want the other
				// exports to keep running. The error is joined below.
				return nil
			}

			bp.logger.Info("export completed",
				"tournament", target,
				"rows", report.TotalRows(),
			)

			return nil
		})
	}

	// Wait for all exports to complete
	waitErr := g.Wait()

	elapsed := time.Since(startTime)
	bp.logger.Info("batch export complete",
		"total_tournaments", len(urls),
		"elapsed", elapsed,
	)

	// Join per-tournament failures so the caller sees them all at once
	errs := make([]error, 0, len(bp.results)+1)
	if waitErr != nil {
		errs = append(errs, waitErr)
	}
	for _, report := range bp.results {
		if report != nil && report.Error != nil {
			errs = append(errs, fmt.Errorf("%s: %w", report.Tournament.URL, report.Error))
		}
	}

	return bp.results, errors.Join(errs...)
}

// ProcessBatchWithCallback exports multiple tournaments and calls a
// callback for each completed export. This is useful for streaming
// results to a terminal as they finish rather than after the whole batch.
//
// The callback receives the report and the index of the tournament in
// the original slice. The callback is called from the goroutine that
// completed the export, so it should be thread-safe if it accesses
// shared state.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	urls []string,
	callback func(report *model.ExportReport, index int),
) error {
	bp.logger.Info("starting batch export with callback",
		"total_tournaments", len(urls),
		"concurrency", bp.concurrency,
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, target := range urls {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			report := model.NewExportReport(target)
			pipeline := bp.pipelineFactory()
			_ = pipeline.Execute(ctx, report) //nolint:errcheck // Error is stored in report

			// Call the callback with the result
			callback(report, i)

			return nil
		})
	}

	return g.Wait()
}
