package analyzer

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/a11yscan/a11yscan/internal/config"
	"github.com/a11yscan/a11yscan/internal/dom"
	"github.com/a11yscan/a11yscan/internal/model"
)

// Target is one page queued for batch analysis.
type Target struct {
	// URL labels the page in results and logs.
	URL string

	// Document is the parsed page.
	Document *dom.Document
}

// BatchRunner analyzes multiple documents concurrently. It uses
// errgroup to manage goroutines and respect the concurrency limit.
//
// Design decision: We use a separate BatchRunner rather than adding
// batch functionality to Coordinator because:
//  1. It keeps the Coordinator focused on single-scan execution
//  2. A coordinator is single-flight; batches need one per scan
//  3. It allows different batch strategies later (rate limits, retries)
type BatchRunner struct {
	// coordinatorFactory creates a fresh coordinator for each scan.
	// We use a factory because coordinators hold per-scan state.
	coordinatorFactory func() *Coordinator

	// concurrency is the maximum number of concurrent scans.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger

	// results stores completed scan results.
	// Access is synchronized via mutex.
	results []*model.UnifiedAnalysisResult
	mu      sync.Mutex
}

// BatchOption configures a BatchRunner.
type BatchOption func(*BatchRunner)

// WithBatchLogger sets a custom logger for batch runs.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchRunner) {
		b.logger = logger
	}
}

// WithBatchConcurrency sets the maximum number of concurrent scans.
func WithBatchConcurrency(n int) BatchOption {
	return func(b *BatchRunner) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchRunner creates a BatchRunner.
//
// The coordinatorFactory function is called for each scan to create a
// fresh coordinator, so scan state never leaks between pages and the
// single-flight guard never trips.
func NewBatchRunner(coordinatorFactory func() *Coordinator, opts ...BatchOption) *BatchRunner {
	b := &BatchRunner{
		coordinatorFactory: coordinatorFactory,
		concurrency:        config.DefaultBatchSize,
		results:            make([]*model.UnifiedAnalysisResult, 0),
	}

	for _, opt := range opts {
		opt(b)
	}

	if b.logger == nil {
		b.logger = slog.Default()
	}
	return b
}

// Run analyzes the targets concurrently and returns their results in
// target order. A failed page leaves a nil slot and is logged; only
// cancellation aborts the batch.
func (b *BatchRunner) Run(ctx context.Context, targets []Target) ([]*model.UnifiedAnalysisResult, error) {
	b.logger.Info("starting batch analysis",
		"total_targets", len(targets),
		"concurrency", b.concurrency,
	)
	startTime := time.Now()

	// Pre-allocate results to maintain target order.
	b.results = make([]*model.UnifiedAnalysisResult, len(targets))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for i, target := range targets {
		i, target := i, target
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			b.logger.Info("analyzing page",
				"url", target.URL,
				"index", i+1,
				"total", len(targets),
			)

			coordinator := b.coordinatorFactory()
			result, err := coordinator.AnalyzeAccessibility(ctx, target.Document, target.URL, nil)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				// Don't return the error to the errgroup - we want the
				// other pages to finish.
				b.logger.Warn("page analysis failed",
					"url", target.URL,
					"error", err,
				)
				return nil
			}

			b.mu.Lock()
			b.results[i] = result
			b.mu.Unlock()
			return nil
		})
	}

	err := g.Wait()

	b.logger.Info("batch analysis complete",
		"total_targets", len(targets),
		"elapsed", time.Since(startTime),
	)
	return b.results, err
}

// RunWithCallback analyzes the targets and calls the callback for each
// completed page. This is useful for streaming results as they finish.
//
// The callback receives the result, or nil when the page failed, and
// the target's index in the original slice. It is called from the
// goroutine that completed the scan, so it must be safe for concurrent
// use when it touches shared state.
func (b *BatchRunner) RunWithCallback(
	ctx context.Context,
	targets []Target,
	callback func(result *model.UnifiedAnalysisResult, index int),
) error {
	b.logger.Info("starting batch analysis with callback",
		"total_targets", len(targets),
		"concurrency", b.concurrency,
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for i, target := range targets {
		i, target := i, target
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			coordinator := b.coordinatorFactory()
			result, err := coordinator.AnalyzeAccessibility(ctx, target.Document, target.URL, nil)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				b.logger.Warn("page analysis failed",
					"url", target.URL,
					"error", err,
				)
			}

			callback(result, i)
			return nil
		})
	}
	return g.Wait()
}
