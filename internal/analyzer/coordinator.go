package analyzer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/a11yscan/a11yscan/internal/config"
	"github.com/a11yscan/a11yscan/internal/dom"
	"github.com/a11yscan/a11yscan/internal/metrics"
	"github.com/a11yscan/a11yscan/internal/model"
)

// ProgressFunc receives advisory progress events at stage boundaries.
// Delivery is serialized but synchronous; a consumer that blocks slows
// the scan, so hand off to a channel when in doubt.
type ProgressFunc func(model.ProgressEvent)

// Coordinator orchestrates one accessibility scan: a single context
// extraction fanned out to the analysis systems, then aggregation,
// deduplication, and scoring of their findings.
//
// Design decision: We run the systems through a coordinator rather than
// letting callers invoke them directly because:
//  1. The context extraction must happen exactly once per scan
//  2. Deduplication and scoring need every system's issues in one place
//  3. Budget accounting and progress reporting live at the scan level
//  4. The reentrancy guard protects the shared per-scan state
type Coordinator struct {
	cfg       *config.Config
	logger    *slog.Logger
	collector *metrics.Collector
	env       dom.Environment
	dom       *DOMAnalyzer
	systems   []System

	// running rejects overlapping scans on the same coordinator.
	running atomic.Bool

	// progressMu serializes progress delivery across the concurrently
	// finishing systems.
	progressMu sync.Mutex
}

// Option is a function that configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets a custom logger for the coordinator and the systems
// it builds.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

// WithMetrics sets the metrics collector. If not set, the coordinator
// creates its own.
func WithMetrics(collector *metrics.Collector) Option {
	return func(c *Coordinator) {
		c.collector = collector
	}
}

// WithEnvironment sets the rendering environment consulted for
// computed styles and geometry. If not set, the static cascade with
// the default viewport is used.
func WithEnvironment(env dom.Environment) Option {
	return func(c *Coordinator) {
		c.env = env
	}
}

// WithSystems replaces the built-in analysis systems. Used by tests
// and by callers embedding their own rule families.
func WithSystems(systems ...System) Option {
	return func(c *Coordinator) {
		c.systems = systems
	}
}

// NewCoordinator creates a Coordinator with the built-in systems:
// scanner, content, and visual.
func NewCoordinator(cfg *config.Config, opts ...Option) *Coordinator {
	if cfg == nil {
		cfg = config.NewConfig()
	}

	c := &Coordinator{cfg: cfg}
	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.collector == nil {
		c.collector = metrics.NewCollector()
	}
	c.dom = NewDOMAnalyzer(cfg, c.logger, c.env)
	if c.systems == nil {
		c.systems = []System{
			NewScanner(cfg, c.logger),
			NewContentAnalyzer(cfg, c.logger),
			NewVisualAnalyzer(cfg, c.logger),
		}
	}
	return c
}

// Metrics returns the coordinator's metrics collector.
func (c *Coordinator) Metrics() *metrics.Collector {
	return c.collector
}

// AnalyzeAccessibility scans one document and returns the unified
// result. A nil document and an overlapping scan are the only caller
// errors; the only runtime error is context cancellation. Everything
// else degrades into partial results, per-system empty results, or
// budget warnings.
func (c *Coordinator) AnalyzeAccessibility(ctx context.Context, doc *dom.Document, url string, progress ProgressFunc) (*model.UnifiedAnalysisResult, error) {
	if doc == nil {
		return nil, ErrNilDocument
	}
	if !c.running.CompareAndSwap(false, true) {
		return nil, ErrScanInProgress
	}
	defer c.running.Store(false)

	start := time.Now()
	c.logger.Info("starting accessibility scan", "url", url)

	extractStart := time.Now()
	data := c.dom.AnalyzePage(ctx, doc, url)
	c.noteBudget(metrics.StageDOM, time.Since(extractStart), c.cfg.DOMAnalysisBudget)
	c.emitProgress(progress, "context", 25, "Page context extracted")

	pc := data.Context

	// Result slots keep the fixed system order no matter which
	// system finishes first.
	results := make([]*model.AnalyzerResult, len(c.systems))
	var completed atomic.Int32

	g, gctx := errgroup.WithContext(ctx)
	for i, system := range c.systems {
		g.Go(func() error {
			sysStart := time.Now()
			result, err := system.Analyze(gctx, data)
			elapsed := time.Since(sysStart)

			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				// A misbehaving system costs its findings, not the scan.
				c.logger.Warn("analysis system failed",
					"system", system.Name(),
					"error", err)
				result = nil
			}
			if result == nil {
				result = emptyResult(system.Name())
			}
			results[i] = result

			c.noteBudget(system.Name(), elapsed, c.systemBudget(system.Name()))

			done := completed.Add(1)
			c.emitProgress(progress, system.Name(), 25+20*float64(done),
				fmt.Sprintf("%s analysis complete", system.Name()))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		c.collector.RecordScanError()
		return nil, fmt.Errorf("accessibility scan: %w", err)
	}

	merged := make([]model.AccessibilityIssue, 0)
	for _, r := range results {
		merged = append(merged, r.Issues...)
	}
	deduped := Deduplicate(merged)

	result := model.NewUnifiedAnalysisResult(url, pc.Title)
	result.Timestamp = start
	for _, r := range results {
		switch r.Analyzer {
		case "scanner":
			result.Scanner = r
		case "content":
			result.Content = r
		case "visual":
			result.Visual = r
		}
	}
	result.SetIssues(deduped)

	coverage := pc.Coverage()
	result.Stats = model.ScanStats{
		TotalElements:     pc.TotalElements,
		ProcessedElements: pc.ProcessedElements,
		Coverage:          coverage,
	}
	result.OverallScore = Score(deduped, coverage)
	result.Duration = time.Since(start)

	c.collector.RecordScan(result.Duration)
	c.collector.RecordElements(pc.ProcessedElements)
	for _, issue := range result.Issues {
		c.collector.RecordIssue(issue.Severity.String())
	}
	c.noteBudget(metrics.StageTotal, result.Duration, c.cfg.MaxScanTime)

	c.emitProgress(progress, "aggregation", 100, "Analysis complete")
	c.logger.Info("accessibility scan complete",
		"url", url,
		"score", result.OverallScore,
		"issues", len(result.Issues),
		"duration", result.Duration)

	return result, nil
}

// emitProgress delivers one progress event. Progress is advisory and
// never gates completion; a nil callback costs nothing.
func (c *Coordinator) emitProgress(progress ProgressFunc, stage string, pct float64, task string) {
	if progress == nil {
		return
	}
	c.progressMu.Lock()
	defer c.progressMu.Unlock()
	progress(model.ProgressEvent{Stage: stage, Percentage: pct, CurrentTask: task})
}

// systemBudget returns the advisory time budget for a system.
func (c *Coordinator) systemBudget(name string) time.Duration {
	switch name {
	case metrics.StageScanner:
		return c.cfg.ScannerBudget
	case metrics.StageContent:
		return c.cfg.ContentAnalysisBudget
	case metrics.StageVisual:
		return c.cfg.VisualAnalysisBudget
	}
	return 0
}

// noteBudget logs and counts a soft budget overrun. Budgets are
// advisory: a slow stage is reported, never cancelled, because a tree
// walk cannot be safely abandoned mid-element.
func (c *Coordinator) noteBudget(stage string, elapsed, budget time.Duration) {
	if budget <= 0 || elapsed <= budget {
		return
	}
	c.logger.Warn("stage exceeded its time budget",
		"stage", stage,
		"elapsed", elapsed,
		"budget", budget)
	c.collector.RecordBudgetOverrun(stage)
}

// Deduplicate collapses issues reporting the same logical defect: the
// same element XPath and the same issue type. The higher-confidence
// duplicate wins; on a confidence tie the higher severity wins.
//
// Design decision: We deduplicate by xpath+type rather than type alone because:
//  1. The same defect type on different elements is a distinct finding
//  2. The systems deliberately check overlapping rules
//  3. We want to keep the strongest claim about each defect
func Deduplicate(issues []model.AccessibilityIssue) []model.AccessibilityIssue {
	seen := make(map[string]int) // dedup key -> index in result
	result := make([]model.AccessibilityIssue, 0, len(issues))

	for _, issue := range issues {
		key := issue.DedupKey()
		idx, exists := seen[key]
		if !exists {
			seen[key] = len(result)
			result = append(result, issue)
			continue
		}
		kept := result[idx]
		if issue.Confidence > kept.Confidence ||
			(issue.Confidence == kept.Confidence && issue.Severity > kept.Severity) {
			result[idx] = issue
		}
	}
	return result
}
