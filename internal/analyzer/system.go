package analyzer

import (
	"context"
	"log/slog"
	"time"

	"github.com/a11yscan/a11yscan/internal/model"
)

// System defines the interface for an analysis system. Each system
// owns one family of accessibility checks and runs independently of
// the others against the shared AnalysisData.
//
// Design decision: We use an interface rather than concrete types because:
//  1. The coordinator fans out to systems without knowing their checks
//  2. Tests can swap in stub systems to exercise aggregation behavior
//  3. New rule families slot in without touching the coordinator
type System interface {
	// Name returns the system's name for logging, budgets, and the
	// per-system slots on the unified result.
	Name() string

	// Analyze runs the system's checks on the provided data.
	// It returns issues discovered during analysis. The only error a
	// well-behaved system returns is context cancellation; everything
	// else is handled internally by dropping the failing check.
	Analyze(ctx context.Context, data *AnalysisData) (*model.AnalyzerResult, error)
}

// check pairs a named detection function with the name used when
// logging its failure.
type check struct {
	name string
	run  func(*AnalysisData) []model.AccessibilityIssue
}

// runChecks runs a system's checks in order and bundles their issues
// into an AnalyzerResult. A panicking check is logged and skipped so
// one broken rule cannot take down the scan; only context cancellation
// aborts the run.
func runChecks(ctx context.Context, logger *slog.Logger, system string, data *AnalysisData, checks []check) (*model.AnalyzerResult, error) {
	start := time.Now()

	if data == nil || data.Context == nil || data.Context.Document == nil {
		return emptyResult(system), nil
	}

	issues := make([]model.AccessibilityIssue, 0)
	for _, c := range checks {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		issues = append(issues, runCheck(logger, system, c, data)...)
	}

	return &model.AnalyzerResult{
		Analyzer:  system,
		Score:     subScore(issues),
		Duration:  time.Since(start),
		Issues:    issues,
		Counts:    model.CountBySeverity(issues),
		Timestamp: time.Now(),
	}, nil
}

// runCheck executes one check, converting a panic into an empty issue
// list for that check.
func runCheck(logger *slog.Logger, system string, c check, data *AnalysisData) (issues []model.AccessibilityIssue) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("check panicked, skipping",
				"system", system,
				"check", c.name,
				"panic", r)
			issues = nil
		}
	}()
	return c.run(data)
}

// emptyResult is the well-typed zero outcome for a system that had
// nothing to analyze or could not run: no issues and a clean score.
func emptyResult(system string) *model.AnalyzerResult {
	return &model.AnalyzerResult{
		Analyzer:  system,
		Score:     100,
		Issues:    make([]model.AccessibilityIssue, 0),
		Timestamp: time.Now(),
	}
}
