package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Pipeline stage names used as the "stage" label on budget overrun counters.
const (
	// StageDOM is the page context extraction stage.
	StageDOM = "dom"

	// StageScanner is the primary WCAG rule stage.
	StageScanner = "scanner"

	// StageContent is the content structure analysis stage.
	StageContent = "content"

	// StageVisual is the visual analysis stage.
	StageVisual = "visual"

	// StageTotal is the whole-scan budget.
	StageTotal = "scan"
)

// Collector instruments the analysis pipeline.
//
// Design decision: We register metrics on a private registry instead of
// the default global one because:
// 1. Batch runs and tests construct multiple collectors; registering the
//    same metric names on the global registry twice panics.
// 2. A private registry keeps the snapshot scoped to one scanner instance,
//    so numbers in reports reflect that run and nothing else.
type Collector struct {
	registry *prometheus.Registry

	scans        prometheus.Counter
	scanErrors   prometheus.Counter
	scanDuration prometheus.Histogram
	elements     prometheus.Counter
	overruns     *prometheus.CounterVec
	issues       *prometheus.CounterVec
}

// NewCollector creates a Collector with all pipeline metrics registered
// on a fresh registry.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Collector{
		registry: registry,
		scans: factory.NewCounter(prometheus.CounterOpts{
			Name: "a11yscan_scans_total",
			Help: "Total number of documents scanned successfully",
		}),
		scanErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "a11yscan_scan_errors_total",
			Help: "Total number of scans that failed",
		}),
		scanDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name: "a11yscan_scan_duration_seconds",
			Help: "Time taken to analyze one document",
			// From 1ms to ~4s; the advisory scan budget sits in the middle
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		}),
		elements: factory.NewCounter(prometheus.CounterOpts{
			Name: "a11yscan_elements_processed_total",
			Help: "Total number of DOM elements visited during extraction",
		}),
		overruns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "a11yscan_budget_overruns_total",
			Help: "Total number of times a stage exceeded its advisory time budget",
		}, []string{"stage"}),
		issues: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "a11yscan_issues_found_total",
			Help: "Total number of accessibility issues reported",
		}, []string{"severity"}),
	}
}

// Registry returns the private registry, for callers that want to expose
// or gather the raw metric families themselves.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// RecordScan counts one completed scan and observes its duration.
func (c *Collector) RecordScan(d time.Duration) {
	c.scans.Inc()
	c.scanDuration.Observe(d.Seconds())
}

// RecordScanError counts one failed scan.
func (c *Collector) RecordScanError() {
	c.scanErrors.Inc()
}

// RecordElements counts DOM elements visited during extraction.
func (c *Collector) RecordElements(n int) {
	if n > 0 {
		c.elements.Add(float64(n))
	}
}

// RecordBudgetOverrun counts one advisory budget overrun for a stage.
// Use the Stage constants as the stage name.
func (c *Collector) RecordBudgetOverrun(stage string) {
	c.overruns.WithLabelValues(stage).Inc()
}

// RecordIssue counts one reported issue under its severity label.
func (c *Collector) RecordIssue(severity string) {
	c.issues.WithLabelValues(severity).Inc()
}

// Snapshot is a plain-value view of the collector, suitable for logging
// at the end of a run or embedding in a report summary.
type Snapshot struct {
	// Scans is the number of documents scanned successfully.
	Scans uint64

	// ScanErrors is the number of scans that failed.
	ScanErrors uint64

	// ScanSeconds is the cumulative time spent analyzing documents.
	ScanSeconds float64

	// Elements is the number of DOM elements visited across all scans.
	Elements uint64

	// BudgetOverruns maps a stage name to its overrun count.
	BudgetOverruns map[string]uint64

	// IssuesBySeverity maps a severity name to its issue count.
	IssuesBySeverity map[string]uint64
}

// Snapshot gathers the current metric values.
func (c *Collector) Snapshot() (*Snapshot, error) {
	families, err := c.registry.Gather()
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		BudgetOverruns:   make(map[string]uint64),
		IssuesBySeverity: make(map[string]uint64),
	}
	for _, family := range families {
		switch family.GetName() {
		case "a11yscan_scans_total":
			snap.Scans = counterSum(family)
		case "a11yscan_scan_errors_total":
			snap.ScanErrors = counterSum(family)
		case "a11yscan_scan_duration_seconds":
			for _, m := range family.GetMetric() {
				snap.ScanSeconds += m.GetHistogram().GetSampleSum()
			}
		case "a11yscan_elements_processed_total":
			snap.Elements = counterSum(family)
		case "a11yscan_budget_overruns_total":
			fillLabeled(snap.BudgetOverruns, family, "stage")
		case "a11yscan_issues_found_total":
			fillLabeled(snap.IssuesBySeverity, family, "severity")
		}
	}
	return snap, nil
}

// counterSum adds up every child of a counter family.
func counterSum(family *dto.MetricFamily) uint64 {
	var total uint64
	for _, m := range family.GetMetric() {
		total += uint64(m.GetCounter().GetValue())
	}
	return total
}

// fillLabeled copies a labeled counter family into a map keyed by the
// given label name.
func fillLabeled(dst map[string]uint64, family *dto.MetricFamily, label string) {
	for _, m := range family.GetMetric() {
		key := ""
		for _, pair := range m.GetLabel() {
			if pair.GetName() == label {
				key = pair.GetValue()
				break
			}
		}
		dst[key] += uint64(m.GetCounter().GetValue())
	}
}
