package model

import (
	"sort"
	"time"
)

// AnalyzerResult is the output bundle of one analysis system: its issues,
// sub-score, and timing. The coordinator aggregates three of these into a
// UnifiedAnalysisResult.
type AnalyzerResult struct {
	// Analyzer is the producing system's name (scanner, content, visual).
	Analyzer string `json:"analyzer"`

	// Score is the system's sub-score over its own issue list, 0-100.
	Score float64 `json:"score"`

	// Duration is how long the system's Analyze call took.
	Duration time.Duration `json:"duration"`

	// Issues is the system's issue list, before cross-system deduplication.
	Issues []AccessibilityIssue `json:"issues"`

	// Counts tallies Issues by severity.
	Counts SeverityCounts `json:"counts"`

	// Timestamp is when the analysis completed.
	Timestamp time.Time `json:"timestamp"`
}

// PartitionBySeverity splits the result's issues into per-severity lists.
func (r *AnalyzerResult) PartitionBySeverity() map[Severity][]AccessibilityIssue {
	parts := make(map[Severity][]AccessibilityIssue)
	for _, issue := range r.Issues {
		parts[issue.Severity] = append(parts[issue.Severity], issue)
	}
	return parts
}

// ScanStats records how much of the document a scan covered.
// Coverage scales the overall score so partial scans cannot report
// spuriously high compliance.
type ScanStats struct {
	// TotalElements is the number of element nodes in the document.
	TotalElements int `json:"totalElements"`

	// ProcessedElements is the number of element nodes the context builder
	// actually examined.
	ProcessedElements int `json:"processedElements"`

	// Coverage is ProcessedElements/TotalElements, or 1 for an empty
	// document.
	Coverage float64 `json:"coverage"`
}

// UnifiedAnalysisResult is the final product of one coordinator run: the
// deduplicated issue list, its groupings, the per-system results, and the
// overall compliance score. A new result replaces the previous one; the
// core retains no history.
type UnifiedAnalysisResult struct {
	// URL identifies the analyzed page.
	URL string `json:"url"`

	// Title is the page title, if any.
	Title string `json:"title,omitempty"`

	// Timestamp is when the scan started.
	Timestamp time.Time `json:"timestamp"`

	// Duration is the end-to-end scan time.
	Duration time.Duration `json:"duration"`

	// OverallScore is the compliance score, 0-100.
	OverallScore float64 `json:"overallScore"`

	// Issues is the aggregated, deduplicated issue list ordered by severity
	// (critical first), then category, then XPath.
	Issues []AccessibilityIssue `json:"issues"`

	// IssuesByCategory groups Issues by reporting category.
	IssuesByCategory map[Category][]AccessibilityIssue `json:"issuesByCategory"`

	// IssuesBySeverity groups Issues by severity level.
	IssuesBySeverity map[Severity][]AccessibilityIssue `json:"issuesBySeverity"`

	// Counts tallies Issues by severity.
	Counts SeverityCounts `json:"counts"`

	// Scanner is the primary WCAG rule set's result.
	Scanner *AnalyzerResult `json:"scanner,omitempty"`

	// Content is the content-structure system's result.
	Content *AnalyzerResult `json:"content,omitempty"`

	// Visual is the visual-analysis system's result.
	Visual *AnalyzerResult `json:"visual,omitempty"`

	// Stats records scan coverage.
	Stats ScanStats `json:"stats"`
}

// NewUnifiedAnalysisResult creates an empty result for a page. The zero
// issue list and score 100 are the correct outcome for an empty document.
func NewUnifiedAnalysisResult(url, title string) *UnifiedAnalysisResult {
	return &UnifiedAnalysisResult{
		URL:              url,
		Title:            title,
		Timestamp:        time.Now(),
		OverallScore:     100,
		Issues:           make([]AccessibilityIssue, 0),
		IssuesByCategory: make(map[Category][]AccessibilityIssue),
		IssuesBySeverity: make(map[Severity][]AccessibilityIssue),
		Stats:            ScanStats{Coverage: 1},
	}
}

// SetIssues installs the deduplicated issue list, rebuilding the orderings,
// groupings, and severity counts from it.
func (r *UnifiedAnalysisResult) SetIssues(issues []AccessibilityIssue) {
	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].Severity != issues[j].Severity {
			return issues[i].Severity > issues[j].Severity
		}
		if issues[i].Type != issues[j].Type {
			return issues[i].Type < issues[j].Type
		}
		return issues[i].Element.XPath < issues[j].Element.XPath
	})

	r.Issues = issues
	r.IssuesByCategory = make(map[Category][]AccessibilityIssue)
	r.IssuesBySeverity = make(map[Severity][]AccessibilityIssue)
	for _, issue := range issues {
		cat := issue.Type.Category()
		r.IssuesByCategory[cat] = append(r.IssuesByCategory[cat], issue)
		r.IssuesBySeverity[issue.Severity] = append(r.IssuesBySeverity[issue.Severity], issue)
	}
	r.Counts = CountBySeverity(issues)
}

// HasIssues reports whether any issue survived deduplication.
func (r *UnifiedAnalysisResult) HasIssues() bool {
	return len(r.Issues) > 0
}

// ProgressEvent is an advisory progress report emitted at pipeline stage
// boundaries. Consumers must not block: delivery never gates completion.
type ProgressEvent struct {
	// Stage names the pipeline stage that just completed.
	Stage string `json:"stage"`

	// Percentage is the estimated overall completion, 0-100.
	Percentage float64 `json:"percentage"`

	// CurrentTask is a human-readable description of the stage.
	CurrentTask string `json:"currentTask"`
}
