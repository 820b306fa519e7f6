package model

import (
	"testing"
)

// TestNewUnifiedAnalysisResult tests the zero state of a fresh result.
func TestNewUnifiedAnalysisResult(t *testing.T) {
	t.Parallel()

	result := NewUnifiedAnalysisResult("https://example.com", "Example")

	if result.URL != "https://example.com" {
		t.Errorf("URL = %q, expected %q", result.URL, "https://example.com")
	}
	if result.Title != "Example" {
		t.Errorf("Title = %q, expected %q", result.Title, "Example")
	}
	if result.OverallScore != 100 {
		t.Errorf("OverallScore = %v, expected 100 for a result with no issues", result.OverallScore)
	}
	if result.Stats.Coverage != 1 {
		t.Errorf("Stats.Coverage = %v, expected 1", result.Stats.Coverage)
	}
	if result.HasIssues() {
		t.Error("HasIssues() = true, expected false for a fresh result")
	}
	if result.IssuesByCategory == nil || result.IssuesBySeverity == nil {
		t.Error("grouping maps are nil, expected initialized empty maps")
	}
	if result.Timestamp.IsZero() {
		t.Error("Timestamp is zero, expected it to be set")
	}
}

// TestSetIssues tests that SetIssues orders issues by severity and
// rebuilds the category and severity groupings.
func TestSetIssues(t *testing.T) {
	t.Parallel()

	issues := []AccessibilityIssue{
		NewIssue(IssueTextSize, ElementInfo{XPath: "/html/body/p[3]"}, "text below minimum size", 0.8),
		NewIssue(IssueKeyboardInaccessible, ElementInfo{XPath: "/html/body/div[1]"}, "click handler without keyboard support", 0.9),
		NewIssue(IssueMissingAltText, ElementInfo{XPath: "/html/body/img[1]"}, "image has no alt attribute", 0.95),
		NewIssue(IssueHeadingStructure, ElementInfo{XPath: "/html/body/h4[1]"}, "heading level skipped", 0.85),
	}

	result := NewUnifiedAnalysisResult("https://example.com", "Example")
	result.SetIssues(issues)

	if len(result.Issues) != 4 {
		t.Fatalf("len(Issues) = %d, expected 4", len(result.Issues))
	}

	// Critical first, then high, then medium, then low.
	expectedOrder := []IssueType{
		IssueKeyboardInaccessible,
		IssueMissingAltText,
		IssueHeadingStructure,
		IssueTextSize,
	}
	for i, expected := range expectedOrder {
		if result.Issues[i].Type != expected {
			t.Errorf("Issues[%d].Type = %q, expected %q", i, result.Issues[i].Type, expected)
		}
	}

	if len(result.IssuesBySeverity[SeverityCritical]) != 1 {
		t.Errorf("critical group has %d issues, expected 1", len(result.IssuesBySeverity[SeverityCritical]))
	}
	if len(result.IssuesByCategory[CategoryKeyboard]) != 1 {
		t.Errorf("keyboard group has %d issues, expected 1", len(result.IssuesByCategory[CategoryKeyboard]))
	}
	if result.Counts.Total != 4 {
		t.Errorf("Counts.Total = %d, expected 4", result.Counts.Total)
	}
	if !result.HasIssues() {
		t.Error("HasIssues() = false, expected true")
	}
}

// TestSetIssuesDeterministicOrder tests that issues with equal severity
// are ordered by type, then by element path.
func TestSetIssuesDeterministicOrder(t *testing.T) {
	t.Parallel()

	first := []AccessibilityIssue{
		NewIssue(IssueTextSize, ElementInfo{XPath: "/html/body/p[2]"}, "small text", 0.8),
		NewIssue(IssueTextSize, ElementInfo{XPath: "/html/body/p[1]"}, "small text", 0.8),
		NewIssue(IssueColorOnlyInformation, ElementInfo{XPath: "/html/body/span[1]"}, "color-only cue", 0.7),
	}
	second := []AccessibilityIssue{first[2], first[0], first[1]}

	a := NewUnifiedAnalysisResult("https://example.com", "")
	a.SetIssues(first)
	b := NewUnifiedAnalysisResult("https://example.com", "")
	b.SetIssues(second)

	for i := range a.Issues {
		if a.Issues[i].DedupKey() != b.Issues[i].DedupKey() {
			t.Errorf("position %d differs between insertion orders: %q vs %q",
				i, a.Issues[i].DedupKey(), b.Issues[i].DedupKey())
		}
	}
}

// TestAnalyzerResultPartitionBySeverity tests splitting analyzer output
// into per-severity buckets.
func TestAnalyzerResultPartitionBySeverity(t *testing.T) {
	t.Parallel()

	result := AnalyzerResult{
		Analyzer: "scanner",
		Issues: []AccessibilityIssue{
			{Severity: SeverityCritical},
			{Severity: SeverityLow},
			{Severity: SeverityCritical},
		},
	}

	buckets := result.PartitionBySeverity()

	if len(buckets[SeverityCritical]) != 2 {
		t.Errorf("critical bucket has %d issues, expected 2", len(buckets[SeverityCritical]))
	}
	if len(buckets[SeverityLow]) != 1 {
		t.Errorf("low bucket has %d issues, expected 1", len(buckets[SeverityLow]))
	}
	if len(buckets[SeverityHigh]) != 0 {
		t.Errorf("high bucket has %d issues, expected 0", len(buckets[SeverityHigh]))
	}
}

// TestFormControlInfoLabeled tests the four labeling mechanisms.
func TestFormControlInfoLabeled(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		control  FormControlInfo
		expected bool
	}{
		{
			name:     "label with for attribute",
			control:  FormControlInfo{HasLabelFor: true},
			expected: true,
		},
		{
			name:     "wrapped by label element",
			control:  FormControlInfo{WrappedByLabel: true},
			expected: true,
		},
		{
			name:     "aria-label",
			control:  FormControlInfo{AriaLabel: "Search terms"},
			expected: true,
		},
		{
			name:     "aria-labelledby",
			control:  FormControlInfo{AriaLabelledBy: "search-heading"},
			expected: true,
		},
		{
			name:     "no labeling mechanism",
			control:  FormControlInfo{},
			expected: false,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := tc.control.Labeled(); got != tc.expected {
				t.Errorf("Labeled() = %v, expected %v", got, tc.expected)
			}
		})
	}
}
