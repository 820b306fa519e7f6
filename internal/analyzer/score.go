package analyzer

import "github.com/a11yscan/a11yscan/internal/model"

// Score computes a compliance score from a deduplicated issue list and
// an analysis coverage fraction. The score starts at 100, loses each
// issue's severity penalty, floors at zero, and is then scaled by
// coverage so a partially analyzed page cannot claim a confidence it
// did not earn. The result is always within [0, 100].
func Score(issues []model.AccessibilityIssue, coverage float64) float64 {
	score := 100.0
	for _, issue := range issues {
		score -= issue.Severity.Penalty()
	}
	if score < 0 {
		score = 0
	}
	if coverage < 0 {
		coverage = 0
	} else if coverage > 1 {
		coverage = 1
	}
	return score * coverage
}

// subScore is the per-system score attached to an AnalyzerResult.
// Systems always report full coverage for the elements they saw; the
// coverage scaling happens once, on the merged result.
func subScore(issues []model.AccessibilityIssue) float64 {
	return Score(issues, 1)
}
