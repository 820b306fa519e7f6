package structure

import (
	"fmt"
	"strings"

	"github.com/a11yscan/a11yscan/internal/model"
)

// Rule confidences. Heading, landmark, and labeling rules read directly
// off extracted markup facts, so they approach certainty. The
// first-heading rule is a strong convention rather than a hard
// requirement, and carries slightly less.
const (
	confidenceDeterministic = 0.95
	confidenceConvention    = 0.85
)

// Validator evaluates the structural rule set. It holds no state, so a
// single instance may be shared across concurrent analyzers.
type Validator struct{}

// NewValidator creates a Validator.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateHeadings checks the heading outline: the first heading should
// be level 1, and no heading may sit more than one level deeper than the
// heading before it. Returning to a shallower level is always valid.
func (v *Validator) ValidateHeadings(headings []model.HeadingInfo) []Violation {
	violations := make([]Violation, 0)
	if len(headings) == 0 {
		return violations
	}

	if headings[0].Level != 1 {
		violations = append(violations, Violation{
			Rule:       model.IssueHeadingStructure,
			Element:    headings[0].Info,
			Detail:     fmt.Sprintf("The first heading on the page is <h%d>; pages should start with <h1>.", headings[0].Level),
			Confidence: confidenceConvention,
		})
	}

	for i := 1; i < len(headings); i++ {
		prev := headings[i-1].Level
		cur := headings[i].Level
		if cur > prev+1 {
			violations = append(violations, Violation{
				Rule:       model.IssueHeadingStructure,
				Element:    headings[i].Info,
				Detail:     fmt.Sprintf("Heading level skips from <h%d> to <h%d>; levels may only deepen one step at a time.", prev, cur),
				Confidence: confidenceDeterministic,
			})
		}
	}

	return violations
}

// ValidateLandmarks checks landmark composition: the page must have
// exactly one main region, and when several landmarks share the
// navigation, banner, or contentinfo role, each needs a distinct label
// so users can tell them apart. Page-scoped violations attach to the
// supplied page snapshot.
func (v *Validator) ValidateLandmarks(page model.ElementInfo, landmarks []model.LandmarkInfo) []Violation {
	violations := make([]Violation, 0)

	mains := 0
	for _, lm := range landmarks {
		if lm.Role == "main" {
			mains++
		}
	}
	switch {
	case mains == 0:
		violations = append(violations, Violation{
			Rule:       model.IssueSemanticMarkup,
			Element:    page,
			Detail:     "The page has no main landmark, so assistive technology users cannot jump to the primary content.",
			Confidence: confidenceDeterministic,
		})
	case mains > 1:
		seen := 0
		for _, lm := range landmarks {
			if lm.Role != "main" {
				continue
			}
			seen++
			if seen == 1 {
				continue
			}
			violations = append(violations, Violation{
				Rule:       model.IssueSemanticMarkup,
				Element:    lm.Info,
				Detail:     fmt.Sprintf("The page has %d main landmarks; exactly one is allowed.", mains),
				Confidence: confidenceDeterministic,
			})
		}
	}

	for _, role := range []string{"navigation", "banner", "contentinfo"} {
		violations = append(violations, v.checkDistinguishable(role, landmarks)...)
	}

	return violations
}

// checkDistinguishable flags same-role landmarks users cannot tell
// apart: when a role appears more than once, every instance needs a
// label, and the labels must differ.
func (v *Validator) checkDistinguishable(role string, landmarks []model.LandmarkInfo) []Violation {
	violations := make([]Violation, 0)

	same := make([]model.LandmarkInfo, 0)
	for _, lm := range landmarks {
		if lm.Role == role {
			same = append(same, lm)
		}
	}
	if len(same) < 2 {
		return violations
	}

	seen := make(map[string]bool, len(same))
	for _, lm := range same {
		label := strings.ToLower(strings.TrimSpace(lm.Label))
		switch {
		case label == "":
			violations = append(violations, Violation{
				Rule:       model.IssueSemanticMarkup,
				Element:    lm.Info,
				Detail:     fmt.Sprintf("The page has %d %s landmarks; each needs a distinct aria-label or aria-labelledby so users can tell them apart.", len(same), role),
				Confidence: confidenceDeterministic,
			})
		case seen[label]:
			violations = append(violations, Violation{
				Rule:       model.IssueSemanticMarkup,
				Element:    lm.Info,
				Detail:     fmt.Sprintf("Multiple %s landmarks share the label %q; labels must be unique within a role.", role, lm.Label),
				Confidence: confidenceDeterministic,
			})
		default:
			seen[label] = true
		}
	}

	return violations
}

// ValidateFormControls flags controls with no labeling mechanism at all:
// no <label for>, no wrapping <label>, no aria-label, and no
// aria-labelledby.
func (v *Validator) ValidateFormControls(controls []model.FormControlInfo) []Violation {
	violations := make([]Violation, 0)

	for _, c := range controls {
		if c.Labeled() {
			continue
		}
		what := c.Info.Tag
		if c.InputType != "" && c.Info.Tag == "input" {
			what = c.InputType + " input"
		}
		violations = append(violations, Violation{
			Rule:       model.IssueMissingLabels,
			Element:    c.Info,
			Detail:     fmt.Sprintf("The %s has no associated label: no <label for>, wrapping <label>, aria-label, or aria-labelledby.", what),
			Confidence: confidenceDeterministic,
		})
	}

	return violations
}
