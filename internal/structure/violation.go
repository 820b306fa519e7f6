package structure

import "github.com/a11yscan/a11yscan/internal/model"

// Violation is one structural rule breach. It carries the facts an
// analyzer needs to publish the breach as a reported issue.
type Violation struct {
	// Rule is the issue type the violation maps to.
	Rule model.IssueType

	// Element is the snapshot of the offending element. Page-scoped
	// rules, such as a missing main landmark, attach to the body
	// snapshot supplied by the caller.
	Element model.ElementInfo

	// Detail explains the specific breach on this element.
	Detail string

	// Confidence is the detector certainty in [0,1].
	Confidence float64
}

// Issue converts the violation into a reportable issue, filling
// severity, WCAG criteria, and the suggested fix from the issue type.
func (v Violation) Issue() model.AccessibilityIssue {
	return model.NewIssue(v.Rule, v.Element, v.Detail, v.Confidence)
}
