package model

import (
	"time"

	"github.com/google/uuid"
)

// IssueType identifies the kind of accessibility defect an issue reports.
// The set is closed: analyzers must not invent new values at runtime.
//
// Design decision: We use a typed string rather than an int enum because
// issue types are the primary grouping key in reports and database rows,
// and their JSON form should be self-describing. Validity is enforced
// through Valid() and the issueInfoMapping table below.
type IssueType string

const (
	// IssueMissingAltText reports images without a usable text alternative.
	IssueMissingAltText IssueType = "missing-alt-text"

	// IssueInsufficientContrast reports text whose contrast ratio against its
	// effective background falls below the configured WCAG threshold.
	IssueInsufficientContrast IssueType = "insufficient-contrast"

	// IssueKeyboardInaccessible reports interactive elements that cannot be
	// reached or operated with a keyboard.
	IssueKeyboardInaccessible IssueType = "keyboard-inaccessible"

	// IssueMissingLabels reports form controls without an associated label.
	IssueMissingLabels IssueType = "missing-labels"

	// IssueInvalidARIA reports broken ARIA references, unknown role values,
	// and roles missing a required accessible name.
	IssueInvalidARIA IssueType = "invalid-aria"

	// IssueHeadingStructure reports heading hierarchy defects such as level
	// skips and pages that do not start at level 1.
	IssueHeadingStructure IssueType = "heading-structure"

	// IssueFocusManagement reports focus-order defects such as positive
	// tabindex values, autofocus, and missing skip links.
	IssueFocusManagement IssueType = "focus-management"

	// IssueSemanticMarkup reports semantic defects: landmark problems,
	// layout tables, duplicate IDs, page-language problems, media without
	// text alternatives.
	IssueSemanticMarkup IssueType = "semantic-markup"

	// IssueColorOnlyInformation reports information conveyed by color alone.
	IssueColorOnlyInformation IssueType = "color-only-information"

	// IssueTextSize reports text rendered too small to read comfortably.
	IssueTextSize IssueType = "text-size"

	// IssueLinkPurpose reports links whose text does not describe their
	// destination (empty links, "click here").
	IssueLinkPurpose IssueType = "link-purpose"

	// IssueFormValidation reports forms whose validation errors are not
	// programmatically associated with their controls.
	IssueFormValidation IssueType = "form-validation"
)

// Category groups issue types for reporting. Derived from IssueType via the
// issue info table; never set independently.
type Category string

const (
	// CategoryContrast covers color and contrast perception issues.
	CategoryContrast Category = "contrast"

	// CategoryKeyboard covers keyboard operability and focus order issues.
	CategoryKeyboard Category = "keyboard"

	// CategoryARIA covers ARIA attribute and role issues.
	CategoryARIA Category = "aria"

	// CategoryStructure covers heading, landmark, and markup semantics issues.
	CategoryStructure Category = "structure"

	// CategoryForms covers form labeling and validation issues.
	CategoryForms Category = "forms"

	// CategoryContent covers textual content issues such as link purpose.
	CategoryContent Category = "content"

	// CategoryVisual covers image, media, and text rendering issues.
	CategoryVisual Category = "visual"
)

// IssueInfo contains the static metadata for an issue type: its reporting
// category, default severity, the WCAG 2.1 success criteria it maps to, a
// user-impact description, and a generic fix suggestion.
type IssueInfo struct {
	Category Category
	Severity Severity
	WCAG     []string
	Impact   string
	Fix      string
}

// issueInfoMapping maps every issue type to its metadata.
// This centralized mapping keeps severity defaults and WCAG tagging
// consistent across the three analysis systems.
//
// Design decision: We use a map rather than embedding metadata at each
// detection site because:
// 1. It provides a single source of truth for severity defaults
// 2. Checks can still override severity for graded findings (contrast)
// 3. It doubles as the closed-set validity check for IssueType
var issueInfoMapping = map[IssueType]IssueInfo{
	IssueMissingAltText: {
		Category: CategoryVisual,
		Severity: SeverityHigh,
		WCAG:     []string{"1.1.1"},
		Impact:   "Screen reader users receive no information about the image content.",
		Fix:      "Add an alt attribute that describes the image, or alt=\"\" with role=\"presentation\" if it is decorative.",
	},
	IssueInsufficientContrast: {
		Category: CategoryContrast,
		Severity: SeverityHigh,
		WCAG:     []string{"1.4.3"},
		Impact:   "Users with low vision cannot distinguish the text from its background.",
		Fix:      "Increase the contrast between the text color and its effective background color.",
	},
	IssueKeyboardInaccessible: {
		Category: CategoryKeyboard,
		Severity: SeverityCritical,
		WCAG:     []string{"2.1.1"},
		Impact:   "Keyboard-only users cannot reach or operate the control at all.",
		Fix:      "Use a native interactive element, or add tabindex=\"0\" and keyboard event handling.",
	},
	IssueMissingLabels: {
		Category: CategoryForms,
		Severity: SeverityHigh,
		WCAG:     []string{"1.3.1", "3.3.2"},
		Impact:   "Screen reader users cannot tell what input the control expects.",
		Fix:      "Associate a <label for> with the control, wrap it in a <label>, or add aria-label/aria-labelledby.",
	},
	IssueInvalidARIA: {
		Category: CategoryARIA,
		Severity: SeverityHigh,
		WCAG:     []string{"4.1.2"},
		Impact:   "Assistive technologies receive broken or contradictory semantics.",
		Fix:      "Point ARIA reference attributes at existing IDs and use only valid role values.",
	},
	IssueHeadingStructure: {
		Category: CategoryStructure,
		Severity: SeverityMedium,
		WCAG:     []string{"1.3.1", "2.4.6"},
		Impact:   "Screen reader users navigating by headings get a misleading document outline.",
		Fix:      "Start the page at <h1> and never skip more than one heading level when nesting.",
	},
	IssueFocusManagement: {
		Category: CategoryKeyboard,
		Severity: SeverityMedium,
		WCAG:     []string{"2.4.3"},
		Impact:   "Keyboard focus moves in a surprising order or to surprising places.",
		Fix:      "Avoid positive tabindex values and let the DOM order define the tab sequence.",
	},
	IssueSemanticMarkup: {
		Category: CategoryStructure,
		Severity: SeverityMedium,
		WCAG:     []string{"1.3.1"},
		Impact:   "Assistive technologies cannot convey the structure the visual layout implies.",
		Fix:      "Use the semantic element or landmark role that matches the content's purpose.",
	},
	IssueColorOnlyInformation: {
		Category: CategoryVisual,
		Severity: SeverityMedium,
		WCAG:     []string{"1.4.1"},
		Impact:   "Colorblind users miss information that is conveyed only through color.",
		Fix:      "Pair color cues with text, underlines, icons, or other non-color indicators.",
	},
	IssueTextSize: {
		Category: CategoryVisual,
		Severity: SeverityLow,
		WCAG:     []string{"1.4.4"},
		Impact:   "Users with low vision struggle to read the text even after zooming.",
		Fix:      "Use a font size of at least 12px and relative units so text scales with user settings.",
	},
	IssueLinkPurpose: {
		Category: CategoryContent,
		Severity: SeverityMedium,
		WCAG:     []string{"2.4.4"},
		Impact:   "Screen reader users scanning a link list cannot tell where the link leads.",
		Fix:      "Write link text that describes the destination instead of generic phrases.",
	},
	IssueFormValidation: {
		Category: CategoryForms,
		Severity: SeverityMedium,
		WCAG:     []string{"3.3.1"},
		Impact:   "Users are not told which field failed validation or why.",
		Fix:      "Expose validation errors through aria-describedby or a role=\"alert\" region.",
	},
}

// Valid reports whether t is one of the defined issue types.
func (t IssueType) Valid() bool {
	_, ok := issueInfoMapping[t]
	return ok
}

// Category returns the reporting category for the issue type.
// Unknown types fall back to CategoryContent.
func (t IssueType) Category() Category {
	if info, ok := issueInfoMapping[t]; ok {
		return info.Category
	}
	return CategoryContent
}

// GetIssueInfo returns the full metadata for an issue type.
// Unknown types receive a conservative default rather than an error so a
// malformed issue can still be rendered.
func GetIssueInfo(t IssueType) IssueInfo {
	if info, ok := issueInfoMapping[t]; ok {
		return info
	}
	return IssueInfo{
		Category: CategoryContent,
		Severity: SeverityLow,
		Impact:   "Unknown issue type. Review manually.",
		Fix:      "Investigate the flagged element and assess impact.",
	}
}

// IssueTypes returns every defined issue type. The order is unspecified.
func IssueTypes() []IssueType {
	types := make([]IssueType, 0, len(issueInfoMapping))
	for t := range issueInfoMapping {
		types = append(types, t)
	}
	return types
}

// Rect is an element's bounding rectangle in CSS pixels. Coordinates are
// best-effort when produced by the static geometry estimator.
type Rect struct {
	// X is the horizontal offset of the left edge.
	X float64 `json:"x"`

	// Y is the vertical offset of the top edge.
	Y float64 `json:"y"`

	// Width is the rendered width.
	Width float64 `json:"width"`

	// Height is the rendered height.
	Height float64 `json:"height"`
}

// Empty reports whether the rectangle has no rendered area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// ElementInfo is an immutable snapshot of a DOM element taken at scan time.
// It is owned exclusively by the issue that references it and is never
// mutated after creation.
type ElementInfo struct {
	// Tag is the lowercase element tag name.
	Tag string `json:"tag"`

	// ID is the element's id attribute, if any.
	ID string `json:"id,omitempty"`

	// Class is the element's class attribute, if any.
	Class string `json:"class,omitempty"`

	// XPath locates the element in the tree via a sibling-index walk from
	// the document root, e.g. /html/body/div[2]/p[1].
	XPath string `json:"xpath"`

	// Text is a whitespace-collapsed snippet of the element's text content.
	Text string `json:"text,omitempty"`

	// Attributes holds all attributes present on the element.
	Attributes map[string]string `json:"attributes,omitempty"`

	// Rect is the element's bounding rectangle at scan time.
	Rect Rect `json:"rect"`

	// Visible records whether the element was rendered at scan time.
	Visible bool `json:"visible"`
}

// Attr returns the named attribute value, or "" when absent.
func (e ElementInfo) Attr(name string) string {
	return e.Attributes[name]
}

// HasAttr reports whether the named attribute is present, even when empty.
func (e ElementInfo) HasAttr(name string) bool {
	_, ok := e.Attributes[name]
	return ok
}

// AccessibilityIssue is a single detected defect.
//
// Severity and Confidence are independent axes: severity reflects user
// impact, confidence reflects detector certainty. Both are set on creation
// and never changed afterwards, except that deduplication may discard the
// lower-confidence duplicate of a pair.
type AccessibilityIssue struct {
	// ID uniquely identifies the issue within a scan.
	ID string `json:"id"`

	// Type is the closed-set issue classification.
	Type IssueType `json:"type"`

	// Severity is the user-impact grade.
	Severity Severity `json:"severity"`

	// Element is the snapshot of the offending element.
	Element ElementInfo `json:"element"`

	// Description explains the specific defect found on this element.
	Description string `json:"description"`

	// WCAGCriteria lists the WCAG 2.1 success criteria the issue violates.
	WCAGCriteria []string `json:"wcagCriteria"`

	// SuggestedFix describes how to resolve the issue.
	SuggestedFix string `json:"suggestedFix"`

	// DetectedAt is the detection timestamp.
	DetectedAt time.Time `json:"detectedAt"`

	// Confidence is the detector's certainty in [0,1] that this is a true
	// defect. Deterministic attribute checks use 0.95; weak text heuristics
	// go as low as 0.4.
	Confidence float64 `json:"confidence"`
}

// NewIssue creates an issue of the given type against an element snapshot,
// filling severity, WCAG criteria, and the suggested fix from the issue
// info table. Callers that grade severity per finding (contrast deficit)
// adjust the returned issue before publishing it.
func NewIssue(t IssueType, el ElementInfo, description string, confidence float64) AccessibilityIssue {
	info := GetIssueInfo(t)
	return AccessibilityIssue{
		ID:           uuid.NewString(),
		Type:         t,
		Severity:     info.Severity,
		Element:      el,
		Description:  description,
		WCAGCriteria: info.WCAG,
		SuggestedFix: info.Fix,
		DetectedAt:   time.Now(),
		Confidence:   confidence,
	}
}

// DedupKey identifies the logical defect an issue reports: two issues with
// the same element XPath and the same type describe the same problem.
func (i AccessibilityIssue) DedupKey() string {
	return i.Element.XPath + "|" + string(i.Type)
}
