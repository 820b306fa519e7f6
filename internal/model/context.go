package model

// ViewportInfo describes the viewport the page was analyzed against.
// Static scans use a default desktop viewport unless the document carries a
// parseable <meta name="viewport"> width or the host injects real values.
type ViewportInfo struct {
	// Width is the viewport width in CSS pixels.
	Width float64 `json:"width"`

	// Height is the viewport height in CSS pixels.
	Height float64 `json:"height"`
}

// HeadingInfo is a heading element plus its place in the inferred outline.
// Parent linkage is inferred from level ordering, not DOM nesting: an h3
// belongs to the nearest preceding heading with a smaller level.
type HeadingInfo struct {
	// Info is the heading element snapshot.
	Info ElementInfo `json:"info"`

	// Level is the heading level, 1 through 6.
	Level int `json:"level"`

	// Parent is the index of the parent heading in the page's heading list,
	// or -1 for top-level headings.
	Parent int `json:"parent"`
}

// LandmarkInfo is a landmark region with its resolved role and label.
type LandmarkInfo struct {
	// Info is the landmark element snapshot.
	Info ElementInfo `json:"info"`

	// Role is the landmark role: main, navigation, banner, contentinfo,
	// complementary, search, form, or region.
	Role string `json:"role"`

	// Label is the landmark's accessible name, if any.
	Label string `json:"label,omitempty"`

	// Implicit records whether the role was inferred from the tag
	// (<nav> -> navigation) rather than an explicit role attribute.
	Implicit bool `json:"implicit"`
}

// FocusableElementInfo is an element that can receive keyboard focus,
// with the facts needed to reason about tab order.
type FocusableElementInfo struct {
	// Info is the element snapshot.
	Info ElementInfo `json:"info"`

	// TabIndex is the parsed tabindex value; meaningful only when
	// TabIndexSet is true.
	TabIndex int `json:"tabIndex"`

	// TabIndexSet records whether a tabindex attribute was present and
	// parseable.
	TabIndexSet bool `json:"tabIndexSet"`

	// Native records whether the element is focusable without tabindex
	// (links with href, enabled form controls, and the like).
	Native bool `json:"native"`

	// InTabOrder records whether sequential keyboard navigation reaches
	// the element.
	InTabOrder bool `json:"inTabOrder"`
}

// FormControlInfo carries the labeling facts for one form control.
// The structure validator turns these into missing-labels violations;
// extracting facts and judging them are kept separate so the rule stays
// testable without a DOM.
type FormControlInfo struct {
	// Info is the control element snapshot.
	Info ElementInfo `json:"info"`

	// InputType is the input's type attribute (lowercase), or the tag name
	// for select/textarea/button controls.
	InputType string `json:"inputType"`

	// HasLabelFor records whether some <label for> references the
	// control's id.
	HasLabelFor bool `json:"hasLabelFor"`

	// WrappedByLabel records whether the control sits inside a <label>.
	WrappedByLabel bool `json:"wrappedByLabel"`

	// AriaLabel is the control's aria-label value, if any.
	AriaLabel string `json:"ariaLabel,omitempty"`

	// AriaLabelledBy is the control's aria-labelledby value, if any.
	AriaLabelledBy string `json:"ariaLabelledBy,omitempty"`

	// Required records whether the control is marked required or
	// aria-required.
	Required bool `json:"required"`

	// DescribedBy records whether aria-describedby is present and resolves
	// to at least one existing element.
	DescribedBy bool `json:"describedBy"`
}

// Labeled reports whether any of the four accepted labeling mechanisms is
// present: <label for>, a wrapping <label>, aria-label, or aria-labelledby.
func (c FormControlInfo) Labeled() bool {
	return c.HasLabelFor || c.WrappedByLabel || c.AriaLabel != "" || c.AriaLabelledBy != ""
}

// SemanticFlags summarizes which structural landmarks the page provides.
type SemanticFlags struct {
	// HasMain records whether a main landmark exists.
	HasMain bool `json:"hasMain"`

	// HasNavigation records whether a navigation landmark exists.
	HasNavigation bool `json:"hasNavigation"`

	// HasHeader records whether a banner landmark exists.
	HasHeader bool `json:"hasHeader"`

	// HasFooter records whether a contentinfo landmark exists.
	HasFooter bool `json:"hasFooter"`

	// HasAside records whether a complementary landmark exists.
	HasAside bool `json:"hasAside"`

	// HasSkipLink records whether the page starts with a same-page link
	// that jumps to the main content.
	HasSkipLink bool `json:"hasSkipLink"`
}
