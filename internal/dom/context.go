package dom

import (
	"context"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/a11yscan/a11yscan/internal/model"
)

// Element pairs a live DOM node with its extracted snapshot, letting
// analyzers reach back into the tree when a check needs more than the
// snapshot carries.
type Element struct {
	// Node is the underlying parse tree node.
	Node *html.Node

	// Info is the extracted snapshot for reporting.
	Info model.ElementInfo
}

// PageContext is the product of the extraction pass: every element of
// interest classified, plus the document-level facts the analyzers
// share. It is built once per scan and only read afterwards, so it is
// safe to hand to concurrent analyzers.
type PageContext struct {
	// URL identifies the scanned page, as supplied by the caller.
	URL string

	// Title is the document title.
	Title string

	// Language is the lang attribute of the html element.
	Language string

	// Document is the parsed tree with its indexes.
	Document *Document

	// Inspector answers per-node questions during analysis.
	Inspector *Inspector

	// Viewport is the assumed browser viewport.
	Viewport model.ViewportInfo

	// Images are elements needing text alternatives: img, area with
	// href, and input type=image.
	Images []Element

	// Links are anchors with an href.
	Links []Element

	// Interactive are elements a user operates: links, buttons, form
	// controls, and elements given click handlers or widget roles.
	Interactive []Element

	// Forms are form elements.
	Forms []Element

	// Controls are labelable form controls with their labeling facts.
	Controls []model.FormControlInfo

	// Headings are h1-h6 and role=heading elements in document order.
	Headings []model.HeadingInfo

	// Landmarks are landmark regions in document order.
	Landmarks []model.LandmarkInfo

	// Focusables are keyboard-focusable elements in document order.
	Focusables []model.FocusableElementInfo

	// Media are audio and video elements.
	Media []Element

	// Tables are table elements.
	Tables []Element

	// TextBlocks are elements directly containing rendered text, the
	// units the contrast and text-size checks measure.
	TextBlocks []Element

	// Semantics summarizes page-level structural markers.
	Semantics model.SemanticFlags

	// DuplicateIDs lists ids used by more than one element.
	DuplicateIDs []string

	// TotalElements counts every element node in the document.
	TotalElements int

	// ProcessedElements counts the elements the walk visited. It falls
	// short of TotalElements only when extraction is cancelled.
	ProcessedElements int

	// ExtractedAt records when the pass ran.
	ExtractedAt time.Time
}

// ExtractOptions configures the extraction pass.
type ExtractOptions struct {
	// URL labels the page in the resulting context.
	URL string

	// Viewport overrides the default 1366x768 viewport.
	Viewport model.ViewportInfo

	// IncludeHidden also classifies elements suppressed from
	// rendering. They are skipped by default because issues on them
	// do not affect what users perceive.
	IncludeHidden bool
}

// cancelCheckStride bounds how often the walk polls for cancellation.
const cancelCheckStride = 64

// Extract runs the single classification walk over a parsed document
// and returns the shared page context. Cancelling the context stops
// the walk early, leaving ProcessedElements below TotalElements.
func Extract(ctx context.Context, doc *Document, env Environment, opts ExtractOptions) *PageContext {
	viewport := opts.Viewport
	if viewport.Width <= 0 || viewport.Height <= 0 {
		viewport = DefaultViewport()
	}
	if env == nil {
		env = &StaticEnvironment{Viewport: viewport}
	}

	styles := NewStyleResolver(doc, env)
	insp := NewInspector(doc, styles, env)

	pc := &PageContext{
		URL:           opts.URL,
		Title:         doc.Title(),
		Language:      doc.Lang(),
		Document:      doc,
		Inspector:     insp,
		Viewport:      viewport,
		DuplicateIDs:  doc.DuplicateIDs(),
		TotalElements: doc.ElementCount(),
		ExtractedAt:   time.Now(),
	}

	doc.WalkUntil(func(n *html.Node) bool {
		if pc.ProcessedElements%cancelCheckStride == 0 && ctx.Err() != nil {
			return false
		}
		pc.classify(n, opts.IncludeHidden)
		return true
	})

	pc.linkHeadingTree()
	return pc
}

// Coverage returns the fraction of the document the walk covered,
// 1.0 for an empty document.
func (pc *PageContext) Coverage() float64 {
	if pc.TotalElements == 0 {
		return 1.0
	}
	return float64(pc.ProcessedElements) / float64(pc.TotalElements)
}

// classify routes one element into the context's collections.
func (pc *PageContext) classify(n *html.Node, includeHidden bool) {
	pc.ProcessedElements++

	insp := pc.Inspector
	if !includeHidden && !insp.Visible(n) {
		return
	}

	// Most elements land in no collection; snapshot lazily and reuse
	// the result when one element lands in several.
	var cached *model.ElementInfo
	snapshot := func() model.ElementInfo {
		if cached == nil {
			info := insp.Inspect(n)
			cached = &info
		}
		return *cached
	}

	tag := n.Data
	role := insp.Role(n)

	if isImageElement(n) {
		pc.Images = append(pc.Images, Element{Node: n, Info: snapshot()})
	}

	if tag == "a" && HasAttr(n, "href") {
		pc.Links = append(pc.Links, Element{Node: n, Info: snapshot()})
		if isSkipLink(n) {
			pc.Semantics.HasSkipLink = true
		}
	}

	if isInteractive(n, role) {
		pc.Interactive = append(pc.Interactive, Element{Node: n, Info: snapshot()})
	}

	switch tag {
	case "form":
		pc.Forms = append(pc.Forms, Element{Node: n, Info: snapshot()})
	case "input", "select", "textarea":
		pc.classifyControl(n, snapshot)
	case "video", "audio":
		pc.Media = append(pc.Media, Element{Node: n, Info: snapshot()})
	case "table":
		pc.Tables = append(pc.Tables, Element{Node: n, Info: snapshot()})
	}

	if level, ok := headingLevel(n); ok {
		pc.Headings = append(pc.Headings, model.HeadingInfo{
			Info:  snapshot(),
			Level: level,
		})
	}

	if landmarkRoles[role] {
		pc.Landmarks = append(pc.Landmarks, model.LandmarkInfo{
			Info:     snapshot(),
			Role:     role,
			Label:    insp.LandmarkLabel(n),
			Implicit: !HasAttr(n, "role"),
		})
	}

	if focus, ok := insp.FocusInfo(n); ok {
		focus.Info = snapshot()
		pc.Focusables = append(pc.Focusables, focus)
	}

	if !nonTextTags[tag] && OwnText(n) != "" {
		pc.TextBlocks = append(pc.TextBlocks, Element{Node: n, Info: snapshot()})
	}

	pc.recordSemantics(tag, role)
}

// classifyControl records a labelable form control. Button-like and
// hidden inputs are excluded: buttons name themselves through their
// value or content, and hidden inputs have no user-facing UI.
func (pc *PageContext) classifyControl(n *html.Node, snapshot func() model.ElementInfo) {
	inputType := ""
	if n.Data == "input" {
		inputType = strings.ToLower(Attr(n, "type"))
		if inputType == "" {
			inputType = "text"
		}
		switch inputType {
		case "hidden", "submit", "reset", "button", "image":
			return
		}
	}

	id := Attr(n, "id")
	pc.Controls = append(pc.Controls, model.FormControlInfo{
		Info:           snapshot(),
		InputType:      inputType,
		HasLabelFor:    pc.Document.HasLabelFor(id),
		WrappedByLabel: InsideTag(n, "label"),
		AriaLabel:      strings.TrimSpace(Attr(n, "aria-label")),
		AriaLabelledBy: strings.TrimSpace(Attr(n, "aria-labelledby")),
		Required:       HasAttr(n, "required") || strings.EqualFold(Attr(n, "aria-required"), "true"),
		DescribedBy:    describedByResolves(pc.Document, n),
	})
}

// describedByResolves reports whether aria-describedby is present and at
// least one referenced id exists.
func describedByResolves(doc *Document, n *html.Node) bool {
	for _, id := range strings.Fields(Attr(n, "aria-describedby")) {
		if doc.ByID(id) != nil {
			return true
		}
	}
	return false
}

// linkHeadingTree fills each heading's Parent index: the nearest
// preceding heading with a shallower level, or -1 at the top.
func (pc *PageContext) linkHeadingTree() {
	for i := range pc.Headings {
		pc.Headings[i].Parent = -1
		for j := i - 1; j >= 0; j-- {
			if pc.Headings[j].Level < pc.Headings[i].Level {
				pc.Headings[i].Parent = j
				break
			}
		}
	}
}

func (pc *PageContext) recordSemantics(tag, role string) {
	switch role {
	case "main":
		pc.Semantics.HasMain = true
	case "navigation":
		pc.Semantics.HasNavigation = true
	case "banner":
		pc.Semantics.HasHeader = true
	case "contentinfo":
		pc.Semantics.HasFooter = true
	case "complementary":
		pc.Semantics.HasAside = true
	}
	switch tag {
	case "header":
		pc.Semantics.HasHeader = true
	case "footer":
		pc.Semantics.HasFooter = true
	case "aside":
		pc.Semantics.HasAside = true
	}
}

// landmarkRoles is the set of ARIA landmark roles.
var landmarkRoles = map[string]bool{
	"banner":        true,
	"complementary": true,
	"contentinfo":   true,
	"form":          true,
	"main":          true,
	"navigation":    true,
	"region":        true,
	"search":        true,
}

// widgetRoles are ARIA roles that promise interactive behavior.
var widgetRoles = map[string]bool{
	"button": true, "link": true, "checkbox": true, "radio": true,
	"tab": true, "menuitem": true, "menuitemcheckbox": true,
	"menuitemradio": true, "switch": true, "slider": true,
	"spinbutton": true, "combobox": true, "listbox": true,
	"textbox": true, "searchbox": true, "option": true,
	"treeitem": true,
}

// nonTextTags never contribute user-visible text blocks even when they
// hold text nodes.
var nonTextTags = map[string]bool{
	"script": true, "style": true, "template": true, "noscript": true,
	"title": true, "head": true, "meta": true, "link": true, "base": true,
	"option": true, "optgroup": true, "datalist": true,
}

// clickHandlerAttrs are inline handler attributes that make an element
// behave like a control without native semantics.
var clickHandlerAttrs = []string{"onclick", "ondblclick", "onmousedown", "onmouseup"}

func hasClickHandler(n *html.Node) bool {
	for _, attr := range clickHandlerAttrs {
		if HasAttr(n, attr) {
			return true
		}
	}
	return false
}

// isImageElement reports elements that require a text alternative.
func isImageElement(n *html.Node) bool {
	switch n.Data {
	case "img":
		return true
	case "area":
		return HasAttr(n, "href")
	case "input":
		return strings.EqualFold(Attr(n, "type"), "image")
	}
	return false
}

// isInteractive reports elements users operate: native controls,
// elements with inline click handlers, and elements given an explicit
// widget role.
func isInteractive(n *html.Node, role string) bool {
	switch n.Data {
	case "a", "area":
		return HasAttr(n, "href")
	case "button", "select", "textarea", "summary":
		return true
	case "input":
		return !strings.EqualFold(Attr(n, "type"), "hidden")
	case "audio", "video":
		return HasAttr(n, "controls")
	}
	if hasClickHandler(n) {
		return true
	}
	return HasAttr(n, "role") && widgetRoles[role]
}

// headingLevel returns the outline level of a heading element, either
// native h1-h6 or role=heading with aria-level. ok is false for
// non-headings.
func headingLevel(n *html.Node) (int, bool) {
	switch n.Data {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return int(n.Data[1] - '0'), true
	}
	if strings.EqualFold(Attr(n, "role"), "heading") {
		if lvl, err := strconv.Atoi(strings.TrimSpace(Attr(n, "aria-level"))); err == nil && lvl >= 1 && lvl <= 6 {
			return lvl, true
		}
		// aria-level defaults to 2 for the heading role.
		return 2, true
	}
	return 0, false
}

// isSkipLink detects same-page links that let keyboard users jump past
// repeated blocks.
func isSkipLink(n *html.Node) bool {
	href := strings.ToLower(Attr(n, "href"))
	if !strings.HasPrefix(href, "#") || len(href) < 2 {
		return false
	}
	text := strings.ToLower(Text(n))
	if strings.Contains(text, "skip") || strings.Contains(text, "jump to") {
		return true
	}
	switch strings.TrimPrefix(href, "#") {
	case "main", "content", "main-content", "maincontent":
		return true
	}
	return false
}
