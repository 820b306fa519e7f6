package dom

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/a11yscan/a11yscan/internal/contrast"
	"github.com/a11yscan/a11yscan/internal/model"
)

// maxSnapshotText caps the text carried on element snapshots. Issue
// descriptions never need more, and full page text would bloat reports.
const maxSnapshotText = 200

// Inspector extracts per-element facts from a parsed document: element
// paths, visibility, focus behavior, accessible names, and effective
// colors. It combines the document indexes, the style resolver, and
// the environment into the one place analyzers ask questions about
// individual nodes.
type Inspector struct {
	doc    *Document
	styles *StyleResolver
	env    Environment
}

// NewInspector creates an inspector over a parsed document.
func NewInspector(doc *Document, styles *StyleResolver, env Environment) *Inspector {
	return &Inspector{doc: doc, styles: styles, env: env}
}

// Styles exposes the style resolver for property-level questions.
func (i *Inspector) Styles() *StyleResolver { return i.styles }

// Document returns the document under inspection.
func (i *Inspector) Document() *Document { return i.doc }

// XPath returns the element's location as an XPath-style expression
// such as /html/body/div[2]/p[1]. Sibling indexes are 1-based and
// count element siblings with the same tag. The html and body segments
// are unique per document and carry no index. Detached nodes get a
// best-effort path from their highest reachable ancestor.
func (i *Inspector) XPath(n *html.Node) string {
	if n == nil || n.Type != html.ElementNode {
		return ""
	}

	var segments []string
	for cur := n; cur != nil && cur.Type == html.ElementNode; cur = ParentElement(cur) {
		segments = append(segments, xpathSegment(cur))
	}
	for l, r := 0, len(segments)-1; l < r; l, r = l+1, r-1 {
		segments[l], segments[r] = segments[r], segments[l]
	}
	return "/" + strings.Join(segments, "/")
}

func xpathSegment(n *html.Node) string {
	if n.Data == "html" || n.Data == "body" {
		return n.Data
	}
	index := 1
	for sib := n.PrevSibling; sib != nil; sib = sib.PrevSibling {
		if sib.Type == html.ElementNode && sib.Data == n.Data {
			index++
		}
	}
	return fmt.Sprintf("%s[%d]", n.Data, index)
}

// Inspect builds the element snapshot carried on reported issues.
func (i *Inspector) Inspect(n *html.Node) model.ElementInfo {
	info := model.ElementInfo{
		Tag:     n.Data,
		ID:      Attr(n, "id"),
		Class:   Attr(n, "class"),
		XPath:   i.XPath(n),
		Visible: i.Visible(n),
		Rect:    i.Rect(n),
	}
	if len(n.Attr) > 0 {
		info.Attributes = make(map[string]string, len(n.Attr))
		for _, a := range n.Attr {
			info.Attributes[a.Key] = a.Val
		}
	}
	if text := Text(n); text != "" {
		info.Text = truncateText(text, maxSnapshotText)
	}
	return info
}

func truncateText(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// Visible reports whether an element takes part in visual rendering:
// attached to the document, not suppressed by display, visibility,
// opacity, or the hidden attribute, and not collapsed to zero area
// when geometry is known.
func (i *Inspector) Visible(n *html.Node) bool {
	if n == nil || !i.doc.Contains(n) {
		return false
	}
	if i.styles.Hidden(n) {
		return false
	}
	if rect, ok := i.env.BoundingRect(n); ok && rect.Empty() {
		return false
	}
	return true
}

// Rect returns the best known bounding rectangle for a node. Elements
// hidden from rendering report a zero rectangle.
func (i *Inspector) Rect(n *html.Node) model.Rect {
	if i.styles.Hidden(n) {
		return model.Rect{}
	}
	if rect, ok := i.env.BoundingRect(n); ok {
		return rect
	}
	return model.Rect{}
}

// AriaHidden reports whether the element or an ancestor is marked
// aria-hidden, removing it from the accessibility tree while leaving
// it visually rendered.
func (i *Inspector) AriaHidden(n *html.Node) bool {
	for cur := n; cur != nil; cur = ParentElement(cur) {
		if strings.EqualFold(Attr(cur, "aria-hidden"), "true") {
			return true
		}
	}
	return false
}

// nativelyFocusable reports elements that receive keyboard focus
// without a tabindex attribute.
func nativelyFocusable(n *html.Node) bool {
	switch n.Data {
	case "a", "area":
		return HasAttr(n, "href")
	case "input":
		return !strings.EqualFold(Attr(n, "type"), "hidden")
	case "button", "select", "textarea", "iframe", "summary":
		return true
	case "audio", "video":
		return HasAttr(n, "controls")
	}
	switch strings.ToLower(Attr(n, "contenteditable")) {
	case "true":
		return true
	case "":
		return HasAttr(n, "contenteditable")
	}
	return false
}

// FocusInfo returns the keyboard focus snapshot for an element, or
// ok=false when the element cannot receive focus at all. A tabindex of
// -1 still counts as focusable because scripts can move focus there.
// The caller fills in the element snapshot.
func (i *Inspector) FocusInfo(n *html.Node) (model.FocusableElementInfo, bool) {
	native := nativelyFocusable(n) && !HasAttr(n, "disabled")

	tabIndex := 0
	explicit := false
	if raw := Attr(n, "tabindex"); raw != "" {
		if v, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
			tabIndex = v
			explicit = true
		}
	}

	if !native && !explicit {
		return model.FocusableElementInfo{}, false
	}
	return model.FocusableElementInfo{
		TabIndex:    tabIndex,
		TabIndexSet: explicit,
		Native:      native,
		InTabOrder:  tabIndex >= 0,
	}, true
}

// AccessibleName computes a simplified accessible name for an element,
// following the ARIA precedence: aria-labelledby, aria-label, alt,
// associated label, title, then text content.
func (i *Inspector) AccessibleName(n *html.Node) string {
	if ids := Attr(n, "aria-labelledby"); ids != "" {
		var parts []string
		for _, id := range strings.Fields(ids) {
			if ref := i.doc.ByID(id); ref != nil {
				if t := Text(ref); t != "" {
					parts = append(parts, t)
				}
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, " ")
		}
	}
	if v := strings.TrimSpace(Attr(n, "aria-label")); v != "" {
		return v
	}
	if v := strings.TrimSpace(Attr(n, "alt")); v != "" {
		switch n.Data {
		case "img", "area", "input":
			return v
		}
	}
	if id := Attr(n, "id"); id != "" {
		for _, label := range i.doc.LabelsFor(id) {
			if t := Text(label); t != "" {
				return t
			}
		}
	}
	for cur := ParentElement(n); cur != nil; cur = ParentElement(cur) {
		if cur.Data == "label" {
			if t := Text(cur); t != "" {
				return t
			}
		}
	}
	if v := strings.TrimSpace(Attr(n, "title")); v != "" {
		return v
	}
	if n.Data == "input" {
		switch strings.ToLower(Attr(n, "type")) {
		case "button", "submit", "reset":
			return strings.TrimSpace(Attr(n, "value"))
		}
		return ""
	}
	return Text(n)
}

// LandmarkLabel returns the author-provided label of a landmark
// region. Landmarks take their accessible name from author attributes
// only, never from content, so unlabeled landmarks return "".
func (i *Inspector) LandmarkLabel(n *html.Node) string {
	if ids := Attr(n, "aria-labelledby"); ids != "" {
		var parts []string
		for _, id := range strings.Fields(ids) {
			if ref := i.doc.ByID(id); ref != nil {
				if t := Text(ref); t != "" {
					parts = append(parts, t)
				}
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, " ")
		}
	}
	if v := strings.TrimSpace(Attr(n, "aria-label")); v != "" {
		return v
	}
	return strings.TrimSpace(Attr(n, "title"))
}

// Role returns the ARIA role of an element: the explicit role attribute
// when present, otherwise the implicit role of the HTML semantics.
// Explicit role lists take their first token, the one assistive
// technology uses.
func (i *Inspector) Role(n *html.Node) string {
	if v := strings.TrimSpace(Attr(n, "role")); v != "" {
		return strings.ToLower(strings.Fields(v)[0])
	}
	return i.implicitRole(n)
}

// implicitRole maps HTML semantics to ARIA roles. header and footer
// only map to banner and contentinfo at the page level, not when
// nested inside sectioning content.
func (i *Inspector) implicitRole(n *html.Node) string {
	switch n.Data {
	case "a", "area":
		if HasAttr(n, "href") {
			return "link"
		}
	case "button":
		return "button"
	case "nav":
		return "navigation"
	case "main":
		return "main"
	case "header":
		if !InsideTag(n, "article", "aside", "main", "nav", "section") {
			return "banner"
		}
	case "footer":
		if !InsideTag(n, "article", "aside", "main", "nav", "section") {
			return "contentinfo"
		}
	case "aside":
		return "complementary"
	case "form":
		if i.LandmarkLabel(n) != "" {
			return "form"
		}
	case "section":
		if i.LandmarkLabel(n) != "" {
			return "region"
		}
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return "heading"
	case "img":
		return "img"
	case "ul", "ol":
		return "list"
	case "li":
		return "listitem"
	case "table":
		return "table"
	case "select":
		return "combobox"
	case "textarea":
		return "textbox"
	case "dialog":
		return "dialog"
	case "hr":
		return "separator"
	case "progress":
		return "progressbar"
	case "output":
		return "status"
	case "input":
		switch strings.ToLower(Attr(n, "type")) {
		case "button", "submit", "reset", "image":
			return "button"
		case "checkbox":
			return "checkbox"
		case "radio":
			return "radio"
		case "range":
			return "slider"
		case "search":
			return "searchbox"
		case "hidden":
			return ""
		default:
			return "textbox"
		}
	}
	return ""
}

// EffectiveColors returns the foreground text color and the resolved
// background behind an element.
func (i *Inspector) EffectiveColors(n *html.Node) (fg, bg contrast.Color) {
	return i.styles.TextColor(n), i.styles.EffectiveBackground(n)
}

// FontInfo returns the computed font size in CSS pixels and whether the
// element renders bold.
func (i *Inspector) FontInfo(n *html.Node) (sizePx float64, bold bool) {
	return i.styles.FontSize(n), i.styles.Bold(n)
}

// LargeText reports whether the element's text qualifies as large under
// the WCAG definition.
func (i *Inspector) LargeText(n *html.Node) bool {
	size, bold := i.FontInfo(n)
	return contrast.IsLargeText(size, bold)
}
