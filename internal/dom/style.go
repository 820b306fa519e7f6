package dom

import (
	"strconv"
	"strings"

	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
	"golang.org/x/net/html"

	"github.com/a11yscan/a11yscan/internal/contrast"
)

// defaultFontSizePx is the UA default font size for unstyled text.
const defaultFontSizePx = 16.0

// StyleResolver computes effective style values for document nodes by
// cascading the document's style elements, inline style attributes,
// and user-agent defaults, with environment-supplied computed styles
// taking precedence over everything parsed from markup.
//
// Design decision: Winning declared values are precomputed for every
// node at construction because:
//  1. The resolver becomes read-only and safe to share across goroutines
//  2. Selector matching runs once per rule, not once per property lookup
//  3. Extraction touches most nodes anyway, so laziness buys nothing
type StyleResolver struct {
	doc  *Document
	env  Environment
	node map[*html.Node]map[string]string
}

// declared is one candidate value for a property with its cascade weight.
type declared struct {
	value       string
	important   bool
	inline      bool
	specificity int
	order       int
}

// beats implements the cascade: importance, then origin (inline over
// sheet), then specificity, with later declarations winning ties.
func (d declared) beats(o declared) bool {
	if d.important != o.important {
		return d.important
	}
	if d.inline != o.inline {
		return d.inline
	}
	if d.specificity != o.specificity {
		return d.specificity > o.specificity
	}
	return d.order >= o.order
}

// sheetRule is a parsed qualified rule bound to one of its selectors.
type sheetRule struct {
	sel   selector
	decls []*css.Declaration
	order int
}

// NewStyleResolver parses the document's stylesheets and resolves the
// declared style of every element. env may be nil when no environment
// data is available.
func NewStyleResolver(doc *Document, env Environment) *StyleResolver {
	r := &StyleResolver{
		doc:  doc,
		env:  env,
		node: make(map[*html.Node]map[string]string),
	}
	rules := r.parseSheets()
	doc.Walk(func(n *html.Node) {
		r.applyTo(n, rules)
	})
	return r
}

// parseSheets parses every style element into matchable rules.
// Malformed sheets are dropped the way a browser drops bad blocks,
// and at-rules are skipped because their conditions describe media
// or generated content a static pass cannot evaluate.
func (r *StyleResolver) parseSheets() []sheetRule {
	var rules []sheetRule
	order := 0

	for _, text := range r.doc.StyleSheets() {
		sheet, err := parser.Parse(text)
		if err != nil {
			continue
		}
		for _, rule := range sheet.Rules {
			if rule.Kind != css.QualifiedRule {
				continue
			}
			for _, raw := range rule.Selectors {
				sel, ok := parseSelector(strings.TrimSpace(raw))
				if !ok {
					continue
				}
				rules = append(rules, sheetRule{sel: sel, decls: rule.Declarations, order: order})
				order++
			}
		}
	}
	return rules
}

// applyTo folds every matching rule and the inline style attribute into
// the winning declared value per property for one node.
func (r *StyleResolver) applyTo(n *html.Node, rules []sheetRule) {
	winners := make(map[string]declared)

	record := func(prop string, cand declared) {
		prop = strings.ToLower(strings.TrimSpace(prop))
		if prop == "" || cand.value == "" {
			return
		}
		if prev, ok := winners[prop]; !ok || cand.beats(prev) {
			winners[prop] = cand
		}
	}

	for _, rule := range rules {
		if !rule.sel.matches(n) {
			continue
		}
		for _, d := range rule.decls {
			record(d.Property, declared{
				value:       strings.TrimSpace(d.Value),
				important:   d.Important,
				specificity: rule.sel.specificity,
				order:       rule.order,
			})
		}
	}

	if inline := Attr(n, "style"); inline != "" {
		if decls, err := parser.ParseDeclarations(inline); err == nil {
			for i, d := range decls {
				record(d.Property, declared{
					value:     strings.TrimSpace(d.Value),
					important: d.Important,
					inline:    true,
					order:     i,
				})
			}
		}
	}

	if len(winners) == 0 {
		return
	}
	m := make(map[string]string, len(winners))
	for prop, d := range winners {
		m[prop] = d.value
	}
	r.node[n] = m
}

// Declared returns the cascaded declared value of a property on a node,
// before inheritance and defaults are considered.
func (r *StyleResolver) Declared(n *html.Node, prop string) (string, bool) {
	if r.env != nil {
		if v, ok := r.env.ComputedStyle(n, prop); ok {
			return v, true
		}
	}
	if m, ok := r.node[n]; ok {
		if v, ok := m[prop]; ok {
			return v, true
		}
	}
	return "", false
}

// isCascadeKeyword reports CSS-wide keywords that defer to the normal
// inheritance walk.
func isCascadeKeyword(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "inherit", "initial", "unset", "revert":
		return true
	}
	return false
}

// TextColor returns the effective text color of a node: the nearest
// parseable declared color up the ancestor chain, defaulting to black.
func (r *StyleResolver) TextColor(n *html.Node) contrast.Color {
	for cur := n; cur != nil; cur = ParentElement(cur) {
		v, ok := r.Declared(cur, "color")
		if !ok || isCascadeKeyword(v) || strings.EqualFold(strings.TrimSpace(v), "currentcolor") {
			continue
		}
		if c, err := contrast.ParseColor(v); err == nil {
			return c
		}
	}
	return contrast.Black
}

// declaredBackground returns the background color declared directly on
// a node, checking background-color and then the background shorthand.
func (r *StyleResolver) declaredBackground(n *html.Node) (contrast.Color, bool) {
	if v, ok := r.Declared(n, "background-color"); ok && !isCascadeKeyword(v) {
		if c, err := contrast.ParseColor(v); err == nil {
			return c, true
		}
	}
	if v, ok := r.Declared(n, "background"); ok && !isCascadeKeyword(v) {
		// The shorthand mixes color with images and positions; take the
		// first token that parses as a color.
		for _, tok := range strings.Fields(v) {
			if c, err := contrast.ParseColor(strings.TrimSuffix(tok, ",")); err == nil {
				return c, true
			}
		}
	}
	return contrast.Color{}, false
}

// EffectiveBackground resolves the background behind a node by walking
// up the ancestor chain and alpha-compositing each declared background
// until an opaque color is reached. When the chain ends without an
// opaque layer the remainder is composited over white, the default
// canvas color.
func (r *StyleResolver) EffectiveBackground(n *html.Node) contrast.Color {
	acc := contrast.Color{}
	for cur := n; cur != nil; cur = ParentElement(cur) {
		if acc.Opaque() {
			return acc
		}
		bg, ok := r.declaredBackground(cur)
		if !ok {
			continue
		}
		acc = contrast.Composite(acc, bg)
	}
	return contrast.Composite(acc, contrast.White)
}

// headingFontFactor holds the UA default sizes for headings, expressed
// relative to the inherited size.
var headingFontFactor = map[string]float64{
	"h1": 2.0,
	"h2": 1.5,
	"h3": 1.17,
	"h4": 1.0,
	"h5": 0.83,
	"h6": 0.67,
}

// absoluteSizeKeywords maps the CSS absolute-size keywords to pixels
// at the default medium size of 16px.
var absoluteSizeKeywords = map[string]float64{
	"xx-small": 9,
	"x-small":  10,
	"small":    13,
	"medium":   16,
	"large":    18,
	"x-large":  24,
	"xx-large": 32,
}

// FontSize resolves the computed font size of a node in CSS pixels,
// following relative units up the ancestor chain and applying the UA
// defaults for headings and size keywords.
func (r *StyleResolver) FontSize(n *html.Node) float64 {
	if n == nil {
		return defaultFontSizePx
	}

	parent := func() float64 { return r.FontSize(ParentElement(n)) }

	v, ok := r.Declared(n, "font-size")
	if !ok || isCascadeKeyword(v) {
		if factor, isHeading := headingFontFactor[n.Data]; isHeading {
			return factor * parent()
		}
		return parent()
	}

	v = strings.ToLower(strings.TrimSpace(v))
	if px, ok := absoluteSizeKeywords[v]; ok {
		return px
	}
	switch v {
	case "larger":
		return 1.2 * parent()
	case "smaller":
		return parent() / 1.2
	}

	if size, ok := parseFontLength(v, parent, r.rootFontSize); ok {
		return size
	}
	return parent()
}

// parseFontLength converts a CSS length to pixels. parent and root are
// thunks so relative lookups only run for the units that need them.
// The rem suffix must be checked before em.
func parseFontLength(v string, parent, root func() float64) (float64, bool) {
	units := []struct {
		suffix string
		conv   func(float64) float64
	}{
		{"px", func(x float64) float64 { return x }},
		{"pt", func(x float64) float64 { return x * 96 / 72 }},
		{"rem", func(x float64) float64 { return x * root() }},
		{"em", func(x float64) float64 { return x * parent() }},
		{"%", func(x float64) float64 { return x / 100 * parent() }},
	}
	for _, u := range units {
		if !strings.HasSuffix(v, u.suffix) {
			continue
		}
		num, err := strconv.ParseFloat(strings.TrimSuffix(v, u.suffix), 64)
		if err != nil {
			return 0, false
		}
		return u.conv(num), true
	}
	return 0, false
}

// rootFontSize returns the font size declared on the html element in
// absolute terms, or the 16px default. Relative units on the root
// resolve against the default.
func (r *StyleResolver) rootFontSize() float64 {
	root := r.doc.HTML()
	if root == nil {
		return defaultFontSizePx
	}
	v, ok := r.Declared(root, "font-size")
	if !ok || isCascadeKeyword(v) {
		return defaultFontSizePx
	}
	v = strings.ToLower(strings.TrimSpace(v))
	if px, ok := absoluteSizeKeywords[v]; ok {
		return px
	}
	fixed := func() float64 { return defaultFontSizePx }
	if size, ok := parseFontLength(v, fixed, fixed); ok {
		return size
	}
	return defaultFontSizePx
}

// boldTags render bold in every mainstream UA stylesheet.
var boldTags = map[string]bool{
	"b": true, "strong": true, "th": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// Bold reports whether a node renders with a bold font weight,
// following the inherited font-weight and the UA defaults.
func (r *StyleResolver) Bold(n *html.Node) bool {
	for cur := n; cur != nil; cur = ParentElement(cur) {
		v, ok := r.Declared(cur, "font-weight")
		if !ok || isCascadeKeyword(v) {
			if boldTags[cur.Data] {
				return true
			}
			continue
		}
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "bold", "bolder":
			return true
		case "normal", "lighter":
			return false
		}
		if w, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return w >= 600
		}
	}
	return false
}

// defaultDisplay covers the tags whose UA display differs from block.
// The distinction only matters for visibility and geometry estimation,
// not exact layout.
var defaultDisplay = map[string]string{
	"head": "none", "meta": "none", "link": "none", "script": "none",
	"style": "none", "title": "none", "template": "none", "base": "none",
	"noscript": "none",
	"a": "inline", "span": "inline", "b": "inline", "strong": "inline",
	"i": "inline", "em": "inline", "u": "inline", "s": "inline",
	"small": "inline", "abbr": "inline", "cite": "inline", "code": "inline",
	"kbd": "inline", "mark": "inline", "q": "inline", "sub": "inline",
	"sup": "inline", "time": "inline", "label": "inline", "br": "inline",
	"wbr": "inline",
	"img": "inline-block", "input": "inline-block", "select": "inline-block",
	"textarea": "inline-block", "button": "inline-block",
}

// Display returns the effective display value of a node.
func (r *StyleResolver) Display(n *html.Node) string {
	if v, ok := r.Declared(n, "display"); ok && !isCascadeKeyword(v) {
		return strings.ToLower(strings.TrimSpace(v))
	}
	if d, ok := defaultDisplay[n.Data]; ok {
		return d
	}
	return "block"
}

// Hidden reports whether a node is removed from rendering by the hidden
// attribute, display:none, or opacity:0 on itself or any ancestor, or
// by a computed visibility of hidden.
func (r *StyleResolver) Hidden(n *html.Node) bool {
	for cur := n; cur != nil; cur = ParentElement(cur) {
		if HasAttr(cur, "hidden") {
			return true
		}
		if r.Display(cur) == "none" {
			return true
		}
		if r.zeroOpacity(cur) {
			return true
		}
	}
	return r.visibilityHidden(n)
}

// zeroOpacity reports whether a node declares a fully transparent
// opacity. Opacity multiplies down the subtree rather than inheriting,
// so a zero anywhere on the ancestor chain blanks every descendant and
// no descendant declaration can restore it.
func (r *StyleResolver) zeroOpacity(n *html.Node) bool {
	v, ok := r.Declared(n, "opacity")
	if !ok || isCascadeKeyword(v) {
		return false
	}
	v = strings.TrimSpace(v)
	if pct := strings.TrimSuffix(v, "%"); pct != v {
		if f, err := strconv.ParseFloat(pct, 64); err == nil {
			return f <= 0
		}
		return false
	}
	f, err := strconv.ParseFloat(v, 64)
	return err == nil && f <= 0
}

// visibilityHidden resolves the inherited visibility property. Unlike
// display, a descendant can re-declare visibility:visible inside a
// hidden ancestor, so the nearest declaration wins.
func (r *StyleResolver) visibilityHidden(n *html.Node) bool {
	for cur := n; cur != nil; cur = ParentElement(cur) {
		v, ok := r.Declared(cur, "visibility")
		if !ok || isCascadeKeyword(v) {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "hidden", "collapse":
			return true
		default:
			return false
		}
	}
	return false
}

// Underlined reports whether a node renders underlined text. Anchors
// are underlined by default; a declared text-decoration of none on the
// node or an ancestor removes it. text-decoration does not inherit,
// but it paints through descendants, which the ancestor walk
// approximates.
func (r *StyleResolver) Underlined(n *html.Node) bool {
	for cur := n; cur != nil; cur = ParentElement(cur) {
		for _, prop := range []string{"text-decoration", "text-decoration-line"} {
			v, ok := r.Declared(cur, prop)
			if !ok || isCascadeKeyword(v) {
				continue
			}
			v = strings.ToLower(v)
			if strings.Contains(v, "underline") {
				return true
			}
			if strings.Contains(v, "none") {
				return false
			}
		}
	}
	return n.Data == "a" && HasAttr(n, "href")
}
