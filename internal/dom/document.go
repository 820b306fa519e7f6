package dom

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"golang.org/x/net/html"
)

// Document wraps a parsed HTML tree with the lookup indexes the
// analysis stages share.
//
// Design decision: We build all indexes in a single pass at parse time
// rather than lazily because:
//  1. Every scan touches most of the tree anyway
//  2. Immutable indexes are safe to share across analyzer goroutines
//  3. Lookups during analysis stay O(1)
type Document struct {
	root     *html.Node
	htmlNode *html.Node
	headNode *html.Node
	bodyNode *html.Node
	title    string
	lang     string

	byID      map[string]*html.Node
	idCounts  map[string]int
	labelFor  map[string][]*html.Node
	styleText []string

	elementCount int
}

// Parse reads and parses an HTML document.
//
// The underlying parser applies the HTML5 error-correction algorithm,
// so malformed markup produces a best-effort tree instead of an error.
// An error is returned only when the reader itself fails.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	doc := &Document{
		root:     root,
		byID:     make(map[string]*html.Node),
		idCounts: make(map[string]int),
		labelFor: make(map[string][]*html.Node),
	}
	doc.index()
	return doc, nil
}

// ParseString parses an HTML document held in memory.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// index walks the tree once and records everything later stages look up.
func (d *Document) index() {
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			d.indexElement(n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(d.root)
}

func (d *Document) indexElement(n *html.Node) {
	d.elementCount++

	switch n.Data {
	case "html":
		if d.htmlNode == nil {
			d.htmlNode = n
			d.lang = strings.TrimSpace(Attr(n, "lang"))
		}
	case "head":
		if d.headNode == nil {
			d.headNode = n
		}
	case "body":
		if d.bodyNode == nil {
			d.bodyNode = n
		}
	case "title":
		if d.title == "" {
			d.title = Text(n)
		}
	case "label":
		if target := Attr(n, "for"); target != "" {
			d.labelFor[target] = append(d.labelFor[target], n)
		}
	case "style":
		if css := rawText(n); strings.TrimSpace(css) != "" {
			d.styleText = append(d.styleText, css)
		}
	}

	if id := Attr(n, "id"); id != "" {
		d.idCounts[id]++
		if _, ok := d.byID[id]; !ok {
			d.byID[id] = n
		}
	}
}

// Root returns the document node at the top of the tree.
func (d *Document) Root() *html.Node { return d.root }

// HTML returns the html element, or nil for trees built without one.
func (d *Document) HTML() *html.Node { return d.htmlNode }

// Body returns the body element. The HTML5 parser synthesizes a body
// for almost any input, so nil only appears for hand-built trees.
func (d *Document) Body() *html.Node { return d.bodyNode }

// Title returns the text of the first title element.
func (d *Document) Title() string { return d.title }

// Lang returns the lang attribute of the html element.
func (d *Document) Lang() string { return d.lang }

// ByID returns the first element carrying the given id, or nil.
func (d *Document) ByID(id string) *html.Node { return d.byID[id] }

// DuplicateIDs returns the ids that appear on more than one element,
// sorted for deterministic reporting.
func (d *Document) DuplicateIDs() []string {
	var dups []string
	for id, count := range d.idCounts {
		if count > 1 {
			dups = append(dups, id)
		}
	}
	sort.Strings(dups)
	return dups
}

// HasLabelFor reports whether any label element references the id
// through its for attribute.
func (d *Document) HasLabelFor(id string) bool {
	return id != "" && len(d.labelFor[id]) > 0
}

// LabelsFor returns the label elements referencing the id through
// their for attributes.
func (d *Document) LabelsFor(id string) []*html.Node {
	if id == "" {
		return nil
	}
	return d.labelFor[id]
}

// StyleSheets returns the raw contents of the document's style elements
// in document order.
func (d *Document) StyleSheets() []string { return d.styleText }

// ElementCount returns the number of element nodes in the document.
func (d *Document) ElementCount() int { return d.elementCount }

// Contains reports whether n is attached to this document's tree.
func (d *Document) Contains(n *html.Node) bool {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur == d.root {
			return true
		}
	}
	return false
}

// Query returns the elements matching a comma-separated CSS selector
// list, in document order. Selectors outside the supported grammar
// match nothing, so an unsupported list yields an empty result rather
// than an error.
func (d *Document) Query(list string) []*html.Node {
	sels := parseSelectorList(list)
	if len(sels) == 0 {
		return nil
	}
	var out []*html.Node
	d.Walk(func(n *html.Node) {
		for _, sel := range sels {
			if sel.matches(n) {
				out = append(out, n)
				return
			}
		}
	})
	return out
}

// Walk visits every element node in document order.
func (d *Document) Walk(visit func(*html.Node)) {
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			visit(n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(d.root)
}

// WalkUntil visits element nodes in document order until visit returns
// false, which abandons the rest of the tree.
func (d *Document) WalkUntil(visit func(*html.Node) bool) {
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode && !visit(n) {
			return false
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if !walk(c) {
				return false
			}
		}
		return true
	}
	walk(d.root)
}

// Attr retrieves an attribute value from an HTML node.
func Attr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// HasAttr reports whether an element carries an attribute, regardless
// of its value. The distinction matters for boolean attributes and for
// alt="", which is a deliberate statement rather than an omission.
func HasAttr(n *html.Node, key string) bool {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return true
		}
	}
	return false
}

// Text returns the concatenated text content of a node's subtree with
// whitespace collapsed, approximating what assistive technology reads.
// Script, style, and template subtrees are excluded.
func Text(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		switch node.Type {
		case html.TextNode:
			b.WriteString(node.Data)
			b.WriteByte(' ')
		case html.ElementNode:
			if node.Data == "script" || node.Data == "style" || node.Data == "template" {
				return
			}
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

// OwnText returns the whitespace-collapsed text held directly inside an
// element, excluding descendant elements. Used to decide whether an
// element paints text itself.
func OwnText(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// rawText returns the unmodified text of a node's direct children.
// Style element contents go through here so the CSS parser sees the
// original whitespace.
func rawText(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}

// ParentElement returns the nearest ancestor element node, or nil at
// the top of the tree.
func ParentElement(n *html.Node) *html.Node {
	for cur := n.Parent; cur != nil; cur = cur.Parent {
		if cur.Type == html.ElementNode {
			return cur
		}
	}
	return nil
}

// InsideTag reports whether any ancestor element has one of the given
// tag names.
func InsideTag(n *html.Node, tags ...string) bool {
	for cur := ParentElement(n); cur != nil; cur = ParentElement(cur) {
		for _, t := range tags {
			if cur.Data == t {
				return true
			}
		}
	}
	return false
}
