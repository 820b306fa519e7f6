package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// selector is one parsed CSS selector: a chain of compound selectors
// joined by descendant or child combinators. The last compound matches
// the subject element itself.
//
// The supported grammar covers what static stylesheets on real pages
// overwhelmingly use for color and typography rules: type, id, class,
// and attribute selectors, plus descendant and child combinators.
// Selectors using pseudo-classes, pseudo-elements, or sibling
// combinators describe dynamic or positional state a static analyzer
// cannot evaluate, so they are skipped at parse time.
type selector struct {
	parts       []compound
	combinators []byte // between parts: ' ' (descendant) or '>' (child)
	specificity int
}

// compound is a single simple-selector sequence like div.alert#main[role=note].
type compound struct {
	tag       string // "" means any element
	id        string
	classes   []string
	attrs     []attrMatcher
	universal bool // explicit * selector
}

// attrMatcher matches [key] or [key=value] attribute selectors.
type attrMatcher struct {
	key      string
	value    string
	hasValue bool
}

// parseSelectorList splits a comma-separated selector list and parses
// each selector. Selectors outside the supported grammar are dropped.
func parseSelectorList(list string) []selector {
	var out []selector
	for _, raw := range strings.Split(list, ",") {
		if sel, ok := parseSelector(strings.TrimSpace(raw)); ok {
			out = append(out, sel)
		}
	}
	return out
}

// parseSelector parses one selector. ok is false when the selector uses
// syntax outside the supported subset.
func parseSelector(raw string) (selector, bool) {
	if raw == "" {
		return selector{}, false
	}
	// Pseudo-classes, pseudo-elements, and sibling combinators depend
	// on runtime or positional state.
	if strings.ContainsAny(raw, ":~+") {
		return selector{}, false
	}

	var sel selector
	tokens := tokenizeSelector(raw)
	expectCompound := true

	for _, tok := range tokens {
		if tok == ">" {
			if expectCompound || len(sel.parts) == 0 {
				return selector{}, false
			}
			sel.combinators = append(sel.combinators, '>')
			expectCompound = true
			continue
		}

		comp, ok := parseCompound(tok)
		if !ok {
			return selector{}, false
		}
		if !expectCompound {
			// Two compounds with no explicit combinator: descendant.
			sel.combinators = append(sel.combinators, ' ')
		}
		sel.parts = append(sel.parts, comp)
		expectCompound = false
	}

	if len(sel.parts) == 0 || expectCompound {
		return selector{}, false
	}
	sel.specificity = computeSpecificity(sel.parts)
	return sel, true
}

// tokenizeSelector splits a selector into compound tokens and ">"
// combinator tokens. Whitespace separates tokens; attribute brackets
// may contain spaces and are kept intact.
func tokenizeSelector(raw string) []string {
	var tokens []string
	var current strings.Builder
	depth := 0

	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}

	for _, r := range raw {
		switch {
		case r == '[':
			depth++
			current.WriteRune(r)
		case r == ']':
			depth--
			current.WriteRune(r)
		case r == '>' && depth == 0:
			flush()
			tokens = append(tokens, ">")
		case (r == ' ' || r == '\t' || r == '\n') && depth == 0:
			flush()
		default:
			current.WriteRune(r)
		}
	}
	flush()
	return tokens
}

// parseCompound parses a simple-selector sequence into its parts.
func parseCompound(tok string) (compound, bool) {
	var comp compound
	i := 0

	readName := func() string {
		start := i
		for i < len(tok) && tok[i] != '.' && tok[i] != '#' && tok[i] != '[' {
			i++
		}
		return tok[start:i]
	}

	// Leading type selector or universal selector.
	if i < len(tok) && tok[i] != '.' && tok[i] != '#' && tok[i] != '[' {
		name := readName()
		if name == "*" {
			comp.universal = true
		} else {
			comp.tag = strings.ToLower(name)
		}
	}

	for i < len(tok) {
		switch tok[i] {
		case '.':
			i++
			name := readName()
			if name == "" {
				return compound{}, false
			}
			comp.classes = append(comp.classes, name)
		case '#':
			i++
			name := readName()
			if name == "" {
				return compound{}, false
			}
			comp.id = name
		case '[':
			end := strings.IndexByte(tok[i:], ']')
			if end < 0 {
				return compound{}, false
			}
			inner := tok[i+1 : i+end]
			i += end + 1

			m := attrMatcher{}
			if eq := strings.IndexByte(inner, '='); eq >= 0 {
				m.key = strings.ToLower(strings.TrimSpace(inner[:eq]))
				m.value = strings.Trim(strings.TrimSpace(inner[eq+1:]), `"'`)
				m.hasValue = true
			} else {
				m.key = strings.ToLower(strings.TrimSpace(inner))
			}
			if m.key == "" {
				return compound{}, false
			}
			comp.attrs = append(comp.attrs, m)
		default:
			return compound{}, false
		}
	}

	if !comp.universal && comp.tag == "" && comp.id == "" && len(comp.classes) == 0 && len(comp.attrs) == 0 {
		return compound{}, false
	}
	return comp, true
}

// computeSpecificity scores a selector with the standard weighting:
// ids count 100, classes and attributes 10, type selectors 1.
func computeSpecificity(parts []compound) int {
	score := 0
	for _, p := range parts {
		if p.id != "" {
			score += 100
		}
		score += 10 * (len(p.classes) + len(p.attrs))
		if p.tag != "" {
			score += 1
		}
	}
	return score
}

// matches reports whether the selector matches the given element.
func (s selector) matches(n *html.Node) bool {
	last := len(s.parts) - 1
	if !s.parts[last].matches(n) {
		return false
	}

	cur := n
	for i := last - 1; i >= 0; i-- {
		switch s.combinators[i] {
		case '>':
			cur = ParentElement(cur)
			if cur == nil || !s.parts[i].matches(cur) {
				return false
			}
		default:
			found := false
			for anc := ParentElement(cur); anc != nil; anc = ParentElement(anc) {
				if s.parts[i].matches(anc) {
					cur = anc
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
	}
	return true
}

// matches reports whether the compound matches one element node.
func (c compound) matches(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if c.tag != "" && n.Data != c.tag {
		return false
	}
	if c.id != "" && Attr(n, "id") != c.id {
		return false
	}
	if len(c.classes) > 0 {
		have := strings.Fields(Attr(n, "class"))
		for _, want := range c.classes {
			found := false
			for _, cls := range have {
				if cls == want {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
	}
	for _, m := range c.attrs {
		if m.hasValue {
			if Attr(n, m.key) != m.value {
				return false
			}
		} else if !HasAttr(n, m.key) {
			return false
		}
	}
	return true
}
