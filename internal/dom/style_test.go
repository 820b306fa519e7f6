package dom

import (
	"math"
	"testing"

	"golang.org/x/net/html"

	"github.com/a11yscan/a11yscan/internal/contrast"
)

// newResolver parses markup and builds a resolver without environment data.
func newResolver(t *testing.T, markup string) (*Document, *StyleResolver) {
	t.Helper()

	doc, err := ParseString(markup)
	if err != nil {
		t.Fatalf("ParseString returned error: %v", err)
	}
	return doc, NewStyleResolver(doc, nil)
}

// mustByID fails the test when the element is missing.
func mustByID(t *testing.T, doc *Document, id string) *html.Node {
	t.Helper()

	n := doc.ByID(id)
	if n == nil {
		t.Fatalf("element #%s not found", id)
	}
	return n
}

func colorsNear(a, b contrast.Color) bool {
	const eps = 1e-6
	return math.Abs(a.R-b.R) < eps &&
		math.Abs(a.G-b.G) < eps &&
		math.Abs(a.B-b.B) < eps &&
		math.Abs(a.A-b.A) < eps
}

// TestCascadePrecedence tests importance, origin, specificity, and
// source order resolving competing declarations.
func TestCascadePrecedence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		markup string
		want   string
	}{
		{
			name:   "sheet rule applies",
			markup: `<html><head><style>p { color: red; }</style></head><body><p id="x">t</p></body></html>`,
			want:   "red",
		},
		{
			name:   "inline beats sheet",
			markup: `<html><head><style>p { color: red; }</style></head><body><p id="x" style="color: blue">t</p></body></html>`,
			want:   "blue",
		},
		{
			name:   "important sheet beats inline",
			markup: `<html><head><style>p { color: red !important; }</style></head><body><p id="x" style="color: blue">t</p></body></html>`,
			want:   "red",
		},
		{
			name:   "class beats type",
			markup: `<html><head><style>p { color: red; } .note { color: green; }</style></head><body><p id="x" class="note">t</p></body></html>`,
			want:   "green",
		},
		{
			name:   "id beats class",
			markup: `<html><head><style>.note { color: green; } #x { color: red; }</style></head><body><p id="x" class="note">t</p></body></html>`,
			want:   "red",
		},
		{
			name:   "later rule wins tie",
			markup: `<html><head><style>p { color: red; } p { color: blue; }</style></head><body><p id="x">t</p></body></html>`,
			want:   "blue",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			doc, r := newResolver(t, tt.markup)
			got, ok := r.Declared(mustByID(t, doc, "x"), "color")
			if !ok {
				t.Fatal("Declared(color) reported no value")
			}
			if got != tt.want {
				t.Errorf("Declared(color) = %q, expected %q", got, tt.want)
			}
		})
	}
}

// TestTextColor tests inherited color resolution with the black default.
func TestTextColor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		markup string
		want   contrast.Color
	}{
		{
			name:   "default black",
			markup: `<html><body><p id="x">t</p></body></html>`,
			want:   contrast.Black,
		},
		{
			name:   "declared on node",
			markup: `<html><body><p id="x" style="color: #ff0000">t</p></body></html>`,
			want:   contrast.Color{R: 1, A: 1},
		},
		{
			name:   "inherited from ancestor",
			markup: `<html><body><div style="color: #ff0000"><p id="x">t</p></div></body></html>`,
			want:   contrast.Color{R: 1, A: 1},
		},
		{
			name:   "currentcolor defers to ancestor",
			markup: `<html><body><div style="color: #ff0000"><p id="x" style="color: currentcolor">t</p></div></body></html>`,
			want:   contrast.Color{R: 1, A: 1},
		},
		{
			name:   "unparseable defers to ancestor",
			markup: `<html><body><div style="color: #ff0000"><p id="x" style="color: var(--ink)">t</p></div></body></html>`,
			want:   contrast.Color{R: 1, A: 1},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			doc, r := newResolver(t, tt.markup)
			got := r.TextColor(mustByID(t, doc, "x"))
			if !colorsNear(got, tt.want) {
				t.Errorf("TextColor() = %+v, expected %+v", got, tt.want)
			}
		})
	}
}

// TestEffectiveBackground tests ancestor compositing down to the white canvas.
func TestEffectiveBackground(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		markup string
		want   contrast.Color
	}{
		{
			name:   "default white canvas",
			markup: `<html><body><p id="x">t</p></body></html>`,
			want:   contrast.White,
		},
		{
			name:   "opaque on node",
			markup: `<html><body><p id="x" style="background-color: #000000">t</p></body></html>`,
			want:   contrast.Black,
		},
		{
			name:   "opaque on ancestor",
			markup: `<html><body style="background-color: #000000"><div><p id="x">t</p></div></body></html>`,
			want:   contrast.Black,
		},
		{
			name:   "translucent over opaque ancestor",
			markup: `<html><body style="background-color: #0000ff"><p id="x" style="background-color: rgba(255, 0, 0, 0.5)">t</p></body></html>`,
			want:   contrast.Color{R: 0.5, G: 0, B: 0.5, A: 1},
		},
		{
			name:   "translucent over default canvas",
			markup: `<html><body><p id="x" style="background-color: rgba(0, 0, 0, 0.5)">t</p></body></html>`,
			want:   contrast.Color{R: 0.5, G: 0.5, B: 0.5, A: 1},
		},
		{
			name:   "shorthand color token",
			markup: `<html><body><p id="x" style="background: #000000 none no-repeat">t</p></body></html>`,
			want:   contrast.Black,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			doc, r := newResolver(t, tt.markup)
			got := r.EffectiveBackground(mustByID(t, doc, "x"))
			if !colorsNear(got, tt.want) {
				t.Errorf("EffectiveBackground() = %+v, expected %+v", got, tt.want)
			}
		})
	}
}

// TestFontSize tests unit conversion, relative resolution, and UA defaults.
func TestFontSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		markup string
		want   float64
	}{
		{
			name:   "default",
			markup: `<html><body><p id="x">t</p></body></html>`,
			want:   16,
		},
		{
			name:   "pixels",
			markup: `<html><body><p id="x" style="font-size: 20px">t</p></body></html>`,
			want:   20,
		},
		{
			name:   "points convert at 96/72",
			markup: `<html><body><p id="x" style="font-size: 12pt">t</p></body></html>`,
			want:   16,
		},
		{
			name:   "em resolves against parent",
			markup: `<html><body><div style="font-size: 20px"><p id="x" style="font-size: 1.5em">t</p></div></body></html>`,
			want:   30,
		},
		{
			name:   "rem resolves against root",
			markup: `<html><head><style>html { font-size: 20px; }</style></head><body><div style="font-size: 10px"><p id="x" style="font-size: 2rem">t</p></div></body></html>`,
			want:   40,
		},
		{
			name:   "percentage resolves against parent",
			markup: `<html><body><div style="font-size: 20px"><p id="x" style="font-size: 50%">t</p></div></body></html>`,
			want:   10,
		},
		{
			name:   "h1 default doubles inherited size",
			markup: `<html><body><h1 id="x">t</h1></body></html>`,
			want:   32,
		},
		{
			name:   "h2 default",
			markup: `<html><body><h2 id="x">t</h2></body></html>`,
			want:   24,
		},
		{
			name:   "absolute keyword",
			markup: `<html><body><p id="x" style="font-size: x-large">t</p></body></html>`,
			want:   24,
		},
		{
			name:   "larger scales parent",
			markup: `<html><body><p id="x" style="font-size: larger">t</p></body></html>`,
			want:   19.2,
		},
		{
			name:   "inherited through unstyled ancestors",
			markup: `<html><body><div style="font-size: 24px"><span><p id="x">t</p></span></div></body></html>`,
			want:   24,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			doc, r := newResolver(t, tt.markup)
			got := r.FontSize(mustByID(t, doc, "x"))
			if math.Abs(got-tt.want) > 0.01 {
				t.Errorf("FontSize() = %v, expected %v", got, tt.want)
			}
		})
	}
}

// TestBold tests font-weight resolution against UA defaults.
func TestBold(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		markup string
		want   bool
	}{
		{
			name:   "paragraph default",
			markup: `<html><body><p id="x">t</p></body></html>`,
			want:   false,
		},
		{
			name:   "strong default",
			markup: `<html><body><strong id="x">t</strong></body></html>`,
			want:   true,
		},
		{
			name:   "heading default",
			markup: `<html><body><h3 id="x">t</h3></body></html>`,
			want:   true,
		},
		{
			name:   "numeric weight 700",
			markup: `<html><body><p id="x" style="font-weight: 700">t</p></body></html>`,
			want:   true,
		},
		{
			name:   "numeric weight 400 overrides strong",
			markup: `<html><body><strong id="x" style="font-weight: 400">t</strong></body></html>`,
			want:   false,
		},
		{
			name:   "inherited bold",
			markup: `<html><body><div style="font-weight: bold"><span id="x">t</span></div></body></html>`,
			want:   true,
		},
		{
			name:   "normal stops inheritance walk",
			markup: `<html><body><div style="font-weight: bold"><span id="x" style="font-weight: normal">t</span></div></body></html>`,
			want:   false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			doc, r := newResolver(t, tt.markup)
			if got := r.Bold(mustByID(t, doc, "x")); got != tt.want {
				t.Errorf("Bold() = %v, expected %v", got, tt.want)
			}
		})
	}
}

// TestHidden tests removal from rendering by attribute, display,
// visibility, and opacity, including visibility re-declared on a
// descendant.
func TestHidden(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		markup string
		want   bool
	}{
		{
			name:   "visible by default",
			markup: `<html><body><p id="x">t</p></body></html>`,
			want:   false,
		},
		{
			name:   "hidden attribute",
			markup: `<html><body><p id="x" hidden>t</p></body></html>`,
			want:   true,
		},
		{
			name:   "display none on node",
			markup: `<html><body><p id="x" style="display: none">t</p></body></html>`,
			want:   true,
		},
		{
			name:   "display none on ancestor",
			markup: `<html><body><div style="display: none"><p id="x">t</p></div></body></html>`,
			want:   true,
		},
		{
			name:   "visibility hidden",
			markup: `<html><body><p id="x" style="visibility: hidden">t</p></body></html>`,
			want:   true,
		},
		{
			name:   "visibility restored on descendant",
			markup: `<html><body><div style="visibility: hidden"><p id="x" style="visibility: visible">t</p></div></body></html>`,
			want:   false,
		},
		{
			name:   "display none defeats restored visibility",
			markup: `<html><body><div style="display: none"><p id="x" style="visibility: visible">t</p></div></body></html>`,
			want:   true,
		},
		{
			name:   "opacity zero on node",
			markup: `<html><body><p id="x" style="opacity:0">t</p></body></html>`,
			want:   true,
		},
		{
			name:   "opacity zero on ancestor",
			markup: `<html><body><div style="opacity: 0"><span id="x">t</span></div></body></html>`,
			want:   true,
		},
		{
			name:   "opacity zero percent",
			markup: `<html><body><p id="x" style="opacity: 0%">t</p></body></html>`,
			want:   true,
		},
		{
			name:   "opacity restored on descendant stays hidden",
			markup: `<html><body><div style="opacity: 0"><p id="x" style="opacity: 1">t</p></div></body></html>`,
			want:   true,
		},
		{
			name:   "partial opacity is visible",
			markup: `<html><body><p id="x" style="opacity: 0.4">t</p></body></html>`,
			want:   false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			doc, r := newResolver(t, tt.markup)
			if got := r.Hidden(mustByID(t, doc, "x")); got != tt.want {
				t.Errorf("Hidden() = %v, expected %v", got, tt.want)
			}
		})
	}
}

// TestDisplay tests UA display defaults.
func TestDisplay(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		markup string
		want   string
	}{
		{name: "div block", markup: `<html><body><div id="x">t</div></body></html>`, want: "block"},
		{name: "span inline", markup: `<html><body><span id="x">t</span></body></html>`, want: "inline"},
		{name: "input inline-block", markup: `<html><body><input id="x"></body></html>`, want: "inline-block"},
		{name: "declared flex", markup: `<html><body><div id="x" style="display: flex">t</div></body></html>`, want: "flex"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			doc, r := newResolver(t, tt.markup)
			if got := r.Display(mustByID(t, doc, "x")); got != tt.want {
				t.Errorf("Display() = %q, expected %q", got, tt.want)
			}
		})
	}
}

// TestUnderlined tests the anchor default and text-decoration overrides.
func TestUnderlined(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		markup string
		want   bool
	}{
		{
			name:   "anchor with href",
			markup: `<html><body><a id="x" href="/">t</a></body></html>`,
			want:   true,
		},
		{
			name:   "anchor without href",
			markup: `<html><body><a id="x">t</a></body></html>`,
			want:   false,
		},
		{
			name:   "anchor with decoration removed",
			markup: `<html><body><a id="x" href="/" style="text-decoration: none">t</a></body></html>`,
			want:   false,
		},
		{
			name:   "paragraph with underline",
			markup: `<html><body><p id="x" style="text-decoration: underline">t</p></body></html>`,
			want:   true,
		},
		{
			name:   "decoration painting through ancestor",
			markup: `<html><body><div style="text-decoration: underline"><span id="x">t</span></div></body></html>`,
			want:   true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			doc, r := newResolver(t, tt.markup)
			if got := r.Underlined(mustByID(t, doc, "x")); got != tt.want {
				t.Errorf("Underlined() = %v, expected %v", got, tt.want)
			}
		})
	}
}
