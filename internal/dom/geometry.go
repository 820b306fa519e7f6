package dom

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/a11yscan/a11yscan/internal/model"
)

// Default viewport dimensions, matching the most common desktop
// browsing resolution.
const (
	DefaultViewportWidth  = 1366
	DefaultViewportHeight = 768
)

// DefaultViewport returns the viewport used when the caller does not
// supply one.
func DefaultViewport() model.ViewportInfo {
	return model.ViewportInfo{Width: DefaultViewportWidth, Height: DefaultViewportHeight}
}

// Environment supplies rendering facts the analyzer cannot derive from
// markup alone: computed styles and layout geometry. It is the sole
// environmental dependency of the analysis pipeline, which keeps the
// pipeline a pure function of the parsed document plus whatever the
// environment reports.
//
// Design decision: An interface with a static fallback implementation
// rather than a hard dependency on a rendering engine because:
//  1. Scans must work offline on plain HTML with no browser attached
//  2. Tests can script exact computed styles and rectangles
//  3. A headless-browser adapter can slot in without touching analyzers
type Environment interface {
	// ComputedStyle returns the computed value of a CSS property for a
	// node when the environment knows it. ok is false when the
	// environment has no answer, letting the static cascade decide.
	ComputedStyle(n *html.Node, property string) (value string, ok bool)

	// BoundingRect returns the layout rectangle of a node when the
	// environment knows it. ok is false when geometry is unavailable.
	BoundingRect(n *html.Node) (rect model.Rect, ok bool)
}

// StaticEnvironment is the default Environment. It reports no computed
// styles and estimates geometry from width and height attributes, the
// only layout facts plain markup carries.
type StaticEnvironment struct {
	// Viewport is the assumed browser viewport.
	Viewport model.ViewportInfo
}

// NewStaticEnvironment returns a static environment with the default
// viewport.
func NewStaticEnvironment() *StaticEnvironment {
	return &StaticEnvironment{Viewport: DefaultViewport()}
}

// ComputedStyle always defers to the static cascade.
func (e *StaticEnvironment) ComputedStyle(_ *html.Node, _ string) (string, bool) {
	return "", false
}

// sizedTags carry meaningful width and height attributes.
var sizedTags = map[string]bool{
	"img":    true,
	"video":  true,
	"iframe": true,
	"canvas": true,
	"embed":  true,
	"object": true,
	"svg":    true,
}

// BoundingRect estimates a rectangle from width and height attributes
// for replaced elements. Position is unknown to a static pass, so
// estimated rectangles sit at the origin.
func (e *StaticEnvironment) BoundingRect(n *html.Node) (model.Rect, bool) {
	if n == nil || !sizedTags[n.Data] {
		return model.Rect{}, false
	}

	w, wok := parseDimension(Attr(n, "width"), e.Viewport.Width)
	h, hok := parseDimension(Attr(n, "height"), e.Viewport.Height)
	if !wok || !hok {
		return model.Rect{}, false
	}
	return model.Rect{Width: w, Height: h}, true
}

// parseDimension parses a width or height attribute. Plain numbers are
// pixels; percentages resolve against the viewport axis.
func parseDimension(v string, viewportAxis float64) (float64, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, false
	}
	if strings.HasSuffix(v, "%") {
		pct, err := strconv.ParseFloat(strings.TrimSuffix(v, "%"), 64)
		if err != nil || pct < 0 {
			return 0, false
		}
		return pct / 100 * viewportAxis, true
	}
	v = strings.TrimSuffix(v, "px")
	px, err := strconv.ParseFloat(v, 64)
	if err != nil || px < 0 {
		return 0, false
	}
	return px, true
}
