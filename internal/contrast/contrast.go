package contrast

import "math"

// WCAG 2.1 contrast ratio thresholds (success criteria 1.4.3 and 1.4.6).
const (
	// RatioAANormal is the minimum ratio for normal text at level AA.
	RatioAANormal = 4.5

	// RatioAALarge is the minimum ratio for large text at level AA.
	RatioAALarge = 3.0

	// RatioAAANormal is the minimum ratio for normal text at level AAA.
	RatioAAANormal = 7.0

	// RatioAAALarge is the minimum ratio for large text at level AAA.
	RatioAAALarge = 4.5
)

// pixelsPerPoint converts CSS points to CSS pixels (96px per inch, 72pt per inch).
const pixelsPerPoint = 96.0 / 72.0

// Large-text boundaries from the WCAG definition: 18pt, or 14pt bold.
const (
	largeTextMinPx     = 18 * pixelsPerPoint
	largeTextBoldMinPx = 14 * pixelsPerPoint
)

// Level identifies the WCAG conformance level used to select contrast
// thresholds. Only AAA raises the bar; every other level uses the AA
// thresholds because level A has no contrast success criterion.
type Level string

const (
	// LevelAA selects the 4.5:1 (normal) and 3.0:1 (large) thresholds.
	LevelAA Level = "AA"

	// LevelAAA selects the 7.0:1 (normal) and 4.5:1 (large) thresholds.
	LevelAAA Level = "AAA"
)

// Result describes the outcome of a contrast evaluation for one
// foreground/background pair.
type Result struct {
	// Ratio is the computed contrast ratio, between 1 and 21.
	Ratio float64

	// Required is the minimum ratio demanded by the evaluated level
	// and text size.
	Required float64

	// Level is the conformance level the pair was evaluated against.
	Level Level

	// LargeText reports whether the text qualified as large
	// (18pt and up, or 14pt and up when bold).
	LargeText bool

	// Passes reports whether Ratio meets Required.
	Passes bool

	// PassesAA reports whether the ratio meets the AA threshold for
	// this text size, independent of the evaluated level.
	PassesAA bool

	// PassesAAA reports whether the ratio meets the AAA threshold for
	// this text size, independent of the evaluated level.
	PassesAAA bool
}

// Deficit returns how far the ratio falls short of the requirement.
// Zero when the pair passes.
func (r Result) Deficit() float64 {
	if r.Passes {
		return 0
	}
	return r.Required - r.Ratio
}

// Luminance returns the WCAG relative luminance of a color, ignoring alpha.
// Channels are linearized with the piecewise sRGB transfer function and
// weighted by the Rec. 709 coefficients.
func Luminance(c Color) float64 {
	return 0.2126*linearize(c.R) + 0.7152*linearize(c.G) + 0.0722*linearize(c.B)
}

// linearize converts one gamma-encoded sRGB channel to linear light.
// The 0.03928 breakpoint is the value published in WCAG 2.1.
func linearize(channel float64) float64 {
	if channel <= 0.03928 {
		return channel / 12.92
	}
	return math.Pow((channel+0.055)/1.055, 2.4)
}

// Ratio returns the WCAG contrast ratio between two opaque colors.
// The result is symmetric in its arguments and lies in [1, 21].
func Ratio(a, b Color) float64 {
	la := Luminance(a)
	lb := Luminance(b)
	hi, lo := la, lb
	if lo > hi {
		hi, lo = lo, hi
	}
	return (hi + 0.05) / (lo + 0.05)
}

// Composite layers fg over bg with source-over alpha compositing and
// returns the blended color. Opaque foregrounds are returned unchanged.
func Composite(fg, bg Color) Color {
	if fg.A >= 1 {
		return fg
	}
	if fg.A <= 0 {
		return bg
	}

	outA := fg.A + bg.A*(1-fg.A)
	if outA == 0 {
		return Color{}
	}
	return Color{
		R: (fg.R*fg.A + bg.R*bg.A*(1-fg.A)) / outA,
		G: (fg.G*fg.A + bg.G*bg.A*(1-fg.A)) / outA,
		B: (fg.B*fg.A + bg.B*bg.A*(1-fg.A)) / outA,
		A: outA,
	}
}

// RequiredRatio returns the minimum contrast ratio for the given
// conformance level and text size.
func RequiredRatio(level Level, largeText bool) float64 {
	if level == LevelAAA {
		if largeText {
			return RatioAAALarge
		}
		return RatioAAANormal
	}
	if largeText {
		return RatioAALarge
	}
	return RatioAANormal
}

// IsLargeText reports whether text qualifies as large under the WCAG
// definition: at least 18pt, or at least 14pt when bold. Font sizes
// are given in CSS pixels.
func IsLargeText(fontSizePx float64, bold bool) bool {
	if bold {
		return fontSizePx >= largeTextBoldMinPx
	}
	return fontSizePx >= largeTextMinPx
}

// Evaluate computes the contrast ratio of fg text over bg and checks it
// against the thresholds for the given level and text size.
//
// Translucent colors are resolved before the ratio is computed: a
// translucent background is composited over white (the ultimate page
// background), and a translucent foreground is composited over the
// resolved background.
func Evaluate(fg, bg Color, level Level, largeText bool) Result {
	if !bg.Opaque() {
		bg = Composite(bg, White)
	}
	if !fg.Opaque() {
		fg = Composite(fg, bg)
	}

	ratio := Ratio(fg, bg)
	required := RequiredRatio(level, largeText)

	return Result{
		Ratio:     ratio,
		Required:  required,
		Level:     level,
		LargeText: largeText,
		Passes:    ratio >= required,
		PassesAA:  ratio >= RequiredRatio(LevelAA, largeText),
		PassesAAA: ratio >= RequiredRatio(LevelAAA, largeText),
	}
}
