package contrast

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// ErrInvalidColor is returned when a CSS color value cannot be parsed.
// The wrapped message carries the offending value for diagnostics.
var ErrInvalidColor = errors.New("invalid color value")

// Color is an RGBA color with straight (non-premultiplied) alpha.
// All channels are in the range [0, 1].
//
// Design decision: We use float64 channels instead of uint8 because:
// 1. WCAG luminance math operates on normalized sRGB channels anyway
// 2. Alpha compositing of translucent backgrounds needs fractional precision
// 3. It avoids repeated 255-division noise at every call site
type Color struct {
	// R is the red channel in [0, 1].
	R float64

	// G is the green channel in [0, 1].
	G float64

	// B is the blue channel in [0, 1].
	B float64

	// A is the alpha channel in [0, 1]. 0 is fully transparent, 1 is opaque.
	A float64
}

// White is opaque white, the fallback page background.
var White = Color{R: 1, G: 1, B: 1, A: 1}

// Black is opaque black, the default text color.
var Black = Color{A: 1}

// Opaque reports whether the color has full alpha.
func (c Color) Opaque() bool {
	return c.A >= 1
}

// Transparent reports whether the color has zero alpha.
func (c Color) Transparent() bool {
	return c.A <= 0
}

// Hex returns the color as a #rrggbb string, ignoring alpha.
// Useful for reporting the resolved color back to the user.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x",
		uint8(math.Round(clamp01(c.R)*255)),
		uint8(math.Round(clamp01(c.G)*255)),
		uint8(math.Round(clamp01(c.B)*255)))
}

// ParseColor parses a CSS color value into a Color.
//
// Supported forms: hex (#rgb, #rgba, #rrggbb, #rrggbbaa), rgb()/rgba()
// with numeric or percentage channels, hsl()/hsla(), the keyword
// "transparent", and the standard CSS named colors. Parsing is
// case-insensitive and tolerant of surrounding whitespace.
func ParseColor(value string) (Color, error) {
	s := strings.ToLower(strings.TrimSpace(value))
	switch {
	case s == "":
		return Color{}, fmt.Errorf("%w: empty string", ErrInvalidColor)
	case s == "transparent":
		return Color{}, nil
	case strings.HasPrefix(s, "#"):
		return parseHex(s)
	case strings.HasPrefix(s, "rgb(") || strings.HasPrefix(s, "rgba("):
		return parseRGBFunction(s)
	case strings.HasPrefix(s, "hsl(") || strings.HasPrefix(s, "hsla("):
		return parseHSLFunction(s)
	}

	if hex, ok := namedColors[s]; ok {
		return parseHex(hex)
	}
	return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, value)
}

// parseHex parses #rgb, #rgba, #rrggbb, and #rrggbbaa hex notation.
// The 3- and 6-digit forms are delegated to go-colorful; the alpha
// variants peel the alpha digits off first.
func parseHex(s string) (Color, error) {
	alpha := 1.0
	rgb := s

	switch len(s) {
	case 4, 7: // #rgb, #rrggbb
	case 5: // #rgba
		a, err := strconv.ParseUint(s[4:5], 16, 8)
		if err != nil {
			return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
		}
		alpha = float64(a*16+a) / 255
		rgb = s[:4]
	case 9: // #rrggbbaa
		a, err := strconv.ParseUint(s[7:9], 16, 8)
		if err != nil {
			return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
		}
		alpha = float64(a) / 255
		rgb = s[:7]
	default:
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}

	c, err := colorful.Hex(rgb)
	if err != nil {
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	return Color{R: c.R, G: c.G, B: c.B, A: alpha}, nil
}

// parseRGBFunction parses rgb() and rgba() functional notation.
// Both legacy comma-separated and modern space-separated syntax are
// accepted, including the "/ alpha" form.
func parseRGBFunction(s string) (Color, error) {
	parts, err := functionArgs(s)
	if err != nil {
		return Color{}, err
	}
	if len(parts) != 3 && len(parts) != 4 {
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}

	var channels [3]float64
	for i := 0; i < 3; i++ {
		v, err := parseRGBChannel(parts[i])
		if err != nil {
			return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
		}
		channels[i] = v
	}

	alpha := 1.0
	if len(parts) == 4 {
		alpha, err = parseAlpha(parts[3])
		if err != nil {
			return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
		}
	}

	return Color{R: channels[0], G: channels[1], B: channels[2], A: alpha}, nil
}

// parseHSLFunction parses hsl() and hsla() functional notation.
// The hue accepts an optional "deg" suffix; saturation and lightness
// must be percentages per the CSS grammar.
func parseHSLFunction(s string) (Color, error) {
	parts, err := functionArgs(s)
	if err != nil {
		return Color{}, err
	}
	if len(parts) != 3 && len(parts) != 4 {
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}

	hue, err := strconv.ParseFloat(strings.TrimSuffix(parts[0], "deg"), 64)
	if err != nil {
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	hue = math.Mod(hue, 360)
	if hue < 0 {
		hue += 360
	}

	sat, err := parsePercentage(parts[1])
	if err != nil {
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	light, err := parsePercentage(parts[2])
	if err != nil {
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}

	alpha := 1.0
	if len(parts) == 4 {
		alpha, err = parseAlpha(parts[3])
		if err != nil {
			return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
		}
	}

	c := colorful.Hsl(hue, sat, light)
	return Color{R: clamp01(c.R), G: clamp01(c.G), B: clamp01(c.B), A: alpha}, nil
}

// functionArgs extracts the argument list of a CSS functional color value.
// Commas and the alpha slash are normalized to spaces so that legacy and
// modern grammars produce the same token list.
func functionArgs(s string) ([]string, error) {
	open := strings.IndexByte(s, '(')
	if open < 0 || !strings.HasSuffix(s, ")") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	inner := s[open+1 : len(s)-1]
	inner = strings.NewReplacer(",", " ", "/", " ").Replace(inner)

	parts := strings.Fields(inner)
	if len(parts) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	return parts, nil
}

// parseRGBChannel parses one rgb() channel, either a number on the
// 0-255 scale or a percentage, and normalizes it to [0, 1].
func parseRGBChannel(s string) (float64, error) {
	if strings.HasSuffix(s, "%") {
		pct, err := parsePercentage(s)
		if err != nil {
			return 0, err
		}
		return pct, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return clamp01(v / 255), nil
}

// parseAlpha parses an alpha component, either a number in [0, 1]
// or a percentage.
func parseAlpha(s string) (float64, error) {
	if strings.HasSuffix(s, "%") {
		return parsePercentage(s)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return clamp01(v), nil
}

// parsePercentage parses "NN%" into a fraction in [0, 1].
func parsePercentage(s string) (float64, error) {
	if !strings.HasSuffix(s, "%") {
		return 0, fmt.Errorf("expected percentage, got %q", s)
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
	if err != nil {
		return 0, err
	}
	return clamp01(v / 100), nil
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// namedColors maps the standard CSS color keywords to their hex values.
// The list follows CSS Color Module Level 4, including rebeccapurple.
var namedColors = map[string]string{
	"aliceblue":            "#f0f8ff",
	"antiquewhite":         "#faebd7",
	"aqua":                 "#00ffff",
	"aquamarine":           "#7fffd4",
	"azure":                "#f0ffff",
	"beige":                "#f5f5dc",
	"bisque":               "#ffe4c4",
	"black":                "#000000",
	"blanchedalmond":       "#ffebcd",
	"blue":                 "#0000ff",
	"blueviolet":           "#8a2be2",
	"brown":                "#a52a2a",
	"burlywood":            "#deb887",
	"cadetblue":            "#5f9ea0",
	"chartreuse":           "#7fff00",
	"chocolate":            "#d2691e",
	"coral":                "#ff7f50",
	"cornflowerblue":       "#6495ed",
	"cornsilk":             "#fff8dc",
	"crimson":              "#dc143c",
	"cyan":                 "#00ffff",
	"darkblue":             "#00008b",
	"darkcyan":             "#008b8b",
	"darkgoldenrod":        "#b8860b",
	"darkgray":             "#a9a9a9",
	"darkgreen":            "#006400",
	"darkgrey":             "#a9a9a9",
	"darkkhaki":            "#bdb76b",
	"darkmagenta":          "#8b008b",
	"darkolivegreen":       "#556b2f",
	"darkorange":           "#ff8c00",
	"darkorchid":           "#9932cc",
	"darkred":              "#8b0000",
	"darksalmon":           "#e9967a",
	"darkseagreen":         "#8fbc8f",
	"darkslateblue":        "#483d8b",
	"darkslategray":        "#2f4f4f",
	"darkslategrey":        "#2f4f4f",
	"darkturquoise":        "#00ced1",
	"darkviolet":           "#9400d3",
	"deeppink":             "#ff1493",
	"deepskyblue":          "#00bfff",
	"dimgray":              "#696969",
	"dimgrey":              "#696969",
	"dodgerblue":           "#1e90ff",
	"firebrick":            "#b22222",
	"floralwhite":          "#fffaf0",
	"forestgreen":          "#228b22",
	"fuchsia":              "#ff00ff",
	"gainsboro":            "#dcdcdc",
	"ghostwhite":           "#f8f8ff",
	"gold":                 "#ffd700",
	"goldenrod":            "#daa520",
	"gray":                 "#808080",
	"green":                "#008000",
	"greenyellow":          "#adff2f",
	"grey":                 "#808080",
	"honeydew":             "#f0fff0",
	"hotpink":              "#ff69b4",
	"indianred":            "#cd5c5c",
	"indigo":               "#4b0082",
	"ivory":                "#fffff0",
	"khaki":                "#f0e68c",
	"lavender":             "#e6e6fa",
	"lavenderblush":        "#fff0f5",
	"lawngreen":            "#7cfc00",
	"lemonchiffon":         "#fffacd",
	"lightblue":            "#add8e6",
	"lightcoral":           "#f08080",
	"lightcyan":            "#e0ffff",
	"lightgoldenrodyellow": "#fafad2",
	"lightgray":            "#d3d3d3",
	"lightgreen":           "#90ee90",
	"lightgrey":            "#d3d3d3",
	"lightpink":            "#ffb6c1",
	"lightsalmon":          "#ffa07a",
	"lightseagreen":        "#20b2aa",
	"lightskyblue":         "#87cefa",
	"lightslategray":       "#778899",
	"lightslategrey":       "#778899",
	"lightsteelblue":       "#b0c4de",
	"lightyellow":          "#ffffe0",
	"lime":                 "#00ff00",
	"limegreen":            "#32cd32",
	"linen":                "#faf0e6",
	"magenta":              "#ff00ff",
	"maroon":               "#800000",
	"mediumaquamarine":     "#66cdaa",
	"mediumblue":           "#0000cd",
	"mediumorchid":         "#ba55d3",
	"mediumpurple":         "#9370db",
	"mediumseagreen":       "#3cb371",
	"mediumslateblue":      "#7b68ee",
	"mediumspringgreen":    "#00fa9a",
	"mediumturquoise":      "#48d1cc",
	"mediumvioletred":      "#c71585",
	"midnightblue":         "#191970",
	"mintcream":            "#f5fffa",
	"mistyrose":            "#ffe4e1",
	"moccasin":             "#ffe4b5",
	"navajowhite":          "#ffdead",
	"navy":                 "#000080",
	"oldlace":              "#fdf5e6",
	"olive":                "#808000",
	"olivedrab":            "#6b8e23",
	"orange":               "#ffa500",
	"orangered":            "#ff4500",
	"orchid":               "#da70d6",
	"palegoldenrod":        "#eee8aa",
	"palegreen":            "#98fb98",
	"paleturquoise":        "#afeeee",
	"palevioletred":        "#db7093",
	"papayawhip":           "#ffefd5",
	"peachpuff":            "#ffdab9",
	"peru":                 "#cd853f",
	"pink":                 "#ffc0cb",
	"plum":                 "#dda0dd",
	"powderblue":           "#b0e0e6",
	"purple":               "#800080",
	"rebeccapurple":        "#663399",
	"red":                  "#ff0000",
	"rosybrown":            "#bc8f8f",
	"royalblue":            "#4169e1",
	"saddlebrown":          "#8b4513",
	"salmon":               "#fa8072",
	"sandybrown":           "#f4a460",
	"seagreen":             "#2e8b57",
	"seashell":             "#fff5ee",
	"sienna":               "#a0522d",
	"silver":               "#c0c0c0",
	"skyblue":              "#87ceeb",
	"slateblue":            "#6a5acd",
	"slategray":            "#708090",
	"slategrey":            "#708090",
	"snow":                 "#fffafa",
	"springgreen":          "#00ff7f",
	"steelblue":            "#4682b4",
	"tan":                  "#d2b48c",
	"teal":                 "#008080",
	"thistle":              "#d8bfd8",
	"tomato":               "#ff6347",
	"turquoise":            "#40e0d0",
	"violet":               "#ee82ee",
	"wheat":                "#f5deb3",
	"white":                "#ffffff",
	"whitesmoke":           "#f5f5f5",
	"yellow":               "#ffff00",
	"yellowgreen":          "#9acd32",
}
