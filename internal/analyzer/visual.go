package analyzer

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"path"
	"regexp"
	"strings"

	exif "github.com/dsoprea/go-exif/v3"
	"golang.org/x/net/html"

	"github.com/a11yscan/a11yscan/internal/config"
	"github.com/a11yscan/a11yscan/internal/dom"
	"github.com/a11yscan/a11yscan/internal/model"
)

// minReadableFontPx is the smallest font size treated as readable.
const minReadableFontPx = 12.0

// maxAltLength is the point past which alt text stops being a label
// and becomes prose that belongs next to the image.
const maxAltLength = 125

// VisualAnalyzer judges the visual presentation layer: alt text
// quality, media alternatives, layout-table misuse, and tiny text.
type VisualAnalyzer struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewVisualAnalyzer creates the visual-analysis system.
func NewVisualAnalyzer(cfg *config.Config, logger *slog.Logger) *VisualAnalyzer {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &VisualAnalyzer{cfg: cfg, logger: logger}
}

// Name implements System.
func (v *VisualAnalyzer) Name() string { return "visual" }

// Analyze implements System.
func (v *VisualAnalyzer) Analyze(ctx context.Context, data *AnalysisData) (*model.AnalyzerResult, error) {
	checks := []check{
		{name: "alt-quality", run: v.checkAltQuality},
		{name: "media", run: v.checkMedia},
		{name: "layout-tables", run: v.checkLayoutTables},
		{name: "text-size", run: v.checkTextSize},
	}
	return runChecks(ctx, v.logger, v.Name(), data, checks)
}

// isDecorativeImage reports images that legitimately carry no text
// alternative: explicitly presentational, hidden from the
// accessibility tree, or small icon-styled ornamentation.
func isDecorativeImage(info model.ElementInfo) bool {
	role := strings.ToLower(strings.TrimSpace(info.Attr("role")))
	if role == "presentation" || role == "none" {
		return true
	}
	if strings.EqualFold(info.Attr("aria-hidden"), "true") {
		return true
	}
	class := strings.ToLower(info.Class)
	if strings.Contains(class, "icon") || strings.Contains(class, "decoration") {
		return smallRect(info.Rect)
	}
	return false
}

// smallRect reports icon-sized geometry. Unknown geometry does not
// count as small; without evidence the image is treated as content.
func smallRect(r model.Rect) bool {
	return !r.Empty() && r.Width <= 48 && r.Height <= 48
}

var (
	// genericAltPattern matches alt text naming the element kind
	// instead of the content. Meaningful single-word descriptions such
	// as "logo" stay unflagged.
	genericAltPattern = regexp.MustCompile(`(?i)^(image|photo|picture|graphic|icon|spacer|img)$`)

	// imageFileExtPattern matches text ending in an image file
	// extension.
	imageFileExtPattern = regexp.MustCompile(`(?i)\.(jpe?g|png|gif|webp|svg|bmp|tiff?|avif)$`)
)

// checkAltQuality grades the alt text of every content image: missing
// attribute, explicitly empty without a decorative marker, filename
// echoes, kind-words, and labels too long to skim.
func (v *VisualAnalyzer) checkAltQuality(data *AnalysisData) []model.AccessibilityIssue {
	issues := make([]model.AccessibilityIssue, 0)

	for _, el := range data.Context.Images {
		info := el.Info
		decorative := isDecorativeImage(info)

		if !info.HasAttr("alt") {
			if decorative {
				continue
			}
			issue := model.NewIssue(model.IssueMissingAltText, info,
				fmt.Sprintf("<%s> has no alt attribute.", info.Tag), 0.95)
			v.enrichFromEXIF(&issue, info)
			issues = append(issues, issue)
			continue
		}

		alt := strings.TrimSpace(info.Attr("alt"))
		if alt == "" {
			if decorative {
				continue
			}
			issue := model.NewIssue(model.IssueMissingAltText, info,
				"Alt text is empty but the image is not marked decorative.", 0.9)
			v.enrichFromEXIF(&issue, info)
			issues = append(issues, issue)
			continue
		}

		switch {
		case redundantFilenameAlt(alt, info.Attr("src")):
			issue := model.NewIssue(model.IssueMissingAltText, info,
				fmt.Sprintf("Alt text %q repeats the image filename.", alt), 0.6)
			v.enrichFromEXIF(&issue, info)
			issues = append(issues, issue)
		case genericAltPattern.MatchString(alt):
			issue := model.NewIssue(model.IssueMissingAltText, info,
				fmt.Sprintf("Alt text %q names the element kind, not the content.", alt), 0.6)
			v.enrichFromEXIF(&issue, info)
			issues = append(issues, issue)
		case len(alt) > maxAltLength:
			issue := model.NewIssue(model.IssueMissingAltText, info,
				fmt.Sprintf("Alt text is %d characters long; screen readers cannot skim it.", len(alt)), 0.6)
			issue.Severity = model.SeverityLow
			issues = append(issues, issue)
		}
	}
	return issues
}

// redundantFilenameAlt reports alt text that echoes the image file
// name, with or without its extension.
func redundantFilenameAlt(alt, src string) bool {
	if imageFileExtPattern.MatchString(alt) {
		return true
	}
	if src == "" || strings.HasPrefix(src, "data:") {
		return false
	}
	base := path.Base(src)
	if i := strings.IndexByte(base, '?'); i >= 0 {
		base = base[:i]
	}
	if base == "" || base == "." || base == "/" {
		return false
	}
	if strings.EqualFold(alt, base) {
		return true
	}
	stem := strings.TrimSuffix(base, path.Ext(base))
	return stem != "" && strings.EqualFold(alt, stem)
}

// enrichFromEXIF appends the image's embedded EXIF description, when
// one exists, to the suggested fix. Only inline data: images are
// inspected; the analyzer never fetches anything over the network.
func (v *VisualAnalyzer) enrichFromEXIF(issue *model.AccessibilityIssue, info model.ElementInfo) {
	src := info.Attr("src")
	if !strings.HasPrefix(src, "data:image/") {
		return
	}
	if desc := dataURLImageDescription(src); desc != "" {
		issue.SuggestedFix += fmt.Sprintf(" The embedded image metadata suggests a description: %q.", desc)
	}
}

// dataURLImageDescription decodes an inline image and pulls a
// human-written description out of its EXIF metadata.
func dataURLImageDescription(dataURL string) string {
	parts := strings.SplitN(dataURL, ",", 2)
	if len(parts) != 2 {
		return ""
	}

	data, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		// Try URL-safe base64
		data, err = base64.URLEncoding.DecodeString(parts[1])
		if err != nil {
			return ""
		}
	}

	rawExif, err := exif.SearchAndExtractExif(data)
	if err != nil || rawExif == nil {
		return ""
	}
	entries, _, err := exif.GetFlatExifData(rawExif, nil)
	if err != nil {
		return ""
	}

	for _, entry := range entries {
		switch entry.TagName {
		case "ImageDescription", "XPTitle":
			if desc := strings.TrimSpace(entry.Formatted); desc != "" {
				return desc
			}
		}
	}
	return ""
}

// hasCaptionTrack reports whether a media element carries a captions
// or subtitles track.
func hasCaptionTrack(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.Data != "track" {
			continue
		}
		switch strings.ToLower(dom.Attr(c, "kind")) {
		case "captions", "subtitles":
			return true
		}
	}
	return false
}

// checkMedia flags media without text alternatives and media that
// starts making noise on its own: videos without caption tracks,
// audio without an apparent transcript, and unmuted autoplay without
// controls.
func (v *VisualAnalyzer) checkMedia(data *AnalysisData) []model.AccessibilityIssue {
	issues := make([]model.AccessibilityIssue, 0)
	pc := data.Context

	bodyText := ""
	bodyScanned := false
	pageMentionsTranscript := func() bool {
		if !bodyScanned {
			bodyScanned = true
			if body := pc.Document.Body(); body != nil {
				bodyText = strings.ToLower(dom.Text(body))
			}
		}
		return strings.Contains(bodyText, "transcript")
	}

	for _, el := range pc.Media {
		n := el.Node
		switch n.Data {
		case "video":
			if !hasCaptionTrack(n) {
				issue := model.NewIssue(model.IssueSemanticMarkup, el.Info,
					"Video has no caption or subtitle track.", 0.9)
				issue.WCAGCriteria = []string{"1.2.2"}
				issues = append(issues, issue)
			}
		case "audio":
			if !pageMentionsTranscript() {
				issue := model.NewIssue(model.IssueSemanticMarkup, el.Info,
					"Audio content has no apparent transcript on the page.", 0.4)
				issue.WCAGCriteria = []string{"1.2.1"}
				issues = append(issues, issue)
			}
		}

		if el.Info.HasAttr("autoplay") && !el.Info.HasAttr("controls") && !el.Info.HasAttr("muted") {
			issue := model.NewIssue(model.IssueSemanticMarkup, el.Info,
				fmt.Sprintf("<%s> autoplays without controls to stop it.", n.Data), 0.95)
			issue.Severity = model.SeverityHigh
			issue.WCAGCriteria = []string{"1.4.2"}
			issues = append(issues, issue)
		}
	}
	return issues
}

// checkLayoutTables flags tables with no data-table semantics that are
// not marked presentational. Screen readers announce them as data
// tables, row by row.
func (v *VisualAnalyzer) checkLayoutTables(data *AnalysisData) []model.AccessibilityIssue {
	issues := make([]model.AccessibilityIssue, 0)
	for _, el := range data.Context.Tables {
		role := strings.ToLower(strings.TrimSpace(el.Info.Attr("role")))
		if role == "presentation" || role == "none" {
			continue
		}
		if hasTableSemantics(el.Node) {
			continue
		}
		issues = append(issues, model.NewIssue(model.IssueSemanticMarkup, el.Info,
			"Table declares no header semantics; mark layout tables with role=presentation.", 0.8))
	}
	return issues
}

// hasTableSemantics reports whether a table declares data-table
// structure: header cells, a caption, or cell scope attributes.
// Nested tables are judged on their own.
func hasTableSemantics(table *html.Node) bool {
	found := false
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if found {
			return
		}
		if n.Type == html.ElementNode {
			switch n.Data {
			case "th", "caption":
				found = true
				return
			case "td":
				if dom.HasAttr(n, "scope") || dom.HasAttr(n, "headers") {
					found = true
					return
				}
			case "table":
				if n != table {
					return
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(table)
	return found
}

// checkTextSize flags text rendered below the readability floor.
func (v *VisualAnalyzer) checkTextSize(data *AnalysisData) []model.AccessibilityIssue {
	issues := make([]model.AccessibilityIssue, 0)
	insp := data.Context.Inspector

	for _, el := range data.Context.TextBlocks {
		size, _ := insp.FontInfo(el.Node)
		if size <= 0 || size >= minReadableFontPx {
			continue
		}
		issues = append(issues, model.NewIssue(model.IssueTextSize, el.Info,
			fmt.Sprintf("Text is rendered at %.0fpx, below the %.0fpx readability floor.",
				size, minReadableFontPx), 0.9))
	}
	return issues
}
