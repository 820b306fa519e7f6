package analyzer

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/a11yscan/a11yscan/internal/config"
	"github.com/a11yscan/a11yscan/internal/model"
)

// TestIsDecorativeImage tests the decorative-image classification on
// element snapshots.
func TestIsDecorativeImage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		info model.ElementInfo
		want bool
	}{
		{
			name: "presentation role",
			info: model.ElementInfo{Tag: "img", Attributes: map[string]string{"role": "presentation"}},
			want: true,
		},
		{
			name: "none role",
			info: model.ElementInfo{Tag: "img", Attributes: map[string]string{"role": "none"}},
			want: true,
		},
		{
			name: "aria-hidden",
			info: model.ElementInfo{Tag: "img", Attributes: map[string]string{"aria-hidden": "true"}},
			want: true,
		},
		{
			name: "icon class with icon-sized geometry",
			info: model.ElementInfo{Tag: "img", Class: "nav-icon", Rect: model.Rect{Width: 16, Height: 16}},
			want: true,
		},
		{
			name: "icon class with large geometry",
			info: model.ElementInfo{Tag: "img", Class: "nav-icon", Rect: model.Rect{Width: 320, Height: 240}},
			want: false,
		},
		{
			name: "icon class with unknown geometry",
			info: model.ElementInfo{Tag: "img", Class: "nav-icon"},
			want: false,
		},
		{
			name: "decoration class with icon-sized geometry",
			info: model.ElementInfo{Tag: "img", Class: "corner-decoration", Rect: model.Rect{Width: 32, Height: 32}},
			want: true,
		},
		{
			name: "plain content image",
			info: model.ElementInfo{Tag: "img", Class: "hero", Rect: model.Rect{Width: 800, Height: 400}},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := isDecorativeImage(tt.info); got != tt.want {
				t.Errorf("isDecorativeImage() = %v, expected %v", got, tt.want)
			}
		})
	}
}

// TestRedundantFilenameAlt tests filename-echo detection.
func TestRedundantFilenameAlt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		alt  string
		src  string
		want bool
	}{
		{name: "alt ends in an image extension", alt: "photo.jpg", src: "photo.jpg", want: true},
		{name: "alt matches the filename stem", alt: "photo", src: "/img/photo.jpg", want: true},
		{name: "case-insensitive match", alt: "PHOTO", src: "/img/photo.jpg", want: true},
		{name: "query string is ignored", alt: "chart", src: "chart.png?v=2", want: true},
		{name: "descriptive alt", alt: "Sunset over the bay", src: "sunset.jpg", want: false},
		{name: "data url source", alt: "anything", src: "data:image/png;base64,AAAA", want: false},
		{name: "empty source", alt: "photo", src: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := redundantFilenameAlt(tt.alt, tt.src); got != tt.want {
				t.Errorf("redundantFilenameAlt(%q, %q) = %v, expected %v", tt.alt, tt.src, got, tt.want)
			}
		})
	}
}

// TestVisualAltQuality tests alt text grading.
func TestVisualAltQuality(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		body           string
		want           int
		wantConfidence float64
	}{
		{
			name:           "missing alt attribute",
			body:           `<img src="chart.png">`,
			want:           1,
			wantConfidence: 0.95,
		},
		{
			name:           "empty alt without a decorative marker",
			body:           `<img src="chart.png" alt="">`,
			want:           1,
			wantConfidence: 0.9,
		},
		{
			name: "empty alt marked presentational",
			body: `<img src="flourish.png" alt="" role="presentation">`,
			want: 0,
		},
		{
			name: "aria-hidden image without alt",
			body: `<img src="flourish.png" aria-hidden="true">`,
			want: 0,
		},
		{
			name:           "alt echoes the filename",
			body:           `<img src="photo.jpg" alt="photo.jpg">`,
			want:           1,
			wantConfidence: 0.6,
		},
		{
			name:           "alt echoes the filename stem",
			body:           `<img src="/img/photo.jpg" alt="photo">`,
			want:           1,
			wantConfidence: 0.6,
		},
		{
			name:           "alt names the element kind",
			body:           `<img src="chart.png" alt="image">`,
			want:           1,
			wantConfidence: 0.6,
		},
		{
			name: "company logo is a real description",
			body: `<img src="brand.svg" alt="Company logo">`,
			want: 0,
		},
		{
			name: "single-word logo is a real description",
			body: `<img src="brand.svg" alt="logo">`,
			want: 0,
		},
		{
			name: "descriptive alt",
			body: `<img src="chart.png" alt="Quarterly revenue chart">`,
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result := runSystem(t, NewVisualAnalyzer(config.NewConfig(), testLogger()), config.NewConfig(), page(tt.body))
			got := issuesOfType(result.Issues, model.IssueMissingAltText)
			if len(got) != tt.want {
				t.Fatalf("alt quality check found %d issues, expected %d", len(got), tt.want)
			}
			if tt.want == 1 && got[0].Confidence != tt.wantConfidence {
				t.Errorf("issue confidence = %v, expected %v", got[0].Confidence, tt.wantConfidence)
			}
		})
	}
}

// TestVisualOverlongAlt tests that walls of alt text are reported at
// low severity.
func TestVisualOverlongAlt(t *testing.T) {
	t.Parallel()

	alt := strings.TrimSpace(strings.Repeat("Detailed description of the quarterly revenue chart. ", 3))
	if len(alt) <= maxAltLength {
		t.Fatalf("test fixture alt is %d characters, expected more than %d", len(alt), maxAltLength)
	}

	result := runSystem(t, NewVisualAnalyzer(config.NewConfig(), testLogger()), config.NewConfig(),
		page(`<img src="chart.png" alt="`+alt+`">`))
	got := issuesOfType(result.Issues, model.IssueMissingAltText)
	if len(got) != 1 {
		t.Fatalf("alt quality check found %d issues, expected 1", len(got))
	}
	if got[0].Severity != model.SeverityLow {
		t.Errorf("issue severity = %v, expected %v", got[0].Severity, model.SeverityLow)
	}
	if got[0].Confidence != 0.6 {
		t.Errorf("issue confidence = %v, expected 0.6", got[0].Confidence)
	}
}

// TestVisualDataURLImage tests that inline images without usable EXIF
// are still graded and never crash the check.
func TestVisualDataURLImage(t *testing.T) {
	t.Parallel()

	result := runSystem(t, NewVisualAnalyzer(config.NewConfig(), testLogger()), config.NewConfig(),
		page(`<img src="data:image/jpeg;base64,AAAA">`))
	got := issuesOfType(result.Issues, model.IssueMissingAltText)
	if len(got) != 1 {
		t.Fatalf("alt quality check found %d issues, expected 1", len(got))
	}
	if got[0].Confidence != 0.95 {
		t.Errorf("issue confidence = %v, expected 0.95", got[0].Confidence)
	}
	if strings.Contains(got[0].SuggestedFix, "embedded image metadata") {
		t.Errorf("suggested fix mentions metadata that does not exist: %q", got[0].SuggestedFix)
	}
}

// TestDataURLImageDescription tests the EXIF extraction edge cases.
func TestDataURLImageDescription(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		dataURL string
	}{
		{name: "no comma separator", dataURL: "data:image/png;base64"},
		{name: "invalid base64", dataURL: "data:image/png;base64,!!!"},
		{name: "payload without exif", dataURL: "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("no exif here"))},
		{name: "empty payload", dataURL: "data:image/png;base64,"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := dataURLImageDescription(tt.dataURL); got != "" {
				t.Errorf("dataURLImageDescription() = %q, expected an empty string", got)
			}
		})
	}
}

// TestVisualMedia tests caption, transcript, and autoplay rules.
func TestVisualMedia(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want int
	}{
		{
			name: "video without captions",
			body: `<video src="talk.mp4" controls></video>`,
			want: 1,
		},
		{
			name: "video with a caption track",
			body: `<video src="talk.mp4" controls><track kind="captions" src="talk.vtt"></video>`,
			want: 0,
		},
		{
			name: "video with a subtitle track",
			body: `<video src="talk.mp4" controls><track kind="subtitles" src="talk.vtt"></video>`,
			want: 0,
		},
		{
			name: "video with only a chapters track",
			body: `<video src="talk.mp4" controls><track kind="chapters" src="talk.vtt"></video>`,
			want: 1,
		},
		{
			name: "uncaptioned autoplay video",
			body: `<video src="promo.mp4" autoplay></video>`,
			want: 2,
		},
		{
			name: "muted autoplay video with captions",
			body: `<video src="promo.mp4" autoplay muted><track kind="captions" src="promo.vtt"></video>`,
			want: 0,
		},
		{
			name: "audio without a transcript",
			body: `<audio src="episode.mp3" controls></audio>`,
			want: 1,
		},
		{
			name: "audio with a transcript on the page",
			body: `<audio src="episode.mp3" controls></audio><p>A full transcript is available below.</p>`,
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result := runSystem(t, NewVisualAnalyzer(config.NewConfig(), testLogger()), config.NewConfig(), page(tt.body))
			got := issuesOfType(result.Issues, model.IssueSemanticMarkup)
			if len(got) != tt.want {
				t.Fatalf("media check found %d issues, expected %d", len(got), tt.want)
			}
		})
	}
}

// TestVisualLayoutTables tests layout-table detection.
func TestVisualLayoutTables(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want int
	}{
		{
			name: "table without header semantics",
			body: `<table><tr><td>a</td><td>b</td></tr></table>`,
			want: 1,
		},
		{
			name: "table with header cells",
			body: `<table><tr><th>Name</th></tr><tr><td>a</td></tr></table>`,
			want: 0,
		},
		{
			name: "table with a caption",
			body: `<table><caption>Totals</caption><tr><td>a</td></tr></table>`,
			want: 0,
		},
		{
			name: "table with cell scope",
			body: `<table><tr><td scope="col">a</td></tr></table>`,
			want: 0,
		},
		{
			name: "presentational table",
			body: `<table role="presentation"><tr><td>a</td></tr></table>`,
			want: 0,
		},
		{
			name: "nested table judged on its own",
			body: `<table><tr><th>Outer</th><td><table><tr><td>inner</td></tr></table></td></tr></table>`,
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result := runSystem(t, NewVisualAnalyzer(config.NewConfig(), testLogger()), config.NewConfig(), page(tt.body))
			got := issuesOfType(result.Issues, model.IssueSemanticMarkup)
			if len(got) != tt.want {
				t.Fatalf("layout table check found %d issues, expected %d", len(got), tt.want)
			}
			if tt.want == 1 && got[0].Confidence != 0.8 {
				t.Errorf("issue confidence = %v, expected 0.8", got[0].Confidence)
			}
		})
	}
}

// TestVisualTextSize tests the readability floor.
func TestVisualTextSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want int
	}{
		{
			name: "text below the floor",
			body: `<p style="font-size:10px">Tiny legal print.</p>`,
			want: 1,
		},
		{
			name: "text at the floor",
			body: `<p style="font-size:12px">Fine print.</p>`,
			want: 0,
		},
		{
			name: "default size",
			body: `<p>Ordinary prose.</p>`,
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result := runSystem(t, NewVisualAnalyzer(config.NewConfig(), testLogger()), config.NewConfig(), page(tt.body))
			got := issuesOfType(result.Issues, model.IssueTextSize)
			if len(got) != tt.want {
				t.Fatalf("text size check found %d issues, expected %d", len(got), tt.want)
			}
			if tt.want == 1 && got[0].Confidence != 0.9 {
				t.Errorf("issue confidence = %v, expected 0.9", got[0].Confidence)
			}
		})
	}
}

// TestVisualCleanPage tests that well-presented media and images pass.
func TestVisualCleanPage(t *testing.T) {
	t.Parallel()

	body := `<img src="chart.png" alt="Quarterly revenue chart">` +
		`<video src="talk.mp4" controls><track kind="captions" src="talk.vtt"></video>` +
		`<table><tr><th>Quarter</th><th>Revenue</th></tr><tr><td>Q1</td><td>18k</td></tr></table>` +
		`<p>Ordinary prose.</p>`

	result := runSystem(t, NewVisualAnalyzer(config.NewConfig(), testLogger()), config.NewConfig(), page(body))
	if len(result.Issues) != 0 {
		t.Fatalf("visual system found %d issues on a clean page: %+v", len(result.Issues), result.Issues)
	}
	if result.Analyzer != "visual" {
		t.Errorf("result analyzer = %q, expected visual", result.Analyzer)
	}
}
