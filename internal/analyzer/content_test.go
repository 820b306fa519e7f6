package analyzer

import (
	"strings"
	"testing"

	"github.com/a11yscan/a11yscan/internal/config"
	"github.com/a11yscan/a11yscan/internal/model"
)

// TestContentLinkPurpose tests detection of nameless and generic link
// texts.
func TestContentLinkPurpose(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		body           string
		want           int
		wantConfidence float64
	}{
		{
			name:           "click here",
			body:           `<a href="/pricing">Click here</a>`,
			want:           1,
			wantConfidence: 0.85,
		},
		{
			name:           "uppercase generic text",
			body:           `<a href="/pricing">MORE</a>`,
			want:           1,
			wantConfidence: 0.85,
		},
		{
			name:           "generic text with punctuation",
			body:           `<a href="/pricing">Read more!</a>`,
			want:           1,
			wantConfidence: 0.85,
		},
		{
			name: "descriptive text containing a generic word",
			body: `<a href="/pricing">Pricing details for teams</a>`,
			want: 0,
		},
		{
			name:           "image link with no name",
			body:           `<a href="/pricing"><img src="go.png" alt=""></a>`,
			want:           1,
			wantConfidence: 0.95,
		},
		{
			name: "generic text overridden by aria-label",
			body: `<a href="/pricing" aria-label="Pricing plans">Read more</a>`,
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result := runSystem(t, NewContentAnalyzer(config.NewConfig(), testLogger()), config.NewConfig(), page(tt.body))
			got := issuesOfType(result.Issues, model.IssueLinkPurpose)
			if len(got) != tt.want {
				t.Fatalf("link purpose check found %d issues, expected %d", len(got), tt.want)
			}
			if tt.want == 1 && got[0].Confidence != tt.wantConfidence {
				t.Errorf("issue confidence = %v, expected %v", got[0].Confidence, tt.wantConfidence)
			}
		})
	}
}

// TestContentLanguage tests lang attribute presence and BCP 47
// validity.
func TestContentLanguage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		src        string
		want       int
		wantDetail string
	}{
		{
			name:       "missing lang attribute",
			src:        `<html><head><title>Test</title></head><body><main><h1>Title</h1><p>Prose.</p></main></body></html>`,
			want:       1,
			wantDetail: "declares no lang attribute",
		},
		{
			name:       "invalid language tag",
			src:        `<html lang="12345"><head><title>Test</title></head><body><main><h1>Title</h1><p>Prose.</p></main></body></html>`,
			want:       1,
			wantDetail: "not a valid BCP 47",
		},
		{
			name: "valid language tag",
			src:  page(`<p>Prose.</p>`),
			want: 0,
		},
		{
			name: "no text needs no declaration",
			src:  emptyPage,
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result := runSystem(t, NewContentAnalyzer(config.NewConfig(), testLogger()), config.NewConfig(), tt.src)
			got := issuesOfType(result.Issues, model.IssueSemanticMarkup)
			if len(got) != tt.want {
				t.Fatalf("language check found %d issues, expected %d", len(got), tt.want)
			}
			if tt.want == 1 && !strings.Contains(got[0].Description, tt.wantDetail) {
				t.Errorf("issue description = %q, expected it to mention %q", got[0].Description, tt.wantDetail)
			}
		})
	}
}

// TestContentLanguageDetection tests the declared-versus-detected
// language comparison. The detector is shared across cases because
// building it loads language models.
func TestContentLanguageDetection(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	cfg.EnableLanguageDetection = true
	analyzer := NewContentAnalyzer(cfg, testLogger())

	german := `<h1>Überschrift</h1><p>Dies ist ein längerer deutscher Beispieltext für die Spracherkennung.` +
		` Er enthält genügend Wörter, damit die Erkennung zuverlässig funktioniert.</p>`

	tests := []struct {
		name string
		lang string
		want int
	}{
		{name: "declared language contradicts the text", lang: "en", want: 1},
		{name: "declared language matches the text", lang: "de", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := `<html lang="` + tt.lang + `"><head><title>Test</title></head><body><main>` +
				german + `</main></body></html>`
			result := runSystem(t, analyzer, cfg, src)
			got := issuesOfType(result.Issues, model.IssueSemanticMarkup)
			if len(got) != tt.want {
				t.Fatalf("language detection found %d issues, expected %d", len(got), tt.want)
			}
			if tt.want == 1 {
				if got[0].Confidence != 0.6 {
					t.Errorf("issue confidence = %v, expected 0.6", got[0].Confidence)
				}
				if !strings.Contains(got[0].Description, `"de"`) {
					t.Errorf("issue description = %q, expected it to name the detected language", got[0].Description)
				}
			}
		})
	}
}

// TestContentDuplicateIDs tests detection of ids shared by several
// elements.
func TestContentDuplicateIDs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want int
	}{
		{
			name: "duplicated id",
			body: `<p id="note">One</p><span id="note">Two</span>`,
			want: 1,
		},
		{
			name: "unique ids",
			body: `<p id="first">One</p><span id="second">Two</span>`,
			want: 0,
		},
		{
			name: "two duplicated ids",
			body: `<p id="a">1</p><span id="a">2</span><p id="b">3</p><span id="b">4</span>`,
			want: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result := runSystem(t, NewContentAnalyzer(config.NewConfig(), testLogger()), config.NewConfig(), page(tt.body))
			got := issuesOfType(result.Issues, model.IssueSemanticMarkup)
			if len(got) != tt.want {
				t.Fatalf("duplicate id check found %d issues, expected %d", len(got), tt.want)
			}
		})
	}
}

// TestContentSkipLink tests the bypass-blocks rule.
func TestContentSkipLink(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want int
	}{
		{
			name: "navigation without a skip link",
			body: `<nav><a href="/home">Home page</a><a href="/docs">Documentation</a></nav><p>Body text.</p>`,
			want: 1,
		},
		{
			name: "navigation with a skip link",
			body: `<a href="#main">Skip to content</a><nav><a href="/home">Home page</a></nav><p>Body text.</p>`,
			want: 0,
		},
		{
			name: "no navigation",
			body: `<p>Body text.</p>`,
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result := runSystem(t, NewContentAnalyzer(config.NewConfig(), testLogger()), config.NewConfig(), page(tt.body))
			got := issuesOfType(result.Issues, model.IssueFocusManagement)
			if len(got) != tt.want {
				t.Fatalf("skip link check found %d issues, expected %d", len(got), tt.want)
			}
			if tt.want == 1 && got[0].Confidence != 0.6 {
				t.Errorf("issue confidence = %v, expected 0.6", got[0].Confidence)
			}
		})
	}
}

// TestContentValidationHints tests detection of constrained controls
// with no described requirements.
func TestContentValidationHints(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		body     string
		disabled bool
		want     int
	}{
		{
			name: "required field without a description",
			body: `<input type="text" aria-label="Code" required>`,
			want: 1,
		},
		{
			name: "required field with aria-describedby",
			body: `<input type="text" aria-label="Code" required aria-describedby="hint"><p id="hint">Six digits.</p>`,
			want: 0,
		},
		{
			name: "pattern-restricted field without a description",
			body: `<input type="text" aria-label="Code" pattern="[0-9]{6}">`,
			want: 1,
		},
		{
			name: "unconstrained field",
			body: `<input type="text" aria-label="Code">`,
			want: 0,
		},
		{
			name:     "check disabled",
			body:     `<input type="text" aria-label="Code" required>`,
			disabled: true,
			want:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := config.NewConfig()
			cfg.EnableFormValidation = !tt.disabled

			result := runSystem(t, NewContentAnalyzer(cfg, testLogger()), cfg, page(tt.body))
			got := issuesOfType(result.Issues, model.IssueFormValidation)
			if len(got) != tt.want {
				t.Fatalf("validation hint check found %d issues, expected %d", len(got), tt.want)
			}
		})
	}
}

// TestContentLandmarks tests the content gate on landmark validation.
func TestContentLandmarks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want int
	}{
		{
			name: "text without a main region",
			src:  `<html lang="en"><head><title>Test</title></head><body><p>Text without a main region.</p></body></html>`,
			want: 1,
		},
		{
			name: "empty page needs no landmarks",
			src:  emptyPage,
			want: 0,
		},
		{
			name: "main region present",
			src:  page(`<p>Prose.</p>`),
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result := runSystem(t, NewContentAnalyzer(config.NewConfig(), testLogger()), config.NewConfig(), tt.src)
			got := issuesOfType(result.Issues, model.IssueSemanticMarkup)
			if len(got) != tt.want {
				t.Fatalf("landmark check found %d issues, expected %d", len(got), tt.want)
			}
		})
	}
}

// TestContentHeadingOverlap tests that the content system reports
// heading violations independently of the scanner.
func TestContentHeadingOverlap(t *testing.T) {
	t.Parallel()

	result := runSystem(t, NewContentAnalyzer(config.NewConfig(), testLogger()), config.NewConfig(), page(`<h3>Sub</h3>`))
	got := issuesOfType(result.Issues, model.IssueHeadingStructure)
	if len(got) != 1 {
		t.Fatalf("heading check found %d issues, expected 1 for a skipped level", len(got))
	}
}

// TestContentCleanPage tests that a well-built page produces no issues.
func TestContentCleanPage(t *testing.T) {
	t.Parallel()

	body := `<a href="#main">Skip to content</a>` +
		`<nav><a href="/home">Home page</a></nav>` +
		`<p>Introductory prose.</p>` +
		`<label for="q">Search</label><input type="text" id="q">`

	result := runSystem(t, NewContentAnalyzer(config.NewConfig(), testLogger()), config.NewConfig(), page(body))
	if len(result.Issues) != 0 {
		t.Fatalf("content system found %d issues on a clean page: %+v", len(result.Issues), result.Issues)
	}
	if result.Score != 100 {
		t.Errorf("content score = %v, expected 100", result.Score)
	}
	if result.Analyzer != "content" {
		t.Errorf("result analyzer = %q, expected content", result.Analyzer)
	}
}
