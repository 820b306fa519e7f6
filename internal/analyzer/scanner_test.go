package analyzer

import (
	"testing"

	"github.com/a11yscan/a11yscan/internal/config"
	"github.com/a11yscan/a11yscan/internal/model"
)

// TestScannerAltPresence tests detection of images that carry no alt
// attribute at all.
func TestScannerAltPresence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want int
	}{
		{
			name: "image without alt",
			body: `<img src="chart.png">`,
			want: 1,
		},
		{
			name: "empty alt is present",
			body: `<img src="divider.png" alt="">`,
			want: 0,
		},
		{
			name: "descriptive alt",
			body: `<img src="chart.png" alt="Quarterly revenue chart">`,
			want: 0,
		},
		{
			name: "decorative role without alt",
			body: `<img src="flourish.png" role="presentation">`,
			want: 0,
		},
		{
			name: "aria-hidden image without alt",
			body: `<img src="flourish.png" aria-hidden="true">`,
			want: 0,
		},
		{
			name: "image input without alt",
			body: `<input type="image" src="go.png">`,
			want: 1,
		},
		{
			name: "two bare images",
			body: `<img src="a.png"><img src="b.png">`,
			want: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result := runSystem(t, NewScanner(config.NewConfig(), testLogger()), config.NewConfig(), page(tt.body))
			got := issuesOfType(result.Issues, model.IssueMissingAltText)
			if len(got) != tt.want {
				t.Fatalf("alt presence found %d issues, expected %d", len(got), tt.want)
			}
			for _, issue := range got {
				if issue.Confidence != 0.95 {
					t.Errorf("issue confidence = %v, expected 0.95", issue.Confidence)
				}
			}
		})
	}
}

// TestScannerContrast tests contrast evaluation against conformance
// levels, text size, and the configured ratio override.
func TestScannerContrast(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		body         string
		wcagLevel    string
		minRatio     float64
		disabled     bool
		want         int
		wantSeverity model.Severity
	}{
		{
			name:         "gray text just below the AA threshold",
			body:         `<p style="color:#777777">Body text for contrast checking.</p>`,
			want:         1,
			wantSeverity: model.SeverityHigh,
		},
		{
			name:         "light gray text far below the threshold",
			body:         `<p style="color:#aaaaaa">Body text for contrast checking.</p>`,
			want:         1,
			wantSeverity: model.SeverityCritical,
		},
		{
			name: "gray text just above the AA threshold",
			body: `<p style="color:#767676">Body text for contrast checking.</p>`,
			want: 0,
		},
		{
			name:         "AA pass fails under AAA",
			body:         `<p style="color:#767676">Body text for contrast checking.</p>`,
			wcagLevel:    "AAA",
			want:         1,
			wantSeverity: model.SeverityCritical,
		},
		{
			name: "large heading passes the relaxed threshold",
			body: `<h2 style="color:#888888">Second heading</h2>`,
			want: 0,
		},
		{
			name:         "body text fails where large text passes",
			body:         `<p style="color:#888888">Body text for contrast checking.</p>`,
			want:         1,
			wantSeverity: model.SeverityHigh,
		},
		{
			name:         "configured minimum overrides the level",
			body:         `<p style="color:#767676">Body text for contrast checking.</p>`,
			minRatio:     5.0,
			want:         1,
			wantSeverity: model.SeverityHigh,
		},
		{
			name:     "check disabled",
			body:     `<p style="color:#aaaaaa">Body text for contrast checking.</p>`,
			disabled: true,
			want:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := config.NewConfig()
			if tt.wcagLevel != "" {
				cfg.WCAGLevel = tt.wcagLevel
			}
			cfg.MinContrastRatio = tt.minRatio
			cfg.EnableColorContrastCheck = !tt.disabled

			result := runSystem(t, NewScanner(cfg, testLogger()), cfg, page(tt.body))
			got := issuesOfType(result.Issues, model.IssueInsufficientContrast)
			if len(got) != tt.want {
				t.Fatalf("contrast check found %d issues, expected %d", len(got), tt.want)
			}
			if tt.want == 1 && got[0].Severity != tt.wantSeverity {
				t.Errorf("issue severity = %v, expected %v", got[0].Severity, tt.wantSeverity)
			}
		})
	}
}

// TestScannerKeyboardAccess tests detection of pointer-only controls
// and native controls removed from the tab order.
func TestScannerKeyboardAccess(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		body           string
		disabled       bool
		want           int
		wantConfidence float64
	}{
		{
			name:           "click handler on an unfocusable div",
			body:           `<div onclick="go()">Item</div>`,
			want:           1,
			wantConfidence: 0.9,
		},
		{
			name: "click handler with tabindex zero",
			body: `<div onclick="go()" tabindex="0">Item</div>`,
			want: 0,
		},
		{
			name: "click handler with a key handler",
			body: `<div onclick="go()" onkeydown="go()">Item</div>`,
			want: 0,
		},
		{
			name: "roving tabindex is not flagged",
			body: `<div onclick="go()" tabindex="-1">Item</div>`,
			want: 0,
		},
		{
			name:           "link removed from the tab order",
			body:           `<a href="/next" tabindex="-1">Next</a>`,
			want:           1,
			wantConfidence: 0.8,
		},
		{
			name:           "button removed from the tab order",
			body:           `<button tabindex="-1">Save</button>`,
			want:           1,
			wantConfidence: 0.8,
		},
		{
			name: "plain button",
			body: `<button>Save</button>`,
			want: 0,
		},
		{
			name:     "check disabled",
			body:     `<div onclick="go()">Item</div>`,
			disabled: true,
			want:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := config.NewConfig()
			cfg.EnableKeyboardAccessibilityCheck = !tt.disabled

			result := runSystem(t, NewScanner(cfg, testLogger()), cfg, page(tt.body))
			got := issuesOfType(result.Issues, model.IssueKeyboardInaccessible)
			if len(got) != tt.want {
				t.Fatalf("keyboard check found %d issues, expected %d", len(got), tt.want)
			}
			if tt.want == 1 && got[0].Confidence != tt.wantConfidence {
				t.Errorf("issue confidence = %v, expected %v", got[0].Confidence, tt.wantConfidence)
			}
		})
	}
}

// TestScannerFocusOrder tests detection of author-imposed focus order
// and focus stealing.
func TestScannerFocusOrder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want int
	}{
		{
			name: "positive tabindex",
			body: `<a href="/about" tabindex="3">About</a>`,
			want: 1,
		},
		{
			name: "tabindex zero",
			body: `<a href="/about" tabindex="0">About</a>`,
			want: 0,
		},
		{
			name: "autofocus",
			body: `<input type="text" aria-label="Name" autofocus>`,
			want: 1,
		},
		{
			name: "positive tabindex and autofocus on one element",
			body: `<a href="/about" tabindex="2" autofocus>About</a>`,
			want: 2,
		},
		{
			name: "natural order",
			body: `<a href="/about">About</a><input type="text" aria-label="Name">`,
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result := runSystem(t, NewScanner(config.NewConfig(), testLogger()), config.NewConfig(), page(tt.body))
			got := issuesOfType(result.Issues, model.IssueFocusManagement)
			if len(got) != tt.want {
				t.Fatalf("focus order check found %d issues, expected %d", len(got), tt.want)
			}
		})
	}
}

// TestScannerARIA tests reference resolution, role vocabulary, and
// accessible-name requirements.
func TestScannerARIA(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		body           string
		disabled       bool
		want           int
		wantConfidence float64
	}{
		{
			name:           "aria-labelledby referencing a missing id",
			body:           `<div aria-labelledby="missing">Panel</div>`,
			want:           1,
			wantConfidence: 0.95,
		},
		{
			name: "aria-labelledby referencing an existing id",
			body: `<div aria-labelledby="caption">Panel</div><p id="caption">Settings</p>`,
			want: 0,
		},
		{
			name:           "aria-describedby referencing a missing id",
			body:           `<input type="text" aria-label="Age" aria-describedby="nope">`,
			want:           1,
			wantConfidence: 0.95,
		},
		{
			name: "one of several references resolves",
			body: `<div aria-labelledby="missing caption">Panel</div><p id="caption">Settings</p>`,
			want: 0,
		},
		{
			name:           "unknown role",
			body:           `<div role="bogusrole">Panel</div>`,
			want:           1,
			wantConfidence: 0.95,
		},
		{
			name:           "name-required role without a name",
			body:           `<div role="button" tabindex="0"></div>`,
			want:           1,
			wantConfidence: 0.9,
		},
		{
			name: "name-required role with aria-label",
			body: `<div role="button" tabindex="0" aria-label="Close"></div>`,
			want: 0,
		},
		{
			name: "name-required role named by content",
			body: `<span role="button" tabindex="0">Save</span>`,
			want: 0,
		},
		{
			name: "presentation role",
			body: `<img src="flourish.png" alt="" role="presentation">`,
			want: 0,
		},
		{
			name: "empty role falls back to the implicit role",
			body: `<nav role="">Links</nav>`,
			want: 0,
		},
		{
			name: "only the first role token counts",
			body: `<div role="BUTTON navigation" aria-label="Menu" tabindex="0"></div>`,
			want: 0,
		},
		{
			name:     "check disabled",
			body:     `<div role="bogusrole">Panel</div>`,
			disabled: true,
			want:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := config.NewConfig()
			cfg.EnableARIAValidation = !tt.disabled

			result := runSystem(t, NewScanner(cfg, testLogger()), cfg, page(tt.body))
			got := issuesOfType(result.Issues, model.IssueInvalidARIA)
			if len(got) != tt.want {
				t.Fatalf("ARIA check found %d issues, expected %d", len(got), tt.want)
			}
			if tt.want == 1 && got[0].Confidence != tt.wantConfidence {
				t.Errorf("issue confidence = %v, expected %v", got[0].Confidence, tt.wantConfidence)
			}
		})
	}
}

// TestScannerHeadings tests the delegated heading hierarchy rules.
func TestScannerHeadings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		headings string
		want     int
	}{
		{
			name:     "sequential levels",
			headings: `<h1>A</h1><h2>B</h2><h3>C</h3>`,
			want:     0,
		},
		{
			name:     "skipped level",
			headings: `<h1>A</h1><h2>B</h2><h4>C</h4>`,
			want:     1,
		},
		{
			name:     "first heading is not h1",
			headings: `<h2>A</h2><h3>B</h3>`,
			want:     1,
		},
		{
			name:     "no headings",
			headings: ``,
			want:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := `<html lang="en"><head><title>Test</title></head><body><main>` +
				tt.headings + `<p>Prose.</p></main></body></html>`
			result := runSystem(t, NewScanner(config.NewConfig(), testLogger()), config.NewConfig(), src)
			got := issuesOfType(result.Issues, model.IssueHeadingStructure)
			if len(got) != tt.want {
				t.Fatalf("heading check found %d issues, expected %d", len(got), tt.want)
			}
		})
	}
}

// TestScannerColorOnly tests the color-as-sole-distinction heuristics.
func TestScannerColorOnly(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		body           string
		want           int
		wantConfidence float64
	}{
		{
			name:           "link distinguished by color alone",
			body:           `<p style="color:#000000">Text <a href="/x" style="color:#0000ee;text-decoration:none">anchor</a> around.</p>`,
			want:           1,
			wantConfidence: 0.6,
		},
		{
			name: "default links are underlined",
			body: `<p>Text <a href="/x">anchor</a> around.</p>`,
			want: 0,
		},
		{
			name: "link matches the surrounding color",
			body: `<p style="color:#202020">Text <a href="/x" style="color:#202020;text-decoration:none">anchor</a> around.</p>`,
			want: 0,
		},
		{
			name:           "instruction points at a color",
			body:           `<p>Required fields are marked in red. Click the green button to continue.</p>`,
			want:           1,
			wantConfidence: 0.4,
		},
		{
			name: "color word without an instruction",
			body: `<p>The red panda is a mammal.</p>`,
			want: 0,
		},
		{
			name: "instruction without a color word",
			body: `<p>Click the submit button to continue.</p>`,
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result := runSystem(t, NewScanner(config.NewConfig(), testLogger()), config.NewConfig(), page(tt.body))
			got := issuesOfType(result.Issues, model.IssueColorOnlyInformation)
			if len(got) != tt.want {
				t.Fatalf("color-only check found %d issues, expected %d", len(got), tt.want)
			}
			if tt.want == 1 && got[0].Confidence != tt.wantConfidence {
				t.Errorf("issue confidence = %v, expected %v", got[0].Confidence, tt.wantConfidence)
			}
		})
	}
}

// TestScannerFormLabels tests the delegated control labeling rules.
func TestScannerFormLabels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		body     string
		disabled bool
		want     int
	}{
		{
			name: "unlabeled text input",
			body: `<input type="text" id="name">`,
			want: 1,
		},
		{
			name: "label association by for",
			body: `<label for="name">Name</label><input type="text" id="name">`,
			want: 0,
		},
		{
			name: "wrapping label",
			body: `<label>Name <input type="text"></label>`,
			want: 0,
		},
		{
			name: "aria-label",
			body: `<input type="text" aria-label="Name">`,
			want: 0,
		},
		{
			name:     "check disabled",
			body:     `<input type="text" id="name">`,
			disabled: true,
			want:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := config.NewConfig()
			cfg.EnableFormValidation = !tt.disabled

			result := runSystem(t, NewScanner(cfg, testLogger()), cfg, page(tt.body))
			got := issuesOfType(result.Issues, model.IssueMissingLabels)
			if len(got) != tt.want {
				t.Fatalf("form label check found %d issues, expected %d", len(got), tt.want)
			}
		})
	}
}

// TestScannerCleanPage tests that a well-built page produces no issues
// and a perfect sub-score.
func TestScannerCleanPage(t *testing.T) {
	t.Parallel()

	body := `<p>Introductory prose with an <a href="/docs">API reference</a> link.</p>` +
		`<img src="chart.png" alt="Quarterly revenue chart">` +
		`<label for="q">Search</label><input type="text" id="q">`

	result := runSystem(t, NewScanner(config.NewConfig(), testLogger()), config.NewConfig(), page(body))
	if len(result.Issues) != 0 {
		t.Fatalf("scanner found %d issues on a clean page: %+v", len(result.Issues), result.Issues)
	}
	if result.Score != 100 {
		t.Errorf("scanner score = %v, expected 100", result.Score)
	}
	if result.Analyzer != "scanner" {
		t.Errorf("result analyzer = %q, expected scanner", result.Analyzer)
	}
}
