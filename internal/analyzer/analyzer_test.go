package analyzer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/a11yscan/a11yscan/internal/config"
	"github.com/a11yscan/a11yscan/internal/dom"
	"github.com/a11yscan/a11yscan/internal/model"
)

// testLogger returns a logger that swallows output so test logs stay
// readable.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mustParse parses an HTML document or fails the test.
func mustParse(t *testing.T, src string) *dom.Document {
	t.Helper()
	doc, err := dom.ParseString(src)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	return doc
}

// extractData builds the shared analysis bundle for a source snippet
// the way the coordinator does.
func extractData(t *testing.T, cfg *config.Config, src string) *AnalysisData {
	t.Helper()
	a := NewDOMAnalyzer(cfg, testLogger(), nil)
	return a.AnalyzePage(context.Background(), mustParse(t, src), "https://example.com/")
}

// runSystem runs one system over a source snippet and returns its
// result.
func runSystem(t *testing.T, sys System, cfg *config.Config, src string) *model.AnalyzerResult {
	t.Helper()
	result, err := sys.Analyze(context.Background(), extractData(t, cfg, src))
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if result == nil {
		t.Fatal("Analyze() returned a nil result")
	}
	return result
}

// issuesOfType filters issues by type.
func issuesOfType(issues []model.AccessibilityIssue, want model.IssueType) []model.AccessibilityIssue {
	matched := make([]model.AccessibilityIssue, 0)
	for _, issue := range issues {
		if issue.Type == want {
			matched = append(matched, issue)
		}
	}
	return matched
}

// page wraps body content in a shell that passes every page-level
// rule, so tests observe only the issues they inject.
func page(body string) string {
	return `<html lang="en"><head><title>Test</title></head><body><main><h1>Title</h1>` +
		body + `</main></body></html>`
}

// emptyPage is a well-formed document with no perceivable content.
const emptyPage = `<html><head><title>Empty</title></head><body></body></html>`

// TestHasContent tests the perceivable-content gate.
func TestHasContent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want bool
	}{
		{name: "empty body", src: emptyPage, want: false},
		{name: "text only", src: `<html><body><p>Hello</p></body></html>`, want: true},
		{name: "image only", src: `<html><body><img src="x.png" alt="x"></body></html>`, want: true},
		{name: "form only", src: `<html><body><form></form></body></html>`, want: true},
		{name: "heading only", src: `<html><body><h1>H</h1></body></html>`, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			data := extractData(t, config.NewConfig(), tt.src)
			if got := data.HasContent(); got != tt.want {
				t.Errorf("HasContent() = %v, expected %v", got, tt.want)
			}
		})
	}
}

// TestHasContentNilData tests the nil guards.
func TestHasContentNilData(t *testing.T) {
	t.Parallel()

	var data *AnalysisData
	if data.HasContent() {
		t.Error("HasContent() on nil data = true, expected false")
	}
	if (&AnalysisData{}).HasContent() {
		t.Error("HasContent() on empty data = true, expected false")
	}
}

// TestRunChecksPanicIsolation tests that a panicking check is skipped
// while the remaining checks still run.
func TestRunChecksPanicIsolation(t *testing.T) {
	t.Parallel()

	data := extractData(t, config.NewConfig(), page(""))
	checks := []check{
		{name: "boom", run: func(*AnalysisData) []model.AccessibilityIssue {
			panic("malformed input")
		}},
		{name: "ok", run: func(*AnalysisData) []model.AccessibilityIssue {
			return []model.AccessibilityIssue{
				model.NewIssue(model.IssueTextSize, model.ElementInfo{Tag: "p", XPath: "/html/body/p[1]"}, "tiny", 0.9),
			}
		}},
	}

	result, err := runChecks(context.Background(), testLogger(), "scanner", data, checks)
	if err != nil {
		t.Fatalf("runChecks() error = %v", err)
	}
	if len(result.Issues) != 1 {
		t.Fatalf("runChecks() returned %d issues, expected only the healthy check's issue", len(result.Issues))
	}
	if result.Analyzer != "scanner" {
		t.Errorf("result analyzer = %q, expected scanner", result.Analyzer)
	}
}

// TestRunChecksCancellation tests that cancellation is the one error
// runChecks propagates.
func TestRunChecksCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	data := extractData(t, config.NewConfig(), page(""))
	checks := []check{
		{name: "never", run: func(*AnalysisData) []model.AccessibilityIssue {
			t.Error("check ran after cancellation")
			return nil
		}},
	}

	_, err := runChecks(ctx, testLogger(), "scanner", data, checks)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("runChecks() error = %v, expected context.Canceled", err)
	}
}

// TestRunChecksNilData tests that missing data produces a clean empty
// result instead of an error.
func TestRunChecksNilData(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data *AnalysisData
	}{
		{name: "nil data", data: nil},
		{name: "nil context", data: &AnalysisData{}},
		{name: "nil document", data: &AnalysisData{Context: &dom.PageContext{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result, err := runChecks(context.Background(), testLogger(), "visual", tt.data, []check{
				{name: "never", run: func(*AnalysisData) []model.AccessibilityIssue {
					t.Error("check ran without a document")
					return nil
				}},
			})
			if err != nil {
				t.Fatalf("runChecks() error = %v", err)
			}
			if result.Score != 100 || len(result.Issues) != 0 {
				t.Errorf("result = score %v with %d issues, expected a clean empty result", result.Score, len(result.Issues))
			}
			if result.Analyzer != "visual" {
				t.Errorf("result analyzer = %q, expected visual", result.Analyzer)
			}
		})
	}
}

// TestDOMAnalyzerEmptyDocument tests extraction of a content-free page.
func TestDOMAnalyzerEmptyDocument(t *testing.T) {
	t.Parallel()

	data := extractData(t, config.NewConfig(), emptyPage)
	if data == nil || data.Context == nil {
		t.Fatal("AnalyzePage() returned nil data")
	}
	if data.Context.URL != "https://example.com/" {
		t.Errorf("context URL = %q, expected the scan URL", data.Context.URL)
	}
	if data.Page.Tag != "body" {
		t.Errorf("page element tag = %q, expected body", data.Page.Tag)
	}
	if data.HasContent() {
		t.Error("HasContent() = true for an empty document")
	}
}
