package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/a11yscan/a11yscan/internal/model"
)

// MarkdownWriter outputs results in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the result in Markdown format.
func (w *MarkdownWriter) Write(result *model.UnifiedAnalysisResult) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, result)
	w.writeSummary(md, result)
	w.writeIssues(md, result)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with scan information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, result *model.UnifiedAnalysisResult) {
	md.H1("Accessibility Report")
	md.PlainText("")

	title := result.Title
	if title == "" {
		title = "-"
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Page", "`" + result.URL + "`"},
			{"Title", title},
			{"Scan Date", result.Timestamp.Format("2006-01-02 15:04:05 MST")},
			{"Duration", result.Duration.Round(time.Millisecond).String()},
			{"Elements Analyzed", strconv.Itoa(result.Stats.ProcessedElements)},
			{"Score", fmt.Sprintf("**%.0f / 100** (%s)", result.OverallScore, GradeFor(result.OverallScore))},
		},
	})
	md.PlainText("")
}

// writeSummary writes the severity summary section.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, result *model.UnifiedAnalysisResult) {
	md.H2("Severity Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Severity", "Count"},
		Rows: [][]string{
			{"🔴 Critical", strconv.Itoa(result.Counts.Critical)},
			{"🟠 High", strconv.Itoa(result.Counts.High)},
			{"🟡 Medium", strconv.Itoa(result.Counts.Medium)},
			{"🔵 Low", strconv.Itoa(result.Counts.Low)},
			{"**Total**", "**" + strconv.Itoa(result.Counts.Total) + "**"},
		},
	})
	md.PlainText("")

	if result.HasIssues() {
		w.writePieChart(md, result)
	}

	w.writeAlert(md, result)
}

// writePieChart writes a mermaid pie chart for severity distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, result *model.UnifiedAnalysisResult) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Issue Severity Distribution"),
		piechart.WithShowData(true),
	)

	if result.Counts.Critical > 0 {
		chart.LabelAndIntValue("Critical", uint64(result.Counts.Critical))
	}
	if result.Counts.High > 0 {
		chart.LabelAndIntValue("High", uint64(result.Counts.High))
	}
	if result.Counts.Medium > 0 {
		chart.LabelAndIntValue("Medium", uint64(result.Counts.Medium))
	}
	if result.Counts.Low > 0 {
		chart.LabelAndIntValue("Low", uint64(result.Counts.Low))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an appropriate alert based on severity counts.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, result *model.UnifiedAnalysisResult) {
	switch {
	case result.Counts.Critical > 0:
		md.Cautionf(
			"Critical accessibility barriers detected! %d critical issue(s) block assistive-technology users entirely.",
			result.Counts.Critical,
		)
	case result.Counts.High > 0:
		md.Warningf(
			"High severity issues detected. %d issue(s) break common assistive-technology flows.",
			result.Counts.High,
		)
	case result.Counts.Medium > 0:
		md.Importantf(
			"Medium severity issues found. %d issue(s) degrade the experience for some users.",
			result.Counts.Medium,
		)
	case result.Counts.Total > 0:
		md.Note("Only low severity issues detected.")
	default:
		md.Tip("No accessibility issues detected.")
	}
	md.PlainText("")
}

// writeIssues writes the deduplicated issues grouped by category.
func (w *MarkdownWriter) writeIssues(md *markdown.Markdown, result *model.UnifiedAnalysisResult) {
	md.H2("Issues")
	md.PlainText("")

	if !result.HasIssues() {
		md.PlainText("No accessibility issues detected.")
		md.PlainText("")
		return
	}

	for _, category := range sortedCategories(result.IssuesByCategory) {
		issues := result.IssuesByCategory[category]

		md.PlainText("### " + categoryTitle(category))
		md.PlainText("")
		w.writeIssuesTable(md, issues)
	}
}

// writeIssuesTable writes a table of issues with details.
func (w *MarkdownWriter) writeIssuesTable(md *markdown.Markdown, issues []model.AccessibilityIssue) {
	rows := make([][]string, len(issues))
	for i, issue := range issues {
		rows[i] = []string{
			severityEmoji(issue.Severity) + " " + issue.Severity.String(),
			string(issue.Type),
			"`" + truncateString(issue.Element.XPath, 40) + "`",
			strings.Join(issue.WCAGCriteria, ", "),
			truncateString(issue.Description, 60),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Severity", "Type", "Element", "WCAG", "Description"},
		Rows:   rows,
	})
	md.PlainText("")

	// Suggested fixes as collapsible details to keep the table scannable
	for _, issue := range issues {
		if issue.SuggestedFix != "" {
			md.Details(
				fmt.Sprintf("Fix for %s at %s", issue.Type, truncateString(issue.Element.XPath, 40)),
				issue.SuggestedFix,
			)
		}
	}
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [a11yscan](https://github.com/a11yscan/a11yscan)*")
}

// severityEmoji returns the colored circle used for a severity level.
func severityEmoji(s model.Severity) string {
	switch s {
	case model.SeverityCritical:
		return "🔴"
	case model.SeverityHigh:
		return "🟠"
	case model.SeverityMedium:
		return "🟡"
	default:
		return "🔵"
	}
}

// categoryTitle renders a category name as a section heading.
func categoryTitle(c model.Category) string {
	if c == model.CategoryARIA {
		return "ARIA"
	}
	return cases.Title(language.English).String(string(c))
}

// sortedCategories returns the categories present in the grouping in a
// stable alphabetical order, so reports diff cleanly between runs.
func sortedCategories(grouped map[model.Category][]model.AccessibilityIssue) []model.Category {
	categories := make([]model.Category, 0, len(grouped))
	for c := range grouped {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i] < categories[j] })
	return categories
}
