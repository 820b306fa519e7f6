package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/a11yscan/a11yscan/internal/model"
)

// Terminal color palette.
var (
	accent  = lipgloss.Color("#7C6FCB") // soft violet
	fg      = lipgloss.Color("#E8E6E3")
	dim     = lipgloss.Color("#6B7280")
	faint   = lipgloss.Color("#3F3F46")
	success = lipgloss.Color("#22C55E")
	danger  = lipgloss.Color("#EF4444")
	warning = lipgloss.Color("#F59E0B")
	info    = lipgloss.Color("#60A5FA")
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			Align(lipgloss.Center)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 4).
			Align(lipgloss.Center).
			Width(68)

	gradeColors = map[string]lipgloss.Color{
		"A+": success,
		"A":  success,
		"B":  lipgloss.Color("#A3E635"), // lime
		"C":  warning,
		"D":  lipgloss.Color("#FB923C"), // orange
		"F":  danger,
	}

	dimStyle      = lipgloss.NewStyle().Foreground(dim)
	faintStyle    = lipgloss.NewStyle().Foreground(faint)
	passStyle     = lipgloss.NewStyle().Foreground(success)
	criticalStyle = lipgloss.NewStyle().Foreground(danger).Bold(true)
	highStyle     = lipgloss.NewStyle().Foreground(warning).Bold(true)
	mediumStyle   = lipgloss.NewStyle().Foreground(warning)
	lowStyle      = lipgloss.NewStyle().Foreground(info)
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(fg)
	xpathStyle    = lipgloss.NewStyle().Foreground(dim)
	separatorLine = faintStyle.Render(strings.Repeat("─", 64))
)

// TerminalWriter outputs styled human-readable reports for terminal
// display: a summary box with the score and grade, severity counts, and
// the issue list ordered by severity.
//
// Design decision: We use lipgloss rather than raw ANSI escapes because
// it degrades gracefully (color profiles are detected per terminal) and
// keeps the layout code declarative.
type TerminalWriter struct {
	baseWriter

	// verbose adds suggested fixes and WCAG criteria to each issue line.
	verbose bool
}

// TerminalWriterOption configures a TerminalWriter.
type TerminalWriterOption func(*TerminalWriter)

// WithVerboseIssues adds suggested fixes and WCAG criteria to the output.
func WithVerboseIssues(verbose bool) TerminalWriterOption {
	return func(w *TerminalWriter) {
		w.verbose = verbose
	}
}

// NewTerminalWriter creates a TerminalWriter that outputs to the given writer.
func NewTerminalWriter(output io.Writer, opts ...TerminalWriterOption) *TerminalWriter {
	w := &TerminalWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the result as a styled terminal report.
func (w *TerminalWriter) Write(result *model.UnifiedAnalysisResult) (int, error) {
	var b strings.Builder

	w.writeScoreBox(&b, result)
	w.writeCounts(&b, result)
	w.writeIssues(&b, result)
	w.writeFooter(&b, result)

	return w.output.Write([]byte(b.String()))
}

// writeScoreBox writes the boxed header with the score and grade.
func (w *TerminalWriter) writeScoreBox(b *strings.Builder, result *model.UnifiedAnalysisResult) {
	grade := GradeFor(result.OverallScore)

	title := headerStyle.Render("a11yscan")
	subtitle := dimStyle.Render(truncateString(result.URL, 60))
	scoreStyled := lipgloss.NewStyle().
		Bold(true).
		Foreground(gradeColor(grade)).
		Render(fmt.Sprintf("%.0f / 100", result.OverallScore))
	gradeStyled := lipgloss.NewStyle().
		Bold(true).
		Foreground(gradeColor(grade)).
		Render(grade)

	b.WriteString("\n")
	b.WriteString(boxStyle.Render(title + "\n" + subtitle + "\n\n" + scoreStyled + "  " + gradeStyled))
	b.WriteString("\n\n")
}

// writeCounts writes the severity count line.
func (w *TerminalWriter) writeCounts(b *strings.Builder, result *model.UnifiedAnalysisResult) {
	b.WriteString("  ")
	b.WriteString(titleStyle.Render("Issues"))
	b.WriteString("  ")

	counts := result.Counts
	if counts.Critical > 0 {
		b.WriteString(criticalStyle.Render(fmt.Sprintf("%d critical", counts.Critical)))
		b.WriteString("  ")
	}
	if counts.High > 0 {
		b.WriteString(highStyle.Render(fmt.Sprintf("%d high", counts.High)))
		b.WriteString("  ")
	}
	if counts.Medium > 0 {
		b.WriteString(mediumStyle.Render(fmt.Sprintf("%d medium", counts.Medium)))
		b.WriteString("  ")
	}
	if counts.Low > 0 {
		b.WriteString(lowStyle.Render(fmt.Sprintf("%d low", counts.Low)))
	}
	if counts.Total == 0 {
		b.WriteString(passStyle.Render("none"))
	}
	b.WriteString("\n\n")
}

// writeIssues writes every issue, already ordered by severity by
// UnifiedAnalysisResult.SetIssues.
func (w *TerminalWriter) writeIssues(b *strings.Builder, result *model.UnifiedAnalysisResult) {
	if !result.HasIssues() {
		b.WriteString("  " + passStyle.Render("No accessibility issues found.") + "\n")
		return
	}

	for _, issue := range result.Issues {
		w.writeIssue(b, issue)
	}
}

// writeIssue writes one issue as a tag line plus detail lines.
func (w *TerminalWriter) writeIssue(b *strings.Builder, issue model.AccessibilityIssue) {
	tag := severityTag(issue.Severity)
	location := issue.Element.XPath
	if location == "" {
		location = "<" + issue.Element.Tag + ">"
	}

	fmt.Fprintf(b, "    %s %s\n", tag, xpathStyle.Render(truncateString(location, 56)))
	fmt.Fprintf(b, "         %s\n", dimStyle.Render(issue.Description))

	if w.verbose {
		if len(issue.WCAGCriteria) > 0 {
			fmt.Fprintf(b, "         %s\n",
				faintStyle.Render("WCAG "+strings.Join(issue.WCAGCriteria, ", ")))
		}
		if issue.SuggestedFix != "" {
			fmt.Fprintf(b, "         %s\n", faintStyle.Render(issue.SuggestedFix))
		}
	}
}

// writeFooter writes the timing line.
func (w *TerminalWriter) writeFooter(b *strings.Builder, result *model.UnifiedAnalysisResult) {
	b.WriteString("\n")
	b.WriteString("  " + separatorLine)
	b.WriteString("\n")
	b.WriteString("  " + dimStyle.Render(fmt.Sprintf(
		"%d elements analyzed in %s",
		result.Stats.ProcessedElements,
		result.Duration.Round(time.Millisecond),
	)))
	b.WriteString("\n")
}

// severityTag returns the styled tag for a severity level.
func severityTag(s model.Severity) string {
	switch s {
	case model.SeverityCritical:
		return criticalStyle.Render("crit ")
	case model.SeverityHigh:
		return highStyle.Render("high ")
	case model.SeverityMedium:
		return mediumStyle.Render("med  ")
	default:
		return lowStyle.Render("low  ")
	}
}

// gradeColor returns the display color for a grade, defaulting to dim for
// anything unrecognized.
func gradeColor(grade string) lipgloss.Color {
	if c, ok := gradeColors[grade]; ok {
		return c
	}
	return dim
}
