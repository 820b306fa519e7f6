package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/a11yscan/a11yscan/internal/config"
	"github.com/a11yscan/a11yscan/internal/database"
	"github.com/a11yscan/a11yscan/internal/model"
)

// Constants for score direction and summary messages.
const (
	directionWorsened  = "worsened"
	directionImproved  = "improved"
	directionUnchanged = "unchanged"
	noIssuesMessage    = "No issues"
)

// NewCompareCmd creates the compare command.
// This command compares scan results with historical data stored in the database.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [page]",
		Short: "Compare scan results with historical data",
		Long: `Compare displays differences between the current and previous scan results.

This command retrieves historical scan data from the database and shows:
- New issues that appeared since the last scan
- Resolved issues that are no longer present
- The change in the overall compliance score

The comparison requires at least two scans in the database for the specified
page. Use 'a11yscan scan' to perform scans and save results.

Examples:
  # Compare latest two scans for a page
  a11yscan compare page.html

  # List all scan history for a page
  a11yscan compare --list page.html

  # Compare with a specific historical scan by ID
  a11yscan compare --with-scan-id 5 page.html

  # Compare with the first scan since a specific date
  a11yscan compare --since "2026-01-01" page.html

  # Output comparison in JSON format
  a11yscan compare --json page.html

  # List all scanned pages in the database
  a11yscan compare --list-pages`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCompareCmd,
	}

	// History listing flags
	cmd.Flags().BoolP("list", "l", false,
		"List scan history for the specified page")
	cmd.Flags().BoolP("list-pages", "L", false,
		"List all scanned pages in the database")

	// Comparison target flags
	cmd.Flags().Int64P("with-scan-id", "i", 0,
		"Compare with a specific scan by ID (use --list to see available IDs)")
	cmd.Flags().StringP("since", "s", "",
		"Compare with the first scan after this date (format: YYYY-MM-DD)")

	// Output format flags
	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output comparison result in Markdown format")

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	// Handle --list-pages flag first (requires database but no page)
	listPages, err := cmd.Flags().GetBool("list-pages")
	if err != nil {
		return err
	}

	// Validate arguments before opening database (unless --list-pages).
	// This prevents database lock issues when validation fails.
	var page string
	if !listPages {
		if len(args) == 0 {
			return errors.New("page is required (use --list-pages to see available pages)")
		}
		page = args[0]
	}

	// Use XDG data directory for database
	dbDir := config.XDGDataDir()

	// Open database
	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	// Handle --list-pages flag
	if listPages {
		return listScannedPages(ctx, db)
	}

	// Handle --list flag
	listHistory, err := cmd.Flags().GetBool("list")
	if err != nil {
		return err
	}
	if listHistory {
		return listScanHistory(ctx, db, page)
	}

	// Get output format flags
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	markdownOutput, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}

	// Get comparison target flags
	withScanID, err := cmd.Flags().GetInt64("with-scan-id")
	if err != nil {
		return err
	}
	sinceDate, err := cmd.Flags().GetString("since")
	if err != nil {
		return err
	}

	// Perform comparison
	return runComparison(ctx, db, page, withScanID, sinceDate, jsonOutput, markdownOutput)
}

// listScannedPages lists all pages that have scan records in the database.
func listScannedPages(ctx context.Context, db *database.ScanDB) error {
	pages, err := db.ListPages(ctx)
	if err != nil {
		return fmt.Errorf("failed to list pages: %w", err)
	}

	if len(pages) == 0 {
		fmt.Println("No scanned pages found in the database.")
		fmt.Println("\nUse 'a11yscan scan <file>' to analyze a page.")
		return nil
	}

	fmt.Printf("Scanned pages (%d):\n\n", len(pages))
	for _, page := range pages {
		fmt.Printf("  • %s\n", page)
	}
	fmt.Println("\nUse 'a11yscan compare --list <page>' to see scan history for a page.")

	return nil
}

// listScanHistory lists all scan records for a specific page.
func listScanHistory(ctx context.Context, db *database.ScanDB, page string) error {
	records, err := db.ListScans(ctx, page)
	if err != nil {
		return fmt.Errorf("failed to get scan history: %w", err)
	}

	if len(records) == 0 {
		fmt.Printf("No scan history found for %s\n", page)
		fmt.Println("\nUse 'a11yscan scan' to analyze this page.")
		return nil
	}

	fmt.Printf("Scan history for %s (%d scans):\n\n", page, len(records))
	fmt.Printf("  %-6s  %-20s  %-7s  %-6s  %s\n", "ID", "Date", "Score", "Grade", "Issues")
	fmt.Println("  " + strings.Repeat("-", 62))

	for _, record := range records {
		fmt.Printf("  %-6d  %-20s  %-7.0f  %-6s  %s\n",
			record.ID,
			record.Timestamp.Format("2006-01-02 15:04:05"),
			record.Score,
			record.Grade,
			formatCounts(record.Counts),
		)
	}

	fmt.Println("\nUse 'a11yscan compare <page>' to compare the latest two scans.")
	fmt.Println("Use 'a11yscan compare --with-scan-id <id> <page>' to compare with a specific scan.")

	return nil
}

// formatCounts formats severity counts into a compact summary string.
func formatCounts(counts model.SeverityCounts) string {
	var parts []string
	if counts.Critical > 0 {
		parts = append(parts, fmt.Sprintf("C:%d", counts.Critical))
	}
	if counts.High > 0 {
		parts = append(parts, fmt.Sprintf("H:%d", counts.High))
	}
	if counts.Medium > 0 {
		parts = append(parts, fmt.Sprintf("M:%d", counts.Medium))
	}
	if counts.Low > 0 {
		parts = append(parts, fmt.Sprintf("L:%d", counts.Low))
	}

	if len(parts) == 0 {
		return noIssuesMessage
	}
	return strings.Join(parts, " ")
}

// runComparison performs the actual comparison between stored scans.
func runComparison(ctx context.Context, db *database.ScanDB, page string, withScanID int64, sinceDate string, jsonOutput, markdownOutput bool) error {
	latest, err := db.LatestTwo(ctx, page)
	if err != nil {
		return fmt.Errorf("failed to get scan history: %w", err)
	}

	if len(latest) == 0 {
		return fmt.Errorf("no scan history found for %s", page)
	}

	if len(latest) < 2 && withScanID == 0 && sinceDate == "" {
		return fmt.Errorf("at least 2 scans are required for comparison (found %d)", len(latest))
	}

	// Latest scan is always the current one
	current := &latest[0]

	var previous *database.StoredScan
	switch {
	case withScanID > 0:
		previous, err = db.GetScanByID(ctx, withScanID)
		if err != nil {
			return fmt.Errorf("failed to get scan with ID %d: %w", withScanID, err)
		}
		if previous == nil {
			return fmt.Errorf("scan with ID %d not found", withScanID)
		}
		// Validate that the scan ID belongs to the same page
		if previous.Record.URL != page {
			return fmt.Errorf("scan ID %d belongs to %s, not %s", withScanID, previous.Record.URL, page)
		}
	case sinceDate != "":
		previous, err = findScanSince(ctx, db, page, sinceDate)
		if err != nil {
			return err
		}
		if previous.Record.ID == current.Record.ID {
			return fmt.Errorf("only one scan found since %s; at least 2 scans are required for comparison", sinceDate)
		}
	default:
		previous = &latest[1]
	}

	// Generate comparison result
	comparison := compareScans(previous, current)

	// Output the result
	if jsonOutput {
		return outputComparisonJSON(comparison)
	}
	if markdownOutput {
		return outputComparisonMarkdown(comparison)
	}
	return outputComparisonText(comparison)
}

// findScanSince returns the oldest stored scan of a page at or after the
// given date.
func findScanSince(ctx context.Context, db *database.ScanDB, page, sinceDate string) (*database.StoredScan, error) {
	parsedDate, err := time.Parse("2006-01-02", sinceDate)
	if err != nil {
		return nil, fmt.Errorf("invalid date format (use YYYY-MM-DD): %w", err)
	}

	records, err := db.ListScans(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("failed to get scan history: %w", err)
	}

	// Records are sorted newest first; iterate in reverse to find the
	// oldest record at or after the date.
	for i := len(records) - 1; i >= 0; i-- {
		record := records[i]
		if record.Timestamp.After(parsedDate) || record.Timestamp.Equal(parsedDate) {
			stored, err := db.GetScanByID(ctx, record.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to get scan with ID %d: %w", record.ID, err)
			}
			if stored == nil {
				return nil, fmt.Errorf("scan with ID %d not found", record.ID)
			}
			return stored, nil
		}
	}
	return nil, fmt.Errorf("no scans found since %s", sinceDate)
}

// ComparisonResult holds the result of comparing two stored scans.
type ComparisonResult struct {
	// Page is the analyzed page.
	Page string `json:"page"`

	// PreviousScan contains metadata about the previous scan.
	PreviousScan ScanSummary `json:"previous_scan"`

	// CurrentScan contains metadata about the current scan.
	CurrentScan ScanSummary `json:"current_scan"`

	// DocumentUnchanged is true when both scans fingerprint the same
	// document bytes, in which case any issue differences come from
	// configuration or rule changes rather than page edits.
	DocumentUnchanged bool `json:"document_unchanged"`

	// NewIssues contains issues present in the current scan only.
	NewIssues []model.AccessibilityIssue `json:"new_issues,omitempty"`

	// ResolvedIssues contains issues present in the previous scan only.
	ResolvedIssues []model.AccessibilityIssue `json:"resolved_issues,omitempty"`

	// UnchangedCount is the number of issues present in both scans.
	UnchangedCount int `json:"unchanged_count"`

	// ScoreDelta is the change in the overall compliance score.
	ScoreDelta float64 `json:"score_delta"`

	// Direction is "improved", "worsened", or "unchanged".
	Direction string `json:"direction"`
}

// ScanSummary contains metadata about one scan for comparison display.
type ScanSummary struct {
	// ID is the scan's database ID.
	ID int64 `json:"id"`

	// Timestamp is when the scan was performed.
	Timestamp time.Time `json:"timestamp"`

	// Score is the overall compliance score.
	Score float64 `json:"score"`

	// Grade is the letter grade derived from Score.
	Grade string `json:"grade"`

	// Counts tallies the scan's issues by severity.
	Counts model.SeverityCounts `json:"counts"`
}

// summarize extracts the display metadata from a stored scan.
func summarize(scan *database.StoredScan) ScanSummary {
	return ScanSummary{
		ID:        scan.Record.ID,
		Timestamp: scan.Record.Timestamp,
		Score:     scan.Record.Score,
		Grade:     scan.Record.Grade,
		Counts:    scan.Record.Counts,
	}
}

// compareScans diffs two stored scans by issue identity (element XPath
// plus issue type) and computes the score change.
func compareScans(previous, current *database.StoredScan) *ComparisonResult {
	result := &ComparisonResult{
		Page:              current.Record.URL,
		PreviousScan:      summarize(previous),
		CurrentScan:       summarize(current),
		DocumentUnchanged: previous.Record.Fingerprint == current.Record.Fingerprint,
	}

	previousIssues := make(map[string]model.AccessibilityIssue)
	currentIssues := make(map[string]model.AccessibilityIssue)

	if previous.Result != nil {
		for _, issue := range previous.Result.Issues {
			previousIssues[issue.DedupKey()] = issue
		}
	}
	if current.Result != nil {
		for _, issue := range current.Result.Issues {
			currentIssues[issue.DedupKey()] = issue
		}
	}

	// New issues: in current but not in previous
	for key, issue := range currentIssues {
		if _, exists := previousIssues[key]; !exists {
			result.NewIssues = append(result.NewIssues, issue)
		}
	}

	// Resolved issues: in previous but not in current
	for key, issue := range previousIssues {
		if _, exists := currentIssues[key]; !exists {
			result.ResolvedIssues = append(result.ResolvedIssues, issue)
		} else {
			result.UnchangedCount++
		}
	}

	result.ScoreDelta = current.Record.Score - previous.Record.Score
	switch {
	case result.ScoreDelta > 0:
		result.Direction = directionImproved
	case result.ScoreDelta < 0:
		result.Direction = directionWorsened
	default:
		result.Direction = directionUnchanged
	}

	return result
}

// outputComparisonJSON outputs the comparison result in JSON format.
func outputComparisonJSON(result *ComparisonResult) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// outputComparisonMarkdown outputs the comparison result in Markdown format.
func outputComparisonMarkdown(result *ComparisonResult) error {
	fmt.Printf("# Scan Comparison: %s\n\n", result.Page)

	fmt.Println("## Summary")
	fmt.Printf("\n**Status:** %s\n\n", formatDirection(result.Direction))

	if result.DocumentUnchanged {
		fmt.Println("> The document is byte-identical between the two scans.")
		fmt.Println()
	}

	fmt.Println("| Metric | Previous | Current | Change |")
	fmt.Println("|--------|----------|---------|--------|")
	fmt.Printf("| Date | %s | %s | - |\n",
		result.PreviousScan.Timestamp.Format("2006-01-02 15:04"),
		result.CurrentScan.Timestamp.Format("2006-01-02 15:04"))
	fmt.Printf("| Score | %.0f (%s) | %.0f (%s) | %s |\n",
		result.PreviousScan.Score, result.PreviousScan.Grade,
		result.CurrentScan.Score, result.CurrentScan.Grade,
		formatScoreDelta(result.ScoreDelta))
	fmt.Printf("| Critical | %d | %d | %s |\n",
		result.PreviousScan.Counts.Critical,
		result.CurrentScan.Counts.Critical,
		formatDelta(result.CurrentScan.Counts.Critical-result.PreviousScan.Counts.Critical))
	fmt.Printf("| High | %d | %d | %s |\n",
		result.PreviousScan.Counts.High,
		result.CurrentScan.Counts.High,
		formatDelta(result.CurrentScan.Counts.High-result.PreviousScan.Counts.High))
	fmt.Printf("| Medium | %d | %d | %s |\n",
		result.PreviousScan.Counts.Medium,
		result.CurrentScan.Counts.Medium,
		formatDelta(result.CurrentScan.Counts.Medium-result.PreviousScan.Counts.Medium))
	fmt.Printf("| Low | %d | %d | %s |\n",
		result.PreviousScan.Counts.Low,
		result.CurrentScan.Counts.Low,
		formatDelta(result.CurrentScan.Counts.Low-result.PreviousScan.Counts.Low))
	fmt.Printf("| **Total** | **%d** | **%d** | **%s** |\n",
		result.PreviousScan.Counts.Total,
		result.CurrentScan.Counts.Total,
		formatDelta(result.CurrentScan.Counts.Total-result.PreviousScan.Counts.Total))

	if len(result.NewIssues) > 0 {
		fmt.Printf("\n## New Issues (%d)\n\n", len(result.NewIssues))
		for _, issue := range result.NewIssues {
			fmt.Printf("- **[%s]** %s: %s\n", issue.Severity, issue.Type, issue.Description)
			if issue.Element.XPath != "" {
				fmt.Printf("  - Element: `%s`\n", issue.Element.XPath)
			}
		}
	}

	if len(result.ResolvedIssues) > 0 {
		fmt.Printf("\n## Resolved Issues (%d)\n\n", len(result.ResolvedIssues))
		for _, issue := range result.ResolvedIssues {
			fmt.Printf("- ~~**[%s]** %s: %s~~\n", issue.Severity, issue.Type, issue.Description)
		}
	}

	if result.UnchangedCount > 0 {
		fmt.Printf("\n---\n\n*%d issues unchanged*\n", result.UnchangedCount)
	}

	return nil
}

// outputComparisonText outputs the comparison result in human-readable text format.
func outputComparisonText(result *ComparisonResult) error {
	fmt.Printf("Scan Comparison: %s\n", result.Page)
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("\nStatus: %s\n", formatDirection(result.Direction))
	if result.DocumentUnchanged {
		fmt.Println("Note:   document is byte-identical between the two scans")
	}

	fmt.Printf("\nPrevious scan: %s (score %.0f, grade %s)\n",
		result.PreviousScan.Timestamp.Format("2006-01-02 15:04:05"),
		result.PreviousScan.Score, result.PreviousScan.Grade)
	fmt.Printf("Current scan:  %s (score %.0f, grade %s)\n",
		result.CurrentScan.Timestamp.Format("2006-01-02 15:04:05"),
		result.CurrentScan.Score, result.CurrentScan.Grade)

	fmt.Println("\nIssue Summary:")
	fmt.Printf("  %-10s  %-10s  %-10s  %-10s\n", "Severity", "Previous", "Current", "Change")
	fmt.Println("  " + strings.Repeat("-", 45))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "Critical",
		result.PreviousScan.Counts.Critical, result.CurrentScan.Counts.Critical,
		formatDelta(result.CurrentScan.Counts.Critical-result.PreviousScan.Counts.Critical))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "High",
		result.PreviousScan.Counts.High, result.CurrentScan.Counts.High,
		formatDelta(result.CurrentScan.Counts.High-result.PreviousScan.Counts.High))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "Medium",
		result.PreviousScan.Counts.Medium, result.CurrentScan.Counts.Medium,
		formatDelta(result.CurrentScan.Counts.Medium-result.PreviousScan.Counts.Medium))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "Low",
		result.PreviousScan.Counts.Low, result.CurrentScan.Counts.Low,
		formatDelta(result.CurrentScan.Counts.Low-result.PreviousScan.Counts.Low))
	fmt.Println("  " + strings.Repeat("-", 45))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "Total",
		result.PreviousScan.Counts.Total, result.CurrentScan.Counts.Total,
		formatDelta(result.CurrentScan.Counts.Total-result.PreviousScan.Counts.Total))

	if len(result.NewIssues) > 0 {
		fmt.Printf("\nNew Issues (%d):\n", len(result.NewIssues))
		for _, issue := range result.NewIssues {
			fmt.Printf("  [+] [%s] %s: %s\n", issue.Severity, issue.Type, issue.Description)
			if issue.Element.XPath != "" {
				fmt.Printf("      Element: %s\n", issue.Element.XPath)
			}
		}
	}

	if len(result.ResolvedIssues) > 0 {
		fmt.Printf("\nResolved Issues (%d):\n", len(result.ResolvedIssues))
		for _, issue := range result.ResolvedIssues {
			fmt.Printf("  [-] [%s] %s: %s\n", issue.Severity, issue.Type, issue.Description)
		}
	}

	if result.UnchangedCount > 0 {
		fmt.Printf("\nUnchanged: %d issues\n", result.UnchangedCount)
	}

	return nil
}

// formatDirection formats the score change direction for display.
func formatDirection(direction string) string {
	switch direction {
	case directionImproved:
		return "IMPROVED (score increased)"
	case directionWorsened:
		return "WORSENED (score decreased)"
	default:
		return "UNCHANGED"
	}
}

// formatDelta formats a numeric delta with sign for display.
func formatDelta(delta int) string {
	if delta > 0 {
		return "+" + strconv.Itoa(delta)
	} else if delta < 0 {
		return strconv.Itoa(delta)
	}
	return "0"
}

// formatScoreDelta formats a score delta with sign for display.
func formatScoreDelta(delta float64) string {
	if delta > 0 {
		return fmt.Sprintf("+%.0f", delta)
	}
	return fmt.Sprintf("%.0f", delta)
}
