// Package analyzer implements the accessibility analysis systems and
// the coordinator that fans a page out to them.
//
// A single DOM extraction produces an immutable AnalysisData bundle
// that three independent systems consume concurrently: the scanner
// system (alt text presence, contrast, keyboard access, ARIA, form
// labeling), the content system (headings, landmarks, link purpose,
// language), and the visual system (alt text quality, media
// alternatives, layout tables, text size). Each system is fault
// isolated; a failing check or system degrades coverage instead of
// aborting the scan. The coordinator merges the per-system findings,
// deduplicates them, and computes the overall compliance score.
package analyzer
