// Package model defines the core data structures used throughout a11yscan.
//
// This package contains the following main types:
//   - AccessibilityIssue: A single detected defect with severity, confidence,
//     WCAG criteria, and the snapshot of the offending element
//   - ElementInfo: An immutable element snapshot (tag, XPath, attributes, rect)
//   - AnalyzerResult: One analysis system's issues, sub-score, and timing
//   - UnifiedAnalysisResult: The aggregated, deduplicated, scored scan result
//   - HeadingInfo / LandmarkInfo / FocusableElementInfo / FormControlInfo:
//     Structural facts the analyzers and the structure validator exchange
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (dom, analyzer, structure, report, database)
// need these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output and
// database storage; Severity implements encoding.TextMarshaler so that
// severity-keyed maps round-trip.
package model
