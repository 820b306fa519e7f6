package analyzer

import "errors"

// Analysis errors.
//
// Design decision: We use package-level sentinel errors so callers can
// use errors.Is() to distinguish the two caller mistakes the
// coordinator reports: starting a second scan on a busy coordinator
// and passing a nil document. Everything that goes wrong inside a
// system is deliberately not an error: a broken check degrades
// coverage, it does not abort the scan.
var (
	// ErrScanInProgress is returned by AnalyzeAccessibility when the
	// coordinator is already running a scan. A Coordinator holds
	// per-scan state and is single-flight; use a BatchRunner or one
	// coordinator per goroutine to scan concurrently.
	ErrScanInProgress = errors.New("scan already in progress")

	// ErrNilDocument is returned when AnalyzeAccessibility is called
	// with a nil document.
	ErrNilDocument = errors.New("document is nil")
)
