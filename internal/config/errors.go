package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages. Using errors.New() here rather than fmt.Errorf()
// because we don't need to include dynamic values in these messages.
var (
	// ErrNoTarget is returned when no document to scan is specified.
	// This error occurs when neither a file argument nor "-" for stdin
	// is provided.
	ErrNoTarget = errors.New("no target specified: provide an HTML file or - for stdin")

	// ErrInvalidWCAGLevel is returned when the WCAG level is not one of
	// A, AA, or AAA.
	ErrInvalidWCAGLevel = errors.New("invalid WCAG level: must be A, AA, or AAA")

	// ErrInvalidScanTime is returned when the scan time budget is not
	// positive. A zero budget would flag every scan as an overrun.
	ErrInvalidScanTime = errors.New("invalid max scan time: must be positive")

	// ErrInvalidBudget is returned when a per-stage time budget is not
	// positive.
	ErrInvalidBudget = errors.New("invalid stage budget: must be positive")

	// ErrInvalidContrastRatio is returned when the contrast ratio override
	// is below 1. Contrast ratios are mathematically always at least 1.
	ErrInvalidContrastRatio = errors.New("invalid contrast ratio: must be at least 1")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	// A batch size of zero would mean no concurrent scans, effectively
	// stopping the scanning process.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidFailUnder is returned when the fail-under score gate is
	// outside the valid score range.
	ErrInvalidFailUnder = errors.New("invalid fail-under threshold: must be between 0 and 100")
)
