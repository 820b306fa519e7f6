package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// The time budgets mirror the performance targets the analysis pipeline
// is designed around; they are advisory (overruns are logged and counted,
// never enforced).
const (
	// DefaultWCAGLevel is the conformance level scans evaluate against.
	// AA is the level most legislation and procurement standards require;
	// A is too permissive to be useful and AAA fails most real pages.
	DefaultWCAGLevel = "AA"

	// DefaultMaxScanTime is the advisory budget for a full scan.
	// 200ms keeps interactive hosts (editors, CI hooks) responsive. Scans
	// that exceed it still complete; the overrun is logged and counted.
	DefaultMaxScanTime = 200 * time.Millisecond

	// DefaultStageBudget is the advisory budget for the DOM analysis,
	// scanner, and content analysis stages.
	DefaultStageBudget = 100 * time.Millisecond

	// DefaultVisualBudget is the advisory budget for the visual analysis
	// stage. It is larger than the other stages because image metadata
	// decoding is the most expensive check in the pipeline.
	DefaultVisualBudget = 150 * time.Millisecond

	// DefaultBatchSize is the number of documents analyzed concurrently
	// when scanning multiple inputs. Four keeps memory bounded: each scan
	// holds a full parsed tree plus extracted collections.
	DefaultBatchSize = 4

	// AppName is the application name used for XDG directory paths.
	AppName = "a11yscan"
)

// Config holds all configuration options for a11yscan.
// This struct is designed to be populated from CLI flags and an optional
// YAML file and passed through the application via dependency injection
// rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., CheckConfig, ReportConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
// If the configuration grows significantly, consider refactoring into sub-structs.
type Config struct {
	// EnableColorContrastCheck runs the contrast checks over visible text.
	// Disabling it is useful for documents whose styling is injected at
	// runtime, where static contrast results would be noise.
	EnableColorContrastCheck bool

	// EnableKeyboardAccessibilityCheck runs the keyboard operability and
	// focus-management checks.
	EnableKeyboardAccessibilityCheck bool

	// EnableARIAValidation runs the ARIA reference and role checks.
	EnableARIAValidation bool

	// EnableFormValidation runs the form labeling and validation-hint
	// checks.
	EnableFormValidation bool

	// EnableLanguageDetection compares the declared page language against
	// the language detected from the page text. Off by default because
	// detection loads statistical language models and is unreliable on
	// short or code-heavy pages.
	EnableLanguageDetection bool

	// WCAGLevel is the conformance level to evaluate against: A, AA, or AAA.
	// It selects the contrast thresholds; the rule set itself is the same
	// at every level.
	WCAGLevel string

	// MaxScanTime is the advisory time budget for a full scan.
	// Exceeding it logs a warning and increments a metric; the scan still
	// runs to completion because a partial traversal would report
	// misleading results.
	MaxScanTime time.Duration

	// MinContrastRatio overrides the contrast threshold derived from
	// WCAGLevel when positive. Zero means use the level's threshold.
	MinContrastRatio float64

	// IncludeHiddenElements also analyzes elements suppressed from
	// rendering (display:none, hidden). Off by default because issues on
	// invisible elements do not affect what users perceive.
	IncludeHiddenElements bool

	// DOMAnalysisBudget is the advisory budget for building the page
	// context.
	DOMAnalysisBudget time.Duration

	// ScannerBudget is the advisory budget for the primary WCAG rule set.
	ScannerBudget time.Duration

	// ContentAnalysisBudget is the advisory budget for the content
	// structure analysis.
	ContentAnalysisBudget time.Duration

	// VisualAnalysisBudget is the advisory budget for the visual analysis.
	VisualAnalysisBudget time.Duration

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// BatchSize is the number of concurrent document scans when processing
	// multiple inputs.
	BatchSize int

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .a11yscan in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// JSONReport enables JSON report output instead of the human-readable
	// terminal format. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output instead of the
	// human-readable terminal format. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	// Directories are created automatically if they don't exist.
	ReportFile string

	// Targets is the list of HTML files to scan. The single entry "-"
	// reads the document from stdin.
	Targets []string

	// DataDir is the directory path for storing the SQLite scan history.
	// Defaults to the XDG data directory (~/.local/share/a11yscan on
	// Linux).
	DataDir string

	// SaveToDB indicates whether to save scan results to the database for
	// historical comparison.
	SaveToDB bool

	// FailUnder makes the scan command exit non-zero when the overall
	// score falls below this value. Zero disables the gate. Intended for
	// CI pipelines.
	FailUnder float64
}

// NewConfig creates a new Config with default values.
// All checks are enabled by default; language detection is opt-in.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., budgets, WCAG
// level). This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		EnableColorContrastCheck:         true,
		EnableKeyboardAccessibilityCheck: true,
		EnableARIAValidation:             true,
		EnableFormValidation:             true,
		WCAGLevel:                        DefaultWCAGLevel,
		MaxScanTime:                      DefaultMaxScanTime,
		DOMAnalysisBudget:                DefaultStageBudget,
		ScannerBudget:                    DefaultStageBudget,
		ContentAnalysisBudget:            DefaultStageBudget,
		VisualAnalysisBudget:             DefaultVisualBudget,
		BatchSize:                        DefaultBatchSize,
		DataDir:                          XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for a11yscan.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.local/share/a11yscan
// On macOS: ~/Library/Application Support/a11yscan
// On Windows: %LOCALAPPDATA%\a11yscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for a11yscan.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.config/a11yscan
// On macOS: ~/Library/Application Support/a11yscan
// On Windows: %APPDATA%\a11yscan
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for a11yscan.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.cache/a11yscan
// On macOS: ~/Library/Caches/a11yscan
// On Windows: %LOCALAPPDATA%\a11yscan\cache
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// ValidWCAGLevels are the accepted conformance level values.
var ValidWCAGLevels = []string{"A", "AA", "AAA"}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any scanning begins.
//
// We chose to return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	// We must have at least one document to scan
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}

	valid := false
	for _, lvl := range ValidWCAGLevels {
		if c.WCAGLevel == lvl {
			valid = true
			break
		}
	}
	if !valid {
		return ErrInvalidWCAGLevel
	}

	// Budgets must be positive; a zero budget would flag every scan
	if c.MaxScanTime <= 0 {
		return ErrInvalidScanTime
	}
	if c.DOMAnalysisBudget <= 0 || c.ScannerBudget <= 0 ||
		c.ContentAnalysisBudget <= 0 || c.VisualAnalysisBudget <= 0 {
		return ErrInvalidBudget
	}

	// A contrast override below 1 is impossible: ratios are always >= 1
	if c.MinContrastRatio != 0 && c.MinContrastRatio < 1 {
		return ErrInvalidContrastRatio
	}

	// BatchSize must be positive; zero would mean no scanning
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	// JSONReport and MarkdownReport are mutually exclusive
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.FailUnder < 0 || c.FailUnder > 100 {
		return ErrInvalidFailUnder
	}

	return nil
}
