package model

import "fmt"

// Severity represents the user impact of an accessibility issue.
// It answers "how badly does this defect hurt an assistive-technology
// user", independent of how certain the detector is (see Confidence
// on AccessibilityIssue).
//
// Design decision: We use iota-based constants rather than string constants
// because severities are compared and sorted during deduplication and
// scoring. The String() method and TextMarshaler implementation provide
// the canonical lowercase names for JSON output.
type Severity int

const (
	// SeverityLow indicates cosmetic or low-friction issues.
	// Examples: overlong alt text, generic link text with surrounding context.
	SeverityLow Severity = iota

	// SeverityMedium indicates issues that degrade the experience but leave
	// a workaround. Examples: heading level skips, positive tabindex values.
	SeverityMedium

	// SeverityHigh indicates issues that block common assistive-technology
	// flows. Examples: unlabeled form controls, contrast just below threshold.
	SeverityHigh

	// SeverityCritical indicates issues that make content unreachable or
	// unintelligible. Examples: keyboard-inaccessible controls, contrast a
	// full ratio point or more below threshold.
	SeverityCritical
)

// severityNames holds the canonical lowercase names, indexed by Severity.
var severityNames = [...]string{"low", "medium", "high", "critical"}

// String returns the canonical lowercase name of the severity level.
func (s Severity) String() string {
	if s < SeverityLow || s > SeverityCritical {
		return "unknown"
	}
	return severityNames[s]
}

// Valid reports whether s is one of the defined severity levels.
func (s Severity) Valid() bool {
	return s >= SeverityLow && s <= SeverityCritical
}

// Penalty returns the score deduction applied per issue of this severity.
// The overall compliance score starts at 100 and loses this amount for
// every deduplicated issue.
func (s Severity) Penalty() float64 {
	switch s {
	case SeverityCritical:
		return 15
	case SeverityHigh:
		return 8
	case SeverityMedium:
		return 4
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// MarshalText implements encoding.TextMarshaler so severities serialize as
// their names both as JSON values and as JSON map keys.
func (s Severity) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid severity: %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, accepting the canonical
// lowercase names produced by MarshalText.
func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseSeverity converts a canonical severity name to its Severity value.
func ParseSeverity(name string) (Severity, error) {
	for i, n := range severityNames {
		if n == name {
			return Severity(i), nil
		}
	}
	return SeverityLow, fmt.Errorf("unknown severity: %q", name)
}

// SeverityCounts tallies issues by severity level.
type SeverityCounts struct {
	// Critical is the number of critical issues.
	Critical int `json:"critical"`

	// High is the number of high-severity issues.
	High int `json:"high"`

	// Medium is the number of medium-severity issues.
	Medium int `json:"medium"`

	// Low is the number of low-severity issues.
	Low int `json:"low"`

	// Total is the number of issues across all severities.
	Total int `json:"total"`
}

// CountBySeverity tallies a list of issues into SeverityCounts.
func CountBySeverity(issues []AccessibilityIssue) SeverityCounts {
	var c SeverityCounts
	for _, issue := range issues {
		switch issue.Severity {
		case SeverityCritical:
			c.Critical++
		case SeverityHigh:
			c.High++
		case SeverityMedium:
			c.Medium++
		case SeverityLow:
			c.Low++
		}
		c.Total++
	}
	return c
}
