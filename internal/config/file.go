package config

import "time"

// File represents the structure of the .a11yscan configuration file.
// Every field is optional; absent fields leave the corresponding Config
// value untouched, so a file only needs to list what it changes.
type File struct {
	// WCAGLevel sets the conformance level: A, AA, or AAA.
	WCAGLevel string `yaml:"wcagLevel,omitempty"`

	// MinContrastRatio overrides the contrast threshold derived from the
	// WCAG level.
	MinContrastRatio float64 `yaml:"minContrastRatio,omitempty"`

	// MaxScanTime sets the advisory scan budget as a Go duration string,
	// e.g. "200ms".
	MaxScanTime string `yaml:"maxScanTime,omitempty"`

	// IncludeHiddenElements also analyzes elements suppressed from
	// rendering.
	IncludeHiddenElements *bool `yaml:"includeHiddenElements,omitempty"`

	// Checks toggles individual check families.
	Checks ChecksFile `yaml:"checks,omitempty"`

	// DataDir overrides the scan history location.
	DataDir string `yaml:"dataDir,omitempty"`
}

// ChecksFile toggles the check families from the configuration file.
//
// Design decision: We use *bool rather than bool so that an absent key
// keeps the built-in default. With plain bool an omitted key would read
// as false and silently disable checks the user never mentioned.
type ChecksFile struct {
	// ColorContrast toggles the contrast checks.
	ColorContrast *bool `yaml:"colorContrast,omitempty"`

	// KeyboardAccessibility toggles the keyboard and focus checks.
	KeyboardAccessibility *bool `yaml:"keyboardAccessibility,omitempty"`

	// ARIAValidation toggles the ARIA reference and role checks.
	ARIAValidation *bool `yaml:"ariaValidation,omitempty"`

	// FormValidation toggles the form labeling and validation checks.
	FormValidation *bool `yaml:"formValidation,omitempty"`

	// LanguageDetection toggles declared-vs-detected language comparison.
	LanguageDetection *bool `yaml:"languageDetection,omitempty"`
}

// Apply merges the file's settings into a Config. Only fields present in
// the file are applied. The caller validates the merged result.
func (f *File) Apply(c *Config) error {
	if f.WCAGLevel != "" {
		c.WCAGLevel = f.WCAGLevel
	}
	if f.MinContrastRatio != 0 {
		c.MinContrastRatio = f.MinContrastRatio
	}
	if f.MaxScanTime != "" {
		d, err := time.ParseDuration(f.MaxScanTime)
		if err != nil {
			return err
		}
		c.MaxScanTime = d
	}
	if f.IncludeHiddenElements != nil {
		c.IncludeHiddenElements = *f.IncludeHiddenElements
	}
	if f.Checks.ColorContrast != nil {
		c.EnableColorContrastCheck = *f.Checks.ColorContrast
	}
	if f.Checks.KeyboardAccessibility != nil {
		c.EnableKeyboardAccessibilityCheck = *f.Checks.KeyboardAccessibility
	}
	if f.Checks.ARIAValidation != nil {
		c.EnableARIAValidation = *f.Checks.ARIAValidation
	}
	if f.Checks.FormValidation != nil {
		c.EnableFormValidation = *f.Checks.FormValidation
	}
	if f.Checks.LanguageDetection != nil {
		c.EnableLanguageDetection = *f.Checks.LanguageDetection
	}
	if f.DataDir != "" {
		c.DataDir = f.DataDir
	}
	return nil
}
