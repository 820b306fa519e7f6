// Package contrast implements WCAG 2.1 colorimetric contrast evaluation.
//
// The package is a pure computation layer: it parses CSS color values,
// computes relative luminance and contrast ratios as defined by WCAG 2.1,
// and checks ratios against the AA and AAA conformance thresholds.
// It performs no DOM traversal and no I/O, which keeps the math easy to
// verify against the published formulas.
package contrast
