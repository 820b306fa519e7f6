// Package log provides scan-friendly logging with automatic truncation of
// oversized attribute values, built on top of the standard slog package.
//
// This package extends slog to provide:
//   - Capping of oversized string values (element markup, extracted text)
//   - Configurable log levels with verbose mode support
//   - Consistent log formatting across the application
//
// # Truncation
//
// The TruncatingHandler caps string attribute values at DefaultValueLimit
// bytes before they reach the underlying handler. Accessibility scans log
// element markup, alt text, and extracted page text; without a cap a single
// inlined SVG or deeply nested table can swamp the log stream. Values under
// keys such as "url", "file", and "error" are never truncated, so a scan
// stays reproducible from its logs.
//
// Even in verbose mode, oversized values are capped. Verbose mode changes
// how much is logged, not how much of each value is logged.
//
// # Usage
//
//	// Create a logger
//	logger := log.NewLogger(os.Stderr, true) // verbose=true
//
//	// Use as a standard slog.Logger
//	logger.Debug("element extracted",
//	    "xpath", "/html/body/main/img[3]",
//	    "html", markup, // capped at DefaultValueLimit bytes
//	)
//
//	// Set as default logger
//	slog.SetDefault(logger)
package log
