package log

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"unicode/utf8"
)

// DefaultValueLimit is the maximum length in bytes of a string attribute
// value before truncation. Scans routinely log element markup, alt text,
// and extracted page text; without a cap a single inlined SVG or deeply
// nested table swamps the log stream.
const DefaultValueLimit = 256

// TruncationMark is appended to attribute values shortened by the handler.
const TruncationMark = "...[truncated]"

// preservedKeys contains attribute keys whose values are never truncated.
// These values must survive intact for a scan to be reproduced from its
// logs, no matter how long they are.
var preservedKeys = map[string]bool{
	"url":   true,
	"file":  true,
	"path":  true,
	"error": true,
}

// TruncatingHandler is a slog.Handler that caps oversized string attribute
// values before delegating to an underlying handler.
//
// Design decision: Values are capped in a handler wrapper rather than at
// each logging call site because:
// 1. Analyzer code can log raw markup and extracted text without pre-trimming.
// 2. The cap applies uniformly regardless of the underlying handler (text, JSON).
// 3. Attributes attached via With() and WithGroup() are capped exactly once.
type TruncatingHandler struct {
	handler slog.Handler
	limit   int
}

// NewTruncatingHandler creates a new TruncatingHandler that wraps the given
// handler. If handler is nil, it wraps slog.Default()'s handler. A limit of
// zero or less falls back to DefaultValueLimit.
func NewTruncatingHandler(handler slog.Handler, limit int) *TruncatingHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	if limit <= 0 {
		limit = DefaultValueLimit
	}
	return &TruncatingHandler{
		handler: handler,
		limit:   limit,
	}
}

// Enabled reports whether the handler handles records at the given level.
func (h *TruncatingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle caps oversized attribute values in the record and passes it to the
// underlying handler.
func (h *TruncatingHandler) Handle(ctx context.Context, r slog.Record) error {
	capped := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)

	r.Attrs(func(attr slog.Attr) bool {
		capped.AddAttrs(h.capAttr(attr))
		return true
	})

	return h.handler.Handle(ctx, capped)
}

// WithAttrs returns a new TruncatingHandler whose added attributes are
// capped.
func (h *TruncatingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	capped := make([]slog.Attr, len(attrs))
	for i, attr := range attrs {
		capped[i] = h.capAttr(attr)
	}
	return &TruncatingHandler{
		handler: h.handler.WithAttrs(capped),
		limit:   h.limit,
	}
}

// WithGroup returns a new TruncatingHandler with the given group name.
func (h *TruncatingHandler) WithGroup(name string) slog.Handler {
	return &TruncatingHandler{
		handler: h.handler.WithGroup(name),
		limit:   h.limit,
	}
}

// capAttr shortens oversized string values. Group attributes are processed
// recursively so nested values do not escape the cap.
func (h *TruncatingHandler) capAttr(attr slog.Attr) slog.Attr {
	if attr.Value.Kind() == slog.KindGroup {
		group := attr.Value.Group()
		capped := make([]slog.Attr, len(group))
		for i, a := range group {
			capped[i] = h.capAttr(a)
		}
		return slog.Attr{Key: attr.Key, Value: slog.GroupValue(capped...)}
	}

	if attr.Value.Kind() != slog.KindString {
		return attr
	}
	if isPreservedKey(attr.Key) {
		return attr
	}

	value := attr.Value.String()
	if len(value) <= h.limit {
		return attr
	}

	return slog.String(attr.Key, truncate(value, h.limit))
}

// isPreservedKey checks whether the attribute key names a value that must
// never be truncated. The check is case-insensitive.
func isPreservedKey(key string) bool {
	return preservedKeys[strings.ToLower(key)]
}

// truncate shortens s to at most limit bytes plus the truncation mark. The
// cut backs up to a rune boundary so multibyte characters in extracted page
// text are never split.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}

	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}

	return s[:cut] + TruncationMark
}

// NewLogger creates a new slog.Logger that writes human-readable text output
// with oversized attribute values capped.
//
// Parameters:
//   - w: The io.Writer to write log output to (typically os.Stderr)
//   - verbose: If true, sets log level to Debug; otherwise Warn
//
// Returns a *slog.Logger that can be used with slog.SetDefault() or passed
// to components that accept *slog.Logger.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	textHandler := slog.NewTextHandler(w, opts)
	truncatingHandler := NewTruncatingHandler(textHandler, DefaultValueLimit)

	return slog.New(truncatingHandler)
}

// NewJSONLogger creates a new slog.Logger that outputs JSON format with
// oversized attribute values capped. Useful for structured log aggregation.
//
// Parameters:
//   - w: The io.Writer to write log output to
//   - verbose: If true, sets log level to Debug; otherwise Warn
//
// Returns a *slog.Logger configured for JSON output.
func NewJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	jsonHandler := slog.NewJSONHandler(w, opts)
	truncatingHandler := NewTruncatingHandler(jsonHandler, DefaultValueLimit)

	return slog.New(truncatingHandler)
}
