// Package dom parses HTML documents and extracts the page context the
// accessibility analyzers consume.
//
// The package wraps golang.org/x/net/html with the lookup indexes,
// style resolution, and per-element inspection a static analyzer
// needs: XPath-style element paths, visibility and focusability,
// accessible names, and effective foreground and background colors.
// A single extraction pass classifies every element of interest into
// an immutable PageContext that is safe to share across goroutines.
package dom
