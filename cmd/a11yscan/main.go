// Package main provides the entry point for the a11yscan CLI.
//
// a11yscan analyzes HTML documents for WCAG 2.1 accessibility defects and
// produces a scored, structured report of issues with suggested fixes.
//
// Usage:
//
//	a11yscan scan page.html
//	a11yscan scan - < page.html
//
// See --help for all available options.
package main

// main is the entry point for a11yscan.
func main() {
	Execute()
}
