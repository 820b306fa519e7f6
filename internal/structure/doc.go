// Package structure validates structural accessibility rules: heading
// hierarchy, landmark composition, and form labeling. The rules are pure
// functions over extracted page facts, so they are testable without a
// document and safe to call from concurrent analyzers.
package structure
