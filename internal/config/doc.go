// Package config provides configuration structures and utilities for a11yscan.
// It defines the check toggles, conformance level, time budgets, and report
// preferences, populated from CLI flags and an optional YAML file.
package config
