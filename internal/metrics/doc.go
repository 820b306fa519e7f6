// Package metrics provides Prometheus instrumentation for the analysis
// pipeline. A Collector owns its own registry so that scans, tests, and
// batch runs can each count independently without sharing global state.
package metrics
