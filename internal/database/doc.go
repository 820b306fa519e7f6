// Package database provides SQLite-based storage for scan results.
//
// This package implements the ScanDB, which stores:
//   - One row per analyzed page with score, grade, and severity counts
//   - The full analysis result as JSON for compare and re-rendering
//   - A SHA3-256 document fingerprint for change detection
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. Sufficient performance for our use case
// 4. WAL mode provides good concurrent read performance
//
// The analysis core never imports this package. Persistence is wired in
// from the CLI only, so library users of the analyzers carry no storage
// dependency.
package database
