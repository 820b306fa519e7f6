package database

import (
	"context"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"golang.org/x/crypto/sha3"

	"github.com/a11yscan/a11yscan/internal/model"
)

// dbFileName is the SQLite file created inside the data directory.
const dbFileName = "a11yscan.db"

// ScanDB provides SQLite-based storage for accessibility scan results.
// It manages connection pooling and serves the queries behind scan history
// and the compare command.
//
// Design decision: We store one row per scan with the full result as JSON
// plus denormalized summary columns rather than normalizing issues into
// their own table because:
// 1. Compare diffs (xpath, type) pairs from the deserialized result anyway.
// 2. Summary columns keep history listings cheap without JSON decoding.
// 3. The schema survives issue-model changes without migrations.
type ScanDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures ScanDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a ScanDB at the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*ScanDB, error) {
	dbPath := filepath.Join(dbDir, dbFileName)

	// Check if we should create the database or require it to exist
	if !opts.CreateIfNotExists {
		// Check if database file exists
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		// Ensure directory exists
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// Build connection string
	// We use modernc.org/sqlite which uses a different connection string format.
	// When CreateIfNotExists is false, we use mode=rw to prevent creating new files.
	// When CreateIfNotExists is true, we use mode=rwc to allow creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	// SQLite doesn't benefit from multiple connections for writes,
	// but multiple readers can improve performance
	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	sdb := &ScanDB{
		db:     db,
		dbPath: dbPath,
	}

	// Enable WAL mode if requested
	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	// Create tables
	if err := sdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return sdb, nil
}

// Close closes the database connection.
func (sdb *ScanDB) Close() error {
	return sdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (sdb *ScanDB) createTables() error {
	schema := `
	-- Scans store one row per analyzed page: summary columns for cheap
	-- listings plus the full result as JSON for compare and re-rendering.
	CREATE TABLE IF NOT EXISTS scans (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		fingerprint TEXT NOT NULL,
		score REAL NOT NULL,
		grade TEXT NOT NULL,
		critical_count INTEGER NOT NULL DEFAULT 0,
		high_count INTEGER NOT NULL DEFAULT 0,
		medium_count INTEGER NOT NULL DEFAULT 0,
		low_count INTEGER NOT NULL DEFAULT 0,
		result_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_scans_url ON scans(url);
	CREATE INDEX IF NOT EXISTS idx_scans_timestamp ON scans(timestamp);
	`

	_, err := sdb.db.ExecContext(context.Background(), schema)
	return err
}

// ScanRecord contains summary information about a stored scan.
// This is used for displaying scan history without loading the full result.
type ScanRecord struct {
	// ID is the unique identifier of the scan in the database.
	ID int64

	// URL is the analyzed page.
	URL string

	// Timestamp is when the scan was saved.
	Timestamp time.Time

	// Fingerprint is the SHA3-256 hex digest of the scanned document bytes.
	Fingerprint string

	// Score is the overall compliance score, 0-100.
	Score float64

	// Grade is the letter grade derived from Score at save time.
	Grade string

	// Counts tallies the scan's issues by severity.
	Counts model.SeverityCounts
}

// StoredScan pairs a stored scan's summary row with its full deserialized
// result.
type StoredScan struct {
	// Record holds the summary columns.
	Record ScanRecord

	// Result is the full analysis result.
	Result *model.UnifiedAnalysisResult
}

// SaveResult persists a scan result together with the document fingerprint
// and the letter grade the caller derived from the score. It returns the
// database ID of the new row.
func (sdb *ScanDB) SaveResult(ctx context.Context, result *model.UnifiedAnalysisResult, fingerprint, grade string) (int64, error) {
	if result == nil {
		return 0, fmt.Errorf("cannot save nil result")
	}

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize result: %w", err)
	}

	query := `
	INSERT INTO scans (url, fingerprint, score, grade, critical_count, high_count, medium_count, low_count, result_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	res, err := sdb.db.ExecContext(ctx, query,
		result.URL,
		fingerprint,
		result.OverallScore,
		grade,
		result.Counts.Critical,
		result.Counts.High,
		result.Counts.Medium,
		result.Counts.Low,
		string(resultJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save scan: %w", err)
	}

	return res.LastInsertId()
}

// ListScans retrieves the summary rows for all scans of a URL, newest first.
// This is more efficient than loading full results when only history is
// displayed.
func (sdb *ScanDB) ListScans(ctx context.Context, url string) ([]ScanRecord, error) {
	query := `
	SELECT id, url, timestamp, fingerprint, score, grade,
	       critical_count, high_count, medium_count, low_count
	FROM scans
	WHERE url = ?
	ORDER BY timestamp DESC, id DESC
	`

	rows, err := sdb.db.QueryContext(ctx, query, url)
	if err != nil {
		return nil, fmt.Errorf("failed to list scans: %w", err)
	}
	defer rows.Close()

	var results []ScanRecord
	for rows.Next() {
		var record ScanRecord
		var timestamp string

		err := rows.Scan(
			&record.ID,
			&record.URL,
			&timestamp,
			&record.Fingerprint,
			&record.Score,
			&record.Grade,
			&record.Counts.Critical,
			&record.Counts.High,
			&record.Counts.Medium,
			&record.Counts.Low,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}

		record.Timestamp = parseTimestamp(timestamp)
		record.Counts.Total = record.Counts.Critical + record.Counts.High + record.Counts.Medium + record.Counts.Low
		results = append(results, record)
	}

	return results, rows.Err()
}

// storedSelect lists the columns queryStored scans, in order.
const storedSelect = `
SELECT id, url, timestamp, fingerprint, score, grade,
       critical_count, high_count, medium_count, low_count, result_json
FROM scans
`

// queryStored runs a query built on storedSelect and deserializes each row
// into a StoredScan.
func (sdb *ScanDB) queryStored(ctx context.Context, query string, args ...any) ([]StoredScan, error) {
	rows, err := sdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query scans: %w", err)
	}
	defer rows.Close()

	var results []StoredScan
	for rows.Next() {
		var stored StoredScan
		var timestamp string
		var resultJSON string

		err := rows.Scan(
			&stored.Record.ID,
			&stored.Record.URL,
			&timestamp,
			&stored.Record.Fingerprint,
			&stored.Record.Score,
			&stored.Record.Grade,
			&stored.Record.Counts.Critical,
			&stored.Record.Counts.High,
			&stored.Record.Counts.Medium,
			&stored.Record.Counts.Low,
			&resultJSON,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stored result: %w", err)
		}

		stored.Record.Timestamp = parseTimestamp(timestamp)
		stored.Record.Counts.Total = stored.Record.Counts.Critical + stored.Record.Counts.High +
			stored.Record.Counts.Medium + stored.Record.Counts.Low

		var result model.UnifiedAnalysisResult
		if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
			return nil, fmt.Errorf("failed to parse stored result: %w", err)
		}
		stored.Result = &result

		results = append(results, stored)
	}

	return results, rows.Err()
}

// GetScanByID retrieves a stored scan by its database ID.
// Returns nil without error when no scan has that ID.
func (sdb *ScanDB) GetScanByID(ctx context.Context, id int64) (*StoredScan, error) {
	results, err := sdb.queryStored(ctx, storedSelect+"WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return &results[0], nil
}

// LatestTwo retrieves up to the two most recent scans of a URL, newest
// first. The compare command diffs the pair; a single-element slice means
// there is nothing to compare against yet.
func (sdb *ScanDB) LatestTwo(ctx context.Context, url string) ([]StoredScan, error) {
	return sdb.queryStored(ctx, storedSelect+"WHERE url = ? ORDER BY timestamp DESC, id DESC LIMIT 2", url)
}

// ListPages returns the distinct URLs that have at least one stored scan.
func (sdb *ScanDB) ListPages(ctx context.Context) ([]string, error) {
	query := `
	SELECT DISTINCT url FROM scans
	ORDER BY url
	`

	rows, err := sdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}
	defer rows.Close()

	var pages []string
	for rows.Next() {
		var page string
		if err := rows.Scan(&page); err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}
		pages = append(pages, page)
	}

	return pages, rows.Err()
}

// Fingerprint returns the SHA3-256 hex digest of a document's raw bytes.
// Byte-identical input produces the same fingerprint, which lets the
// compare command detect that a page has not changed between scans.
func Fingerprint(data []byte) string {
	hash := sha3.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	// Return zero time if no format matches
	// This is a fallback to avoid breaking functionality for edge cases
	return time.Time{}
}
