package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/a11yscan/a11yscan/internal/analyzer"
	"github.com/a11yscan/a11yscan/internal/config"
	"github.com/a11yscan/a11yscan/internal/database"
	"github.com/a11yscan/a11yscan/internal/dom"
	"github.com/a11yscan/a11yscan/internal/log"
	"github.com/a11yscan/a11yscan/internal/metrics"
	"github.com/a11yscan/a11yscan/internal/model"
	"github.com/a11yscan/a11yscan/internal/report"
)

// stdinTarget is the argument that selects standard input.
const stdinTarget = "-"

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [file...]",
		Short: "Analyze HTML documents for accessibility issues",
		Long: `Scan analyzes HTML documents for WCAG 2.1 accessibility defects.

It parses each document, extracts the page context, and runs the contrast,
keyboard, ARIA, form, heading, landmark, media, and alt-text checks over
it. The result is a deduplicated issue list with severities, confidences,
WCAG criteria tags, suggested fixes, and an overall compliance score.

Examples:
  # Scan a single file
  a11yscan scan page.html

  # Scan a document from stdin
  curl -s https://example.com | a11yscan scan -

  # Scan multiple files concurrently
  a11yscan scan pages/*.html

  # Evaluate against WCAG AAA thresholds
  a11yscan scan --wcag-level AAA page.html

  # Output a JSON report to a file
  a11yscan scan --json -o report.json page.html

  # Fail a CI run when the score drops below 80
  a11yscan scan --fail-under 80 page.html

Configuration file (.a11yscan) example:
  wcagLevel: AA
  checks:
    colorContrast: true
    languageDetection: false`,
		Args: cobra.ArbitraryArgs,
		RunE: runScanCmd,
	}

	// Rule set flags
	cmd.Flags().StringP("wcag-level", "w", config.DefaultWCAGLevel,
		"WCAG conformance level to evaluate against (A, AA, AAA)")
	cmd.Flags().Float64P("min-contrast", "r", 0,
		"Override the contrast threshold derived from the WCAG level")
	cmd.Flags().Bool("include-hidden", false,
		"Also analyze elements suppressed from rendering")
	cmd.Flags().Bool("detect-language", false,
		"Compare the declared page language against the detected one")

	// Scan behavior flags
	cmd.Flags().DurationP("max-scan-time", "t", config.DefaultMaxScanTime,
		"Advisory time budget for a full scan")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of concurrent scans when analyzing multiple files")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .a11yscan in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	// History and CI flags
	cmd.Flags().Bool("no-save", false,
		"Do not record the scan in the history database")
	cmd.Flags().Float64("fail-under", 0,
		"Exit non-zero when the overall score falls below this value")

	return cmd
}

// runScanCmd executes the scan command.
func runScanCmd(cmd *cobra.Command, args []string) error {
	// Build config from flags
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging
	logger := log.NewLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runScan(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags and the optional
// configuration file. Flags win over file values, so the file is applied
// first and explicitly changed flags are re-applied on top.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load settings from the config file before flags so flags override.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently skip when no file is found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		if err := file.Apply(cfg); err != nil {
			return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	if cmd.Flags().Changed("wcag-level") || configPath == "" {
		cfg.WCAGLevel, err = cmd.Flags().GetString("wcag-level")
		if err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Changed("min-contrast") {
		cfg.MinContrastRatio, err = cmd.Flags().GetFloat64("min-contrast")
		if err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Changed("max-scan-time") {
		cfg.MaxScanTime, err = cmd.Flags().GetDuration("max-scan-time")
		if err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Changed("include-hidden") {
		cfg.IncludeHiddenElements, err = cmd.Flags().GetBool("include-hidden")
		if err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Changed("detect-language") {
		cfg.EnableLanguageDetection, err = cmd.Flags().GetBool("detect-language")
		if err != nil {
			return nil, err
		}
	}

	cfg.BatchSize, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, err
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	noSave, err := cmd.Flags().GetBool("no-save")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noSave

	cfg.FailUnder, err = cmd.Flags().GetFloat64("fail-under")
	if err != nil {
		return nil, err
	}

	cfg.Verbose = getVerboseFlag(cmd)

	// Positional arguments are the documents to scan
	cfg.Targets = args

	return cfg, nil
}

// loadedTarget pairs a parsed document with the raw bytes it came from.
// The raw bytes feed the fingerprint stored alongside the result.
type loadedTarget struct {
	url      string
	raw      []byte
	document *dom.Document
}

// loadTarget reads and parses one scan target. The target "-" reads the
// document from standard input.
func loadTarget(target string, stdin io.Reader) (*loadedTarget, error) {
	var raw []byte
	var url string
	var err error

	if target == stdinTarget {
		raw, err = io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		url = "stdin"
	} else {
		raw, err = os.ReadFile(target) //nolint:gosec // User-provided scan target is intentional
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", target, err)
		}
		url = filepath.ToSlash(filepath.Clean(target))
	}

	doc, err := dom.Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", target, err)
	}

	return &loadedTarget{url: url, raw: raw, document: doc}, nil
}

// runScan executes the scan over every target.
func runScan(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting scan",
		"targets", cfg.Targets,
		"wcagLevel", cfg.WCAGLevel,
		"batchSize", cfg.BatchSize,
		"saveToDB", cfg.SaveToDB,
	)

	// Open database connection if saving is enabled
	var db *database.ScanDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DataDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "dir", cfg.DataDir)
	}

	// Parse every target up front so a bad file fails before any scan runs
	targets := make([]*loadedTarget, 0, len(cfg.Targets))
	for _, target := range cfg.Targets {
		loaded, err := loadTarget(target, os.Stdin)
		if err != nil {
			return err
		}
		targets = append(targets, loaded)
	}

	// One collector across all scans so the run summary aggregates
	collector := metrics.NewCollector()

	var lowestScore float64
	var err error
	if len(targets) > 1 && cfg.BatchSize > 1 {
		lowestScore, err = runBatchScan(ctx, cfg, targets, collector, db, logger)
	} else {
		lowestScore, err = runSequentialScan(ctx, cfg, targets, collector, db, logger)
	}
	if err != nil {
		return err
	}

	logMetricsSummary(collector, logger)

	if cfg.FailUnder > 0 && lowestScore < cfg.FailUnder {
		return fmt.Errorf("score %.0f is below the fail-under threshold %.0f", lowestScore, cfg.FailUnder)
	}
	return nil
}

// runSequentialScan scans targets one at a time.
// It returns the lowest overall score across the targets.
func runSequentialScan(ctx context.Context, cfg *config.Config, targets []*loadedTarget, collector *metrics.Collector, db *database.ScanDB, logger *slog.Logger) (float64, error) {
	lowest := 100.0

	for _, target := range targets {
		select {
		case <-ctx.Done():
			return lowest, ctx.Err()
		default:
		}

		coordinator := analyzer.NewCoordinator(cfg,
			analyzer.WithLogger(logger),
			analyzer.WithMetrics(collector),
		)

		// Progress is advisory; surface it only in verbose logs
		progress := func(ev model.ProgressEvent) {
			logger.Debug("scan progress",
				"url", target.url,
				"stage", ev.Stage,
				"percentage", ev.Percentage,
				"task", ev.CurrentTask,
			)
		}

		result, err := coordinator.AnalyzeAccessibility(ctx, target.document, target.url, progress)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return lowest, err
			}
			logger.Error("scan failed", "url", target.url, "error", err)
			fmt.Fprintf(os.Stderr, "Scan error for %s: %v\n", target.url, err)
			continue
		}

		if result.OverallScore < lowest {
			lowest = result.OverallScore
		}

		// Generate and output report
		if err := outputReport(cfg, result); err != nil {
			logger.Error("report failed", "url", target.url, "error", err)
		}

		// Save to database if enabled
		if err := saveScan(ctx, db, result, target.raw, logger); err != nil {
			logger.Error("failed to save scan", "url", target.url, "error", err)
		}
	}

	return lowest, nil
}

// runBatchScan scans multiple targets concurrently using a BatchRunner.
// It returns the lowest overall score across the targets.
func runBatchScan(ctx context.Context, cfg *config.Config, targets []*loadedTarget, collector *metrics.Collector, db *database.ScanDB, logger *slog.Logger) (float64, error) {
	fmt.Fprintf(os.Stderr, "Scanning %d documents (concurrency: %d)...\n",
		len(targets), cfg.BatchSize)

	startTime := time.Now()

	batchTargets := make([]analyzer.Target, len(targets))
	for i, t := range targets {
		batchTargets[i] = analyzer.Target{URL: t.url, Document: t.document}
	}

	runner := analyzer.NewBatchRunner(
		func() *analyzer.Coordinator {
			return analyzer.NewCoordinator(cfg,
				analyzer.WithLogger(logger),
				analyzer.WithMetrics(collector),
			)
		},
		analyzer.WithBatchConcurrency(cfg.BatchSize),
		analyzer.WithBatchLogger(logger),
	)

	lowest := 100.0

	// The callback runs on scanning goroutines; serialize output and
	// database writes.
	var mu sync.Mutex
	err := runner.RunWithCallback(ctx, batchTargets, func(result *model.UnifiedAnalysisResult, index int) {
		mu.Lock()
		defer mu.Unlock()

		if result == nil {
			fmt.Fprintf(os.Stderr, "[%d/%d] Scan failed: %s\n", index+1, len(targets), targets[index].url)
			return
		}

		fmt.Fprintf(os.Stderr, "[%d/%d] Scan completed: %s (score %.0f)\n",
			index+1, len(targets), result.URL, result.OverallScore)

		if result.OverallScore < lowest {
			lowest = result.OverallScore
		}

		if err := outputReport(cfg, result); err != nil {
			logger.Error("report failed", "url", result.URL, "error", err)
		}

		if err := saveScan(ctx, db, result, targets[index].raw, logger); err != nil {
			logger.Error("failed to save scan", "url", result.URL, "error", err)
		}
	})

	fmt.Fprintf(os.Stderr, "\nBatch scan completed in %s\n", time.Since(startTime).Round(time.Millisecond))

	return lowest, err
}

// outputReport outputs the scan result in the requested format.
func outputReport(cfg *config.Config, result *model.UnifiedAnalysisResult) error {
	// Determine output destination
	var output *os.File
	if cfg.ReportFile != "" {
		// Create directories if they don't exist
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	// JSON output (full result wrapped with version and grade)
	if cfg.JSONReport {
		writer := report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
		_, err := writer.Write(result)
		return err
	}

	// Markdown output
	if cfg.MarkdownReport {
		writer := report.NewMarkdownWriter(output)
		_, err := writer.Write(result)
		return err
	}

	// Styled terminal report (default)
	writer := report.NewTerminalWriter(output, report.WithVerboseIssues(cfg.Verbose))
	_, err := writer.Write(result)
	return err
}

// saveScan records the scan result in the history database together with
// the document fingerprint. If db is nil, this function is a no-op.
func saveScan(ctx context.Context, db *database.ScanDB, result *model.UnifiedAnalysisResult, raw []byte, logger *slog.Logger) error {
	if db == nil {
		return nil
	}

	fingerprint := database.Fingerprint(raw)
	grade := report.GradeFor(result.OverallScore)

	id, err := db.SaveResult(ctx, result, fingerprint, grade)
	if err != nil {
		return fmt.Errorf("failed to save scan result: %w", err)
	}

	logger.Info("scan result saved", "url", result.URL, "id", id, "grade", grade)
	return nil
}

// logMetricsSummary logs the run's aggregated performance counters.
func logMetricsSummary(collector *metrics.Collector, logger *slog.Logger) {
	snap, err := collector.Snapshot()
	if err != nil {
		logger.Warn("failed to gather metrics", "error", err)
		return
	}
	if snap.Scans == 0 {
		return
	}

	logger.Info("scan metrics",
		"scans", snap.Scans,
		"scanErrors", snap.ScanErrors,
		"totalScanSeconds", snap.ScanSeconds,
		"avgScanSeconds", snap.ScanSeconds/float64(snap.Scans),
		"elements", snap.Elements,
		"budgetOverruns", snap.BudgetOverruns,
	)
}
