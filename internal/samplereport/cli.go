package samplereport

import (
	"fmt"
	"io"
	"os"

	"github.com/eugene-kuroles/nakama-proj/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging sends logs to stderr and, when logFile is set, to that file as
// well. Stdout stays reserved for the report. The returned func closes the file.
func SetupLogging(logFile string, verbose bool) (func() error, error) {
	closeFn := func() error { return nil }
	var w io.Writer = os.Stderr

	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			return closeFn, fmt.Errorf("failed to create log file: %w", err)
		}
		w = io.MultiWriter(os.Stderr, file)
		closeFn = file.Close
	}

	if err := logger.InitWith(w, logger.FormatText); err != nil {
		_ = closeFn()
		return func() error { return nil }, fmt.Errorf("failed to initialize logger: %w", err)
	}
	level := "info"
	if verbose {
		level = "debug"
	}
	_ = logger.SetLevelString(level)
	return closeFn, nil
}

// ShowHelp prints usage information for the sample report tool.
func ShowHelp(w io.Writer) {
	_, _ = io.WriteString(w, `Nakama Sample Report Tool
=========================

Builds one analytics report from synthetic calls or a Postgres database and
prints it as JSON.

Usage:
  go run ./cmd/sample-report [options]

Options:
  -kind string
        Report kind (default "executive"); one of:
        executive, team, manager, quick_summary, criteria_analysis,
        weekly_digest, manager_comparison, progress, comparison_with_team,
        forecast, feature_importance, trajectory
  -db string
        Postgres DSN (default: $NAKAMA_DATABASE_URL; empty uses synthetic calls)
  -project int
        Project id filter (default 0, all projects)
  -manager int
        Manager id for manager, progress, comparison_with_team and trajectory
  -managers string
        Comma-separated manager ids for manager_comparison
  -from string
        Inclusive start date, YYYY-MM-DD
  -to string
        Inclusive end date, YYYY-MM-DD
  -granularity string
        day, week or month for progress and forecast
  -metric string
        Forecast metric: score or calls_count
  -periods int
        Forecast periods (default 4)
  -days int
        Trajectory horizon in days
  -weeks int
        Weekly digest length in weeks
  -calls int
        Synthetic call count (default 600)
  -managers-count int
        Synthetic manager count (default 6)
  -seed int
        Synthetic data seed (default 7)
  -timeout duration
        Whole run timeout (default 1m)
  -output string
        Write the report to this file instead of stdout
  -log string
        Also write logs to this file
  -verbose
        Enable debug logging
  -help
        Show this help message

Examples:
  # Executive report over synthetic data
  go run ./cmd/sample-report

  # Manager report for manager 2 in January
  go run ./cmd/sample-report -kind manager -manager 2 -from 2025-01-01 -to 2025-01-31

  # Four-week score forecast from a database
  go run ./cmd/sample-report -kind forecast -db postgres://localhost/nakama -periods 4
`)
}
