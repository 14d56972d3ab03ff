package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/eugene-kuroles/nakama-proj/internal/samplereport"
)

func main() {
	defaults := samplereport.DefaultConfig()
	var (
		kind        = flag.String("kind", defaults.Kind, "Report kind")
		dbURL       = flag.String("db", os.Getenv("NAKAMA_DATABASE_URL"), "Postgres DSN (empty uses synthetic calls)")
		projectID   = flag.Int64("project", 0, "Project id filter")
		managerID   = flag.Int64("manager", 0, "Manager id for manager-scoped reports")
		managerIDs  = flag.String("managers", "", "Comma-separated manager ids for manager_comparison")
		dateFrom    = flag.String("from", "", "Inclusive start date, YYYY-MM-DD")
		dateTo      = flag.String("to", "", "Inclusive end date, YYYY-MM-DD")
		granularity = flag.String("granularity", "", "day, week or month")
		metric      = flag.String("metric", "", "Forecast metric: score or calls_count")
		periods     = flag.Int("periods", 0, "Forecast periods")
		daysAhead   = flag.Int("days", 0, "Trajectory horizon in days")
		weeks       = flag.Int("weeks", 0, "Weekly digest length in weeks")
		calls       = flag.Int("calls", defaults.Calls, "Synthetic call count")
		managers    = flag.Int("managers-count", defaults.Managers, "Synthetic manager count")
		seed        = flag.Int64("seed", defaults.Seed, "Synthetic data seed")
		timeout     = flag.Duration("timeout", defaults.Timeout, "Whole run timeout")
		outputFile  = flag.String("output", "", "Write the report to this file instead of stdout")
		logFile     = flag.String("log", "", "Also write logs to this file")
		verbose     = flag.Bool("verbose", false, "Enable verbose logging")
		help        = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		samplereport.ShowHelp(os.Stdout)
		return
	}

	// Setup logging
	closeLog, err := samplereport.SetupLogging(*logFile, *verbose)
	if err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = closeLog() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	config := &samplereport.Config{
		Kind:        *kind,
		DatabaseURL: *dbURL,
		ProjectID:   *projectID,
		ManagerID:   *managerID,
		ManagerIDs:  *managerIDs,
		DateFrom:    *dateFrom,
		DateTo:      *dateTo,
		Granularity: *granularity,
		Metric:      *metric,
		Periods:     *periods,
		DaysAhead:   *daysAhead,
		Weeks:       *weeks,
		Calls:       *calls,
		Managers:    *managers,
		Seed:        *seed,
		Timeout:     *timeout,
		OutputFile:  *outputFile,
		LogFile:     *logFile,
		Verbose:     *verbose,
	}

	if err := samplereport.Run(ctx, config, os.Stdout); err != nil {
		os.Stderr.WriteString("Report failed: " + err.Error() + "\n")
		_ = closeLog()
		stop()
		os.Exit(1)
	}
}
