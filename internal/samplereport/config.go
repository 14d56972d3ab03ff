package samplereport

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/eugene-kuroles/nakama-proj/internal/domain/model"
	"github.com/eugene-kuroles/nakama-proj/internal/testcalls"
)

const dateLayout = "2006-01-02"

// Config holds configuration for a sample report run
type Config struct {
	Kind        string        // Report kind, e.g. "executive"
	DatabaseURL string        // Postgres DSN; empty means synthetic calls
	ProjectID   int64         // Project filter, 0 for all
	ManagerID   int64         // Subject of manager-scoped reports
	ManagerIDs  string        // Comma-separated ids for manager_comparison
	DateFrom    string        // Inclusive lower bound, YYYY-MM-DD
	DateTo      string        // Inclusive upper bound, YYYY-MM-DD
	Granularity string        // day, week or month
	Metric      string        // Forecast metric
	Periods     int           // Forecast periods
	DaysAhead   int           // Trajectory horizon
	Weeks       int           // Weekly digest length
	Calls       int           // Synthetic call count
	Managers    int           // Synthetic manager count
	Seed        int64         // Synthetic data seed
	Timeout     time.Duration // Whole run timeout
	OutputFile  string        // Report file; empty writes to stdout
	LogFile     string        // Optional log file
	Verbose     bool          // Enable debug logging
}

// DefaultConfig returns an executive report over the stock synthetic data.
func DefaultConfig() *Config {
	seed := testcalls.DefaultConfig()
	return &Config{
		Kind:     string(model.ReportExecutive),
		Calls:    seed.Calls,
		Managers: seed.Managers,
		Seed:     seed.Seed,
		Timeout:  time.Minute,
	}
}

// Stats holds run statistics
type Stats struct {
	CallsLoaded  int
	BytesWritten int
	StartTime    time.Time
	EndTime      time.Time
	Duration     time.Duration
}

// Request turns the flags into a report request.
func (c *Config) Request() (model.ReportRequest, error) {
	kind := model.ReportKind(strings.TrimSpace(c.Kind))
	if !lo.Contains(Kinds(), kind) {
		return model.ReportRequest{}, fmt.Errorf("%w: %q", ErrUnknownKind, c.Kind)
	}

	from, err := parseDate(c.DateFrom)
	if err != nil {
		return model.ReportRequest{}, fmt.Errorf("invalid -from: %w", err)
	}
	to, err := parseDate(c.DateTo)
	if err != nil {
		return model.ReportRequest{}, fmt.Errorf("invalid -to: %w", err)
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return model.ReportRequest{}, fmt.Errorf("%w: -to is before -from", ErrInvalidRange)
	}

	ids, err := parseIDs(c.ManagerIDs)
	if err != nil {
		return model.ReportRequest{}, err
	}

	return model.ReportRequest{
		Kind:        kind,
		Query:       model.CallQuery{ProjectID: c.ProjectID, Range: model.DateRange{From: from, To: to}},
		ManagerID:   c.ManagerID,
		ManagerIDs:  ids,
		Granularity: c.Granularity,
		Metric:      c.Metric,
		Periods:     c.Periods,
		DaysAhead:   c.DaysAhead,
		Weeks:       c.Weeks,
	}, nil
}

// SeedConfig sizes the synthetic data set used when no database is set.
func (c *Config) SeedConfig() testcalls.Config {
	seed := testcalls.DefaultConfig()
	if c.Calls > 0 {
		seed.Calls = c.Calls
	}
	if c.Managers > 0 {
		seed.Managers = c.Managers
	}
	seed.Seed = c.Seed
	if c.ProjectID > 0 {
		seed.ProjectID = c.ProjectID
	}
	return seed
}

// Kinds lists every report kind the tool can build.
func Kinds() []model.ReportKind {
	return []model.ReportKind{
		model.ReportExecutive,
		model.ReportTeam,
		model.ReportManager,
		model.ReportQuickSummary,
		model.ReportCriteriaAnalysis,
		model.ReportWeeklyDigest,
		model.ReportManagerComparison,
		model.ReportProgress,
		model.ReportComparisonWithTeam,
		model.ReportForecast,
		model.ReportFeatureImportance,
		model.ReportTrajectory,
	}
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(dateLayout, s)
}

func parseIDs(s string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid manager id %q", part)
		}
		ids = append(ids, id)
	}
	return lo.Uniq(ids), nil
}
