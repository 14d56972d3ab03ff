// Package config defines service configuration and its loading.
//
// Conventions:
//   - New(ctx) returns a Config populated with defaults.
//   - Load(ctx) layers a YAML file and environment variables over the defaults.
//   - Validation failures wrap ErrInvalidConfig.
package config

import (
	"context"
	"fmt"
	"runtime"
	"strings"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// DatabaseURL is a lib/pq connection string. Empty means the in-memory
	// store seeded with synthetic calls.
	DatabaseURL string `koanf:"database_url"`

	// DBMaxOpenConns bounds the database/sql pool.
	DBMaxOpenConns int `koanf:"db_max_open_conns"`

	// SeedCalls and SeedManagers size the synthetic data set for the memory store.
	SeedCalls    int   `koanf:"seed_calls"`
	SeedManagers int   `koanf:"seed_managers"`
	SeedValue    int64 `koanf:"seed_value"`

	// QueueSize bounds the report job queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of report workers.
	WorkerCount int `koanf:"worker_count"`

	// JobTimeoutMS bounds how long an HTTP request waits for its report.
	JobTimeoutMS int `koanf:"job_timeout_ms"`

	// Metrics naming. Buckets are latency histogram bounds in milliseconds.
	MetricsNamespace   string            `koanf:"metrics_namespace"`
	MetricsSubsystem   string            `koanf:"metrics_subsystem"`
	MetricsBucketsMS   []float64         `koanf:"metrics_buckets_ms"`
	MetricsConstLabels map[string]string `koanf:"metrics_const_labels"`

	// Analytics thresholds.
	WeakScoreThreshold     float64 `koanf:"weak_score_threshold"`
	WeakMinCalls           int     `koanf:"weak_min_calls"`
	RiskWeakThreshold      float64 `koanf:"risk_weak_threshold"`
	CoachingScoreThreshold float64 `koanf:"coaching_score_threshold"`
	AnomalyThreshold       float64 `koanf:"anomaly_threshold"`
	MovingAveragePeriod    int     `koanf:"moving_average_period"`
	RecentCallsLimit       int     `koanf:"recent_calls_limit"`

	// ForestTrees, ForestSeed and ForestMaxDepth configure the
	// feature-importance ensemble. A zero depth grows trees to pure leaves.
	ForestTrees    int   `koanf:"forest_trees"`
	ForestSeed     int64 `koanf:"forest_seed"`
	ForestMaxDepth int   `koanf:"forest_max_depth"`
}

// New creates a Config with defaults. The context is reserved for sources
// that need it and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:               "info",
		LogFormat:              "text",
		Addr:                   ":9080",
		DBMaxOpenConns:         10,
		SeedCalls:              600,
		SeedManagers:           6,
		SeedValue:              7,
		QueueSize:              256,
		WorkerCount:            runtime.NumCPU(),
		JobTimeoutMS:           30_000,
		MetricsNamespace:       "nakama",
		MetricsSubsystem:       "analytics",
		WeakScoreThreshold:     70,
		WeakMinCalls:           10,
		RiskWeakThreshold:      60,
		CoachingScoreThreshold: 70,
		AnomalyThreshold:       2.0,
		MovingAveragePeriod:    7,
		RecentCallsLimit:       10,
		ForestTrees:            100,
		ForestSeed:             42,
	}
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.MetricsNamespace == "":
		return fmt.Errorf("%w: metrics_namespace must not be empty", ErrInvalidConfig)
	case c.QueueSize <= 0:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.WorkerCount <= 0:
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	case c.JobTimeoutMS <= 0:
		return fmt.Errorf("%w: job_timeout_ms must be positive", ErrInvalidConfig)
	case c.MovingAveragePeriod <= 0:
		return fmt.Errorf("%w: moving_average_period must be positive", ErrInvalidConfig)
	case c.ForestTrees <= 0:
		return fmt.Errorf("%w: forest_trees must be positive", ErrInvalidConfig)
	case c.ForestMaxDepth < 0:
		return fmt.Errorf("%w: forest_max_depth must not be negative", ErrInvalidConfig)
	case c.DatabaseURL == "" && c.SeedCalls < 0:
		return fmt.Errorf("%w: seed_calls must not be negative", ErrInvalidConfig)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	return nil
}
