package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/eugene-kuroles/nakama-proj/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.DatabaseURL, convey.ShouldBeEmpty)
				convey.So(cfg.SeedCalls, convey.ShouldEqual, 600)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("NAKAMA_ADDR", ":8080")
			_ = os.Setenv("NAKAMA_QUEUE_SIZE", "32")
			_ = os.Setenv("NAKAMA_WORKER_COUNT", "3")
			_ = os.Setenv("NAKAMA_ANOMALY_THRESHOLD", "2.5")
			_ = os.Setenv("NAKAMA_DATABASE_URL", "postgres://u:p@localhost/calls?sslmode=disable")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 32)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 3)
				convey.So(cfg.AnomalyThreshold, convey.ShouldEqual, 2.5)
				convey.So(cfg.DatabaseURL, convey.ShouldStartWith, "postgres://")
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			tmpFile := createTempConfigFile(`
# thresholds
addr: ":9090"
queue_size: 64
weak_score_threshold: 65
forest_trees: 20
metrics_buckets_ms: [5, 50, 500]
metrics_const_labels:
  region: eu
`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("NAKAMA_CONFIG", tmpFile)
			_ = os.Setenv("NAKAMA_ADDR", ":8081")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8081")                // env
				convey.So(cfg.QueueSize, convey.ShouldEqual, 64)                // file
				convey.So(cfg.WeakScoreThreshold, convey.ShouldEqual, 65.0)     // file
				convey.So(cfg.ForestTrees, convey.ShouldEqual, 20)              // file
				convey.So(cfg.MetricsBucketsMS, convey.ShouldResemble, []float64{5, 50, 500})
				convey.So(cfg.MetricsConstLabels["region"], convey.ShouldEqual, "eu")
				convey.So(cfg.MetricsNamespace, convey.ShouldEqual, "nakama") // default
				convey.So(cfg.CoachingScoreThreshold, convey.ShouldEqual, 70.0) // default
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("NAKAMA_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("NAKAMA_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("NAKAMA_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with a zero worker count", func() {
			_ = os.Setenv("NAKAMA_WORKER_COUNT", "0")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("NAKAMA_QUEUE_SIZE", "invalid")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func clearConfigEnvVars() {
	envVars := []string{
		"NAKAMA_CONFIG",
		"NAKAMA_ADDR",
		"NAKAMA_QUEUE_SIZE",
		"NAKAMA_WORKER_COUNT",
		"NAKAMA_ANOMALY_THRESHOLD",
		"NAKAMA_DATABASE_URL",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "nakama-config-*.yaml")
	if err != nil {
		panic(err)
	}
	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}
	if err := tmpFile.Close(); err != nil {
		panic(err)
	}
	return tmpFile.Name()
}
