package config_test

import (
	"context"
	"errors"
	"runtime"
	"testing"

	"github.com/eugene-kuroles/nakama-proj/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.QueueSize, convey.ShouldEqual, 256)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.WeakScoreThreshold, convey.ShouldEqual, 70.0)
			convey.So(cfg.RiskWeakThreshold, convey.ShouldEqual, 60.0)
			convey.So(cfg.ForestTrees, convey.ShouldEqual, 100)
			convey.So(cfg.ForestSeed, convey.ShouldEqual, int64(42))
			convey.So(cfg.ForestMaxDepth, convey.ShouldEqual, 0)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("When a bound is broken", func() {
			cfg.MovingAveragePeriod = 0

			convey.Convey("Then validation fails with ErrInvalidConfig", func() {
				err := cfg.Validate()
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "moving_average_period")
			})
		})

		convey.Convey("When the forest depth is negative", func() {
			cfg.ForestMaxDepth = -1
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When the log format is unknown", func() {
			cfg.LogFormat = "xml"
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}
