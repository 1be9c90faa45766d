package config_test

import (
	"context"
	"errors"
	"runtime"
	"testing"

	"github.com/pavelchuchma/vkct/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.CategoryThreshold, convey.ShouldEqual, 0.8)
			convey.So(cfg.HistoryThreshold, convey.ShouldEqual, 0.9)
			convey.So(cfg.MaxYearGap, convey.ShouldEqual, 5)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Then the output path defaults to the season name", func() {
			convey.So(cfg.OutputPath(2024), convey.ShouldEqual, "vysledky2024.xlsx")
			cfg.Output = "out.xlsx"
			convey.So(cfg.OutputPath(2024), convey.ShouldEqual, "out.xlsx")
		})

		convey.Convey("When a threshold is out of range", func() {
			cfg.CategoryThreshold = 1.5
			err := cfg.Validate()

			convey.Convey("Then validation fails with ErrInvalidConfig", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}
