package logger_test

import (
	"context"
	"testing"

	"github.com/okian/upright/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLogger(t *testing.T) {
	Convey("Given the global logger", t, func() {
		So(logger.Init(), ShouldBeNil)
		log := logger.Get()

		Convey("Then it is usable and nameable", func() {
			So(log, ShouldNotBeNil)
			named := log.Named("test")
			So(named, ShouldNotBeNil)

			// Smoke: none of these should panic.
			ctx := context.Background()
			named.Debug(ctx, "debug message", logger.String("k", "v"))
			named.Info(ctx, "info message", logger.Int("n", 1))
			named.Warn(ctx, "warn message", logger.Bool("flag", true))
			named.Error(ctx, "error message", logger.Any("data", map[string]int{"a": 1}))
		})

		Convey("Then level parsing accepts known names", func() {
			So(logger.SetLevelString("debug"), ShouldBeNil)
			So(logger.SetLevelString("INFO"), ShouldBeNil)
			So(logger.SetLevelString("warning"), ShouldBeNil)
			So(logger.SetLevelString("error"), ShouldBeNil)
			So(logger.SetLevelString(""), ShouldBeNil)
			So(logger.SetLevelString("nope"), ShouldNotBeNil)
		})
	})
}
