package simulator_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/okian/upright/internal/adapters/http/api"
	"github.com/okian/upright/internal/app"
	"github.com/okian/upright/internal/auth"
	"github.com/okian/upright/internal/config"
	"github.com/okian/upright/internal/simulator"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRunnerAgainstService(t *testing.T) {
	ctx := context.Background()

	Convey("Given a live service", t, func() {
		cfg := config.New()
		cfg.PersistSnapshots = false
		svc := app.New(cfg, app.WithAuthManager(auth.NewManager("test-secret", auth.WithBcryptCost(4))))
		mux := http.NewServeMux()
		api.NewServer(svc).Register(ctx, mux)
		ts := httptest.NewServer(mux)
		defer ts.Close()

		Convey("When the simulator streams a short run", func() {
			runner := simulator.NewRunner(simulator.Config{
				BaseURL:   ts.URL,
				Events:    12,
				BatchSize: 4,
				Interval:  time.Millisecond,
			})
			stats, err := runner.Run(ctx)

			Convey("Then every event lands and the session ends", func() {
				So(err, ShouldBeNil)
				So(stats.EventsSubmitted, ShouldEqual, 12)

				events, err := svc.SessionEvents(ctx, stats.SessionID)
				So(err, ShouldBeNil)
				So(events, ShouldHaveLength, 12)

				sess, err := svc.Session(ctx, stats.SessionID)
				So(err, ShouldBeNil)
				So(sess.Ended(), ShouldBeTrue)
			})

			Convey("Then generated events carry plausible geometry", func() {
				events, err := svc.SessionEvents(ctx, stats.SessionID)
				So(err, ShouldBeNil)
				for _, ev := range events {
					So(ev.Angle, ShouldNotBeNil)
					So(*ev.Angle, ShouldBeBetweenOrEqual, 0, 90)
					So(ev.Label, ShouldBeIn, "good", "mild", "bad")
				}
			})
		})
	})
}
