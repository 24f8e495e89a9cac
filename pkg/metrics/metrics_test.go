package metrics_test

import (
	"testing"

	"github.com/okian/upright/pkg/metrics"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetrics(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("Then the registry is gatherable", func() {
			families, err := metrics.GetRegistry().Gather()
			So(err, ShouldBeNil)
			So(families, ShouldNotBeNil)
		})

		Convey("Then recording helpers do not panic", func() {
			metrics.RecordEventStored()
			metrics.RecordEventRejected("validation")
			metrics.RecordSpineAngle(12.5)
			metrics.RecordFeedPublished()
			metrics.RecordFeedSubscriberDropped()
			metrics.UpdateFeedSubscribers(3)
			metrics.UpdateTotalUsers(1)
			metrics.UpdateTotalSessions(2)
			metrics.UpdateTotalEvents(3)
			metrics.RecordSnapshotWrite(1.5)
			metrics.RecordHTTPRequest("events", "POST", "201")
			metrics.RecordHTTPRequestDuration("events", "POST", "201", 4.2)
			metrics.UpdateSystemMemoryUsage(1024)
			metrics.UpdateSystemGoroutineCount(10)

			families, err := metrics.GetRegistry().Gather()
			So(err, ShouldBeNil)
			So(len(families), ShouldBeGreaterThan, 0)
		})
	})
}
