package broadcast_test

import (
	"fmt"
	"testing"

	"github.com/okian/upright/internal/adapters/broadcast"
	"github.com/okian/upright/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func feedEvent(label string) model.FeedEvent {
	return model.FeedEvent{SessionID: "s1", Event: model.Event{Label: label}}
}

func TestFeed_HistoryRing(t *testing.T) {
	Convey("Given a feed with default sizing", t, func() {
		feed := broadcast.NewFeed()

		Convey("When publishing 25 events", func() {
			for i := 0; i < 25; i++ {
				feed.Publish(feedEvent(fmt.Sprintf("e%d", i)))
			}

			Convey("Then exactly the last 20 remain, in order", func() {
				history := feed.History()
				So(len(history), ShouldEqual, 20)
				So(history[0].Label, ShouldEqual, "e5")
				So(history[19].Label, ShouldEqual, "e24")
			})
		})
	})
}

func TestFeed_SubscribeReplay(t *testing.T) {
	Convey("Given a feed with buffered history", t, func() {
		feed := broadcast.NewFeed()
		for i := 0; i < 8; i++ {
			feed.Publish(feedEvent(fmt.Sprintf("e%d", i)))
		}

		Convey("When subscribing", func() {
			sub := feed.Subscribe()
			defer feed.Unsubscribe(sub.ID)

			Convey("Then the replay holds the last five events, oldest first", func() {
				So(len(sub.Replay), ShouldEqual, 5)
				So(sub.Replay[0].Label, ShouldEqual, "e3")
				So(sub.Replay[4].Label, ShouldEqual, "e7")
			})

			Convey("And subsequent publishes are delivered live", func() {
				feed.Publish(feedEvent("live"))
				got := <-sub.C
				So(got.Label, ShouldEqual, "live")
			})
		})

		Convey("When subscribing to a feed with little history", func() {
			empty := broadcast.NewFeed()
			empty.Publish(feedEvent("only"))
			sub := empty.Subscribe()

			Convey("Then the replay is just what exists", func() {
				So(len(sub.Replay), ShouldEqual, 1)
			})
		})
	})
}

func TestFeed_SlowSubscriberDropped(t *testing.T) {
	Convey("Given a feed with a tiny subscriber buffer", t, func() {
		feed := broadcast.NewFeed(broadcast.WithSubscriberBuffer(1))
		slow := feed.Subscribe()

		Convey("When publishing past the slow subscriber's capacity", func() {
			feed.Publish(feedEvent("a"))
			feed.Publish(feedEvent("b")) // slow subscriber's channel is full here

			Convey("Then the slow subscriber is dropped and its channel closed", func() {
				So(feed.Subscribers(), ShouldEqual, 0)
				got := <-slow.C // buffered "a" still readable
				So(got.Label, ShouldEqual, "a")
				_, open := <-slow.C
				So(open, ShouldBeFalse)
			})

			Convey("And a fresh subscriber keeps receiving", func() {
				sub := feed.Subscribe()
				feed.Publish(feedEvent("c"))
				got := <-sub.C
				So(got.Label, ShouldEqual, "c")
			})
		})
	})
}

func TestFeed_UnsubscribeAndClose(t *testing.T) {
	Convey("Given a feed with a subscriber", t, func() {
		feed := broadcast.NewFeed()
		sub := feed.Subscribe()

		Convey("When unsubscribing", func() {
			feed.Unsubscribe(sub.ID)

			Convey("Then the channel closes and double unsubscribe is safe", func() {
				_, open := <-sub.C
				So(open, ShouldBeFalse)
				feed.Unsubscribe(sub.ID)
				So(feed.Subscribers(), ShouldEqual, 0)
			})
		})

		Convey("When closing the feed", func() {
			feed.Close()

			Convey("Then subscribers are dropped and publish is a no-op", func() {
				_, open := <-sub.C
				So(open, ShouldBeFalse)
				feed.Publish(feedEvent("ignored"))
				So(feed.History(), ShouldBeEmpty)
			})
		})
	})
}
