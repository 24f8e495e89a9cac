package ratelimit_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/upright/internal/domain/ratelimit"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLimiter_Admit(t *testing.T) {
	Convey("Given a limiter with a controllable clock", t, func() {
		now := time.Unix(1000, 0)
		limiter := ratelimit.NewLimiter(ratelimit.WithClock(func() time.Time { return now }))

		Convey("When ten single events arrive within one second", func() {
			var errs []error
			for i := 0; i < 10; i++ {
				errs = append(errs, limiter.Admit("s1", 1))
				now = now.Add(50 * time.Millisecond)
			}

			Convey("Then all are admitted", func() {
				for _, err := range errs {
					So(err, ShouldBeNil)
				}
			})

			Convey("And the eleventh within the same second is rejected", func() {
				err := limiter.Admit("s1", 1)
				So(errors.Is(err, ratelimit.ErrRateExceeded), ShouldBeTrue)
			})

			Convey("And after the window passes a new event is admitted", func() {
				now = now.Add(1100 * time.Millisecond)
				So(limiter.Admit("s1", 1), ShouldBeNil)
			})
		})

		Convey("When a batch would overflow the window", func() {
			So(limiter.Admit("s1", 6), ShouldBeNil)
			err := limiter.Admit("s1", 6)

			Convey("Then the whole batch is rejected, not partially admitted", func() {
				So(errors.Is(err, ratelimit.ErrRateExceeded), ShouldBeTrue)
				So(limiter.WindowLen("s1"), ShouldEqual, 6)
			})

			Convey("And a smaller batch still fits", func() {
				So(limiter.Admit("s1", 4), ShouldBeNil)
			})
		})

		Convey("When different sessions submit concurrently", func() {
			So(limiter.Admit("a", 10), ShouldBeNil)

			Convey("Then other sessions have independent windows", func() {
				So(limiter.Admit("b", 10), ShouldBeNil)
				So(limiter.Sessions(), ShouldEqual, 2)
			})
		})
	})

	Convey("Given a limiter with a widened allowance and a tight cap", t, func() {
		now := time.Unix(2000, 0)
		limiter := ratelimit.NewLimiter(
			ratelimit.WithClock(func() time.Time { return now }),
			ratelimit.WithMaxPerWindow(50),
			ratelimit.WithWindowCap(20),
		)

		Convey("When more admissions land than the cap can store", func() {
			So(limiter.Admit("s1", 30), ShouldBeNil)

			Convey("Then the stored window never exceeds its capacity", func() {
				So(limiter.WindowLen("s1"), ShouldBeLessThanOrEqualTo, 20)
			})
		})
	})
}
