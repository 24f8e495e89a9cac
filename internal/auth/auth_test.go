package auth_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/upright/internal/auth"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManager_Passwords(t *testing.T) {
	Convey("Given a manager with a cheap test cost", t, func() {
		mgr := auth.NewManager("secret", auth.WithBcryptCost(4))

		Convey("When hashing a password", func() {
			hash, err := mgr.HashPassword("hunter2")
			So(err, ShouldBeNil)

			Convey("Then the right password verifies and a wrong one does not", func() {
				So(mgr.CheckPassword("hunter2", hash), ShouldBeTrue)
				So(mgr.CheckPassword("hunter3", hash), ShouldBeFalse)
				So(mgr.CheckPassword("hunter2", "not-a-hash"), ShouldBeFalse)
			})
		})
	})
}

func TestManager_Tokens(t *testing.T) {
	Convey("Given a manager with a controllable clock", t, func() {
		now := time.Unix(1_700_000_000, 0)
		mgr := auth.NewManager("secret",
			auth.WithClock(func() time.Time { return now }),
			auth.WithTokenTTL(time.Hour),
		)

		Convey("When minting a token", func() {
			token, err := mgr.GenerateToken("user-1")
			So(err, ShouldBeNil)

			Convey("Then it authenticates back to the same user", func() {
				userID, err := mgr.Authenticate(token)
				So(err, ShouldBeNil)
				So(userID, ShouldEqual, "user-1")
			})

			Convey("And it expires after its TTL", func() {
				now = now.Add(2 * time.Hour)
				_, err := mgr.Authenticate(token)
				So(errors.Is(err, auth.ErrTokenExpired), ShouldBeTrue)
			})

			Convey("And a different secret rejects it", func() {
				other := auth.NewManager("other-secret")
				_, err := other.Authenticate(token)
				So(errors.Is(err, auth.ErrInvalidToken), ShouldBeTrue)
			})
		})

		Convey("When authenticating garbage", func() {
			_, err := mgr.Authenticate("not.a.token")
			So(errors.Is(err, auth.ErrInvalidToken), ShouldBeTrue)
		})

		Convey("When the token is empty", func() {
			_, err := mgr.Authenticate("")
			So(errors.Is(err, auth.ErrMissingToken), ShouldBeTrue)
		})
	})
}
