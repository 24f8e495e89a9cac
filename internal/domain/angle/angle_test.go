package angle_test

import (
	"errors"
	"testing"

	"github.com/okian/upright/internal/domain/angle"
	. "github.com/smartystreets/goconvey/convey"
)

func kp(x, y, conf float64) map[string]any {
	return map[string]any{"x": x, "y": y, "confidence": conf}
}

func TestCompute(t *testing.T) {
	Convey("Given an upright subject facing the camera", t, func() {
		keypoints := map[string]any{
			"left_shoulder":  kp(0.4, 0.3, 0.9),
			"right_shoulder": kp(0.6, 0.3, 0.9),
			"left_hip":       kp(0.45, 0.6, 0.9),
			"right_hip":      kp(0.55, 0.6, 0.9),
			"nose":           kp(0.5, 0.2, 0.9),
		}

		Convey("When computing angles", func() {
			res, err := angle.Compute(keypoints)

			Convey("Then the spine is vertical and the score averages confidences", func() {
				So(err, ShouldBeNil)
				So(res.Angle, ShouldNotBeNil)
				So(*res.Angle, ShouldEqual, 0.0)
				So(res.NeckTilt, ShouldNotBeNil)
				So(*res.NeckTilt, ShouldEqual, 0.0)
				So(res.Score, ShouldEqual, 0.9)
			})
		})
	})

	Convey("Given a leaning subject", t, func() {
		keypoints := map[string]any{
			"left_shoulder":  kp(0.2, 0.3, 1),
			"right_shoulder": kp(0.4, 0.3, 1),
			"left_hip":       kp(0.5, 0.6, 1),
			"right_hip":      kp(0.7, 0.6, 1),
			"nose":           kp(0.3, 0.2, 1),
		}

		Convey("When computing angles", func() {
			res, err := angle.Compute(keypoints)

			Convey("Then the spine angle is in (0, 90]", func() {
				So(err, ShouldBeNil)
				So(res.Angle, ShouldNotBeNil)
				So(*res.Angle, ShouldBeGreaterThan, 0)
				So(*res.Angle, ShouldBeLessThanOrEqualTo, 90)
			})
		})
	})

	Convey("Given keypoints with low average confidence", t, func() {
		keypoints := map[string]any{
			"left_shoulder":  kp(0.4, 0.3, 0.1),
			"right_shoulder": kp(0.6, 0.3, 0.1),
			"left_hip":       kp(0.45, 0.6, 0.1),
			"right_hip":      kp(0.55, 0.6, 0.1),
			"nose":           kp(0.5, 0.2, 0.1),
		}

		Convey("When computing angles", func() {
			res, err := angle.Compute(keypoints)

			Convey("Then angle and neck tilt are suppressed but the score survives", func() {
				So(err, ShouldBeNil)
				So(res.Angle, ShouldBeNil)
				So(res.NeckTilt, ShouldBeNil)
				So(res.Score, ShouldEqual, 0.1)
			})
		})
	})

	Convey("Given an inverted subject (hips above shoulders)", t, func() {
		keypoints := map[string]any{
			"left_shoulder":  kp(0.4, 0.6, 1),
			"right_shoulder": kp(0.6, 0.6, 1),
			"left_hip":       kp(0.1, 0.3, 1),
			"right_hip":      kp(0.2, 0.3, 1),
		}

		Convey("When computing angles", func() {
			_, err := angle.Compute(keypoints)

			Convey("Then the angle is out of range", func() {
				So(errors.Is(err, angle.ErrAngleOutOfRange), ShouldBeTrue)
			})
		})
	})

	Convey("Given an incomplete keypoint set", t, func() {
		keypoints := map[string]any{
			"left_shoulder": kp(0.4, 0.3, 1),
		}

		Convey("When computing angles", func() {
			_, err := angle.Compute(keypoints)

			Convey("Then the missing keypoint is reported", func() {
				So(errors.Is(err, angle.ErrMissingKeypoint), ShouldBeTrue)
			})
		})
	})

	Convey("Given no nose or head keypoint", t, func() {
		keypoints := map[string]any{
			"left_shoulder":  kp(0.4, 0.3, 1),
			"right_shoulder": kp(0.6, 0.3, 1),
			"left_hip":       kp(0.45, 0.6, 1),
			"right_hip":      kp(0.55, 0.6, 1),
		}

		Convey("When computing angles", func() {
			res, err := angle.Compute(keypoints)

			Convey("Then the nose defaults to the origin with zero confidence", func() {
				So(err, ShouldBeNil)
				// 4 * 1.0 + 0.0 over five keypoints.
				So(res.Score, ShouldEqual, 0.8)
				So(res.Angle, ShouldNotBeNil)
			})
		})
	})
}

func TestParseKeypoint(t *testing.T) {
	Convey("Given the supported keypoint encodings", t, func() {
		Convey("A map with x/y/confidence parses directly", func() {
			p, err := angle.ParseKeypoint(map[string]any{"x": 1.0, "y": 2.0, "confidence": 0.5})
			So(err, ShouldBeNil)
			So(p.X, ShouldEqual, 1.0)
			So(p.Y, ShouldEqual, 2.0)
			So(p.Confidence, ShouldEqual, 0.5)
		})

		Convey("A map without confidence defaults to 1", func() {
			p, err := angle.ParseKeypoint(map[string]any{"x": 1.0, "y": 2.0})
			So(err, ShouldBeNil)
			So(p.Confidence, ShouldEqual, 1.0)
		})

		Convey("A map may use score instead of confidence", func() {
			p, err := angle.ParseKeypoint(map[string]any{"x": 1.0, "y": 2.0, "score": 0.7})
			So(err, ShouldBeNil)
			So(p.Confidence, ShouldEqual, 0.7)
		})

		Convey("A three element sequence carries confidence", func() {
			p, err := angle.ParseKeypoint([]any{1.0, 2.0, 0.4})
			So(err, ShouldBeNil)
			So(p.Confidence, ShouldEqual, 0.4)
		})

		Convey("A two element sequence defaults confidence to 1", func() {
			p, err := angle.ParseKeypoint([]any{1.0, 2.0})
			So(err, ShouldBeNil)
			So(p.Confidence, ShouldEqual, 1.0)
		})

		Convey("A one element sequence is invalid", func() {
			_, err := angle.ParseKeypoint([]any{1.0})
			So(errors.Is(err, angle.ErrInvalidKeypoint), ShouldBeTrue)
		})

		Convey("A scalar is invalid", func() {
			_, err := angle.ParseKeypoint("nope")
			So(errors.Is(err, angle.ErrInvalidKeypoint), ShouldBeTrue)
		})

		Convey("A map missing y is invalid", func() {
			_, err := angle.ParseKeypoint(map[string]any{"x": 1.0})
			So(errors.Is(err, angle.ErrInvalidKeypoint), ShouldBeTrue)
		})
	})
}
