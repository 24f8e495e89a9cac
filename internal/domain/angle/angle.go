// Package angle derives spine and neck geometry from 2D body keypoints.
//
// Computation is pure and deterministic: no side effects, no locking
// required. All numeric outputs are rounded to two decimal places.
package angle

import (
	"fmt"
	"math"

	"github.com/okian/upright/internal/domain/model"
)

// Computation constants.
const (
	// epsilon stabilizes the neck tilt denominator when shoulders and
	// hips collapse onto the same horizontal line.
	epsilon = 1e-6

	// minConfidence is the average-confidence floor below which angle
	// outputs are suppressed while the score is still reported.
	minConfidence = 0.3

	maxSpineAngle = 90.0
)

// Result carries the derived posture geometry for one keypoint set.
// Angle and NeckTilt are nil when the average keypoint confidence is
// below minConfidence.
type Result struct {
	Angle    *float64
	NeckTilt *float64
	Score    float64
}

// Compute derives the spine angle (degrees from vertical), neck tilt and
// confidence score from a named keypoint map. Required keys are
// left_shoulder, right_shoulder, left_hip and right_hip; nose (or head)
// defaults to the origin with zero confidence.
func Compute(keypoints map[string]any) (Result, error) {
	ls, err := requireKeypoint(keypoints, "left_shoulder")
	if err != nil {
		return Result{}, err
	}
	rs, err := requireKeypoint(keypoints, "right_shoulder")
	if err != nil {
		return Result{}, err
	}
	lh, err := requireKeypoint(keypoints, "left_hip")
	if err != nil {
		return Result{}, err
	}
	rh, err := requireKeypoint(keypoints, "right_hip")
	if err != nil {
		return Result{}, err
	}
	nose, err := optionalKeypoint(keypoints, "nose", "head")
	if err != nil {
		return Result{}, err
	}

	avgConf := (ls.Confidence + rs.Confidence + lh.Confidence + rh.Confidence + nose.Confidence) / 5

	shoulderMidX := (ls.X + rs.X) / 2
	shoulderMidY := (ls.Y + rs.Y) / 2
	hipMidX := (lh.X + rh.X) / 2
	hipMidY := (lh.Y + rh.Y) / 2

	dx := hipMidX - shoulderMidX
	dy := hipMidY - shoulderMidY

	// Spine angle measured from vertical.
	spine := math.Abs(degrees(math.Atan2(dx, dy)))
	if spine > maxSpineAngle {
		return Result{}, fmt.Errorf("%w: %.2f", ErrAngleOutOfRange, spine)
	}

	neck := degrees(math.Atan2(nose.X-shoulderMidX, math.Abs(dy)+epsilon))

	res := Result{Score: round2(avgConf)}
	if avgConf >= minConfidence {
		a := round2(spine)
		n := round2(neck)
		res.Angle = &a
		res.NeckTilt = &n
	}
	return res, nil
}

// ParseKeypoint accepts either a map with x/y/confidence fields or an
// ordered 2-3 element sequence. Confidence defaults to 1 when absent.
func ParseKeypoint(raw any) (model.Keypoint, error) {
	switch v := raw.(type) {
	case map[string]any:
		x, okX := numeric(firstOf(v, "x", "X"))
		y, okY := numeric(firstOf(v, "y", "Y"))
		if !okX || !okY {
			return model.Keypoint{}, fmt.Errorf("%w: keypoints must provide x and y", ErrInvalidKeypoint)
		}
		conf := 1.0
		if rawConf, present := lookup(v, "confidence", "score"); present {
			conf, _ = numeric(rawConf)
		}
		return model.Keypoint{X: x, Y: y, Confidence: conf}, nil
	case []any:
		if len(v) < 2 {
			return model.Keypoint{}, fmt.Errorf("%w: sequence needs at least x and y", ErrInvalidKeypoint)
		}
		x, okX := numeric(v[0])
		y, okY := numeric(v[1])
		if !okX || !okY {
			return model.Keypoint{}, fmt.Errorf("%w: keypoints must provide x and y", ErrInvalidKeypoint)
		}
		conf := 1.0
		if len(v) > 2 {
			conf, _ = numeric(v[2])
		}
		return model.Keypoint{X: x, Y: y, Confidence: conf}, nil
	default:
		return model.Keypoint{}, fmt.Errorf("%w: unsupported keypoint shape %T", ErrInvalidKeypoint, raw)
	}
}

func requireKeypoint(keypoints map[string]any, name string) (model.Keypoint, error) {
	raw, ok := keypoints[name]
	if !ok {
		return model.Keypoint{}, fmt.Errorf("%w: %s", ErrMissingKeypoint, name)
	}
	kp, err := ParseKeypoint(raw)
	if err != nil {
		return model.Keypoint{}, fmt.Errorf("%s: %w", name, err)
	}
	return kp, nil
}

func optionalKeypoint(keypoints map[string]any, names ...string) (model.Keypoint, error) {
	for _, name := range names {
		if raw, ok := keypoints[name]; ok {
			kp, err := ParseKeypoint(raw)
			if err != nil {
				return model.Keypoint{}, fmt.Errorf("%s: %w", name, err)
			}
			return kp, nil
		}
	}
	return model.Keypoint{X: 0, Y: 0, Confidence: 0}, nil
}

func firstOf(m map[string]any, keys ...string) any {
	v, _ := lookup(m, keys...)
	return v
}

func lookup(m map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			return v, true
		}
	}
	return nil, false
}

// numeric coerces JSON-decoded numbers. Decoded JSON yields float64;
// int is accepted for values built programmatically.
func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

func degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
