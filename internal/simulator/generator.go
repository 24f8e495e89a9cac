package simulator

import (
	"crypto/rand"
	"math"
	"math/big"
	"time"
)

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000
	postureCaseDivisor = 6
)

// Posture distribution ranges, in degrees from vertical.
const (
	uprightMin   = 0.0
	uprightRange = 8.0
	mildMin      = 10.0
	mildRange    = 14.0
	heavyMin     = 25.0
	heavyRange   = 35.0
	wideMin      = 0.0
	wideRange    = 60.0
)

// Posture case indices. Upright dominates the distribution the way a
// real desk session does.
const (
	caseUprightA = 0
	caseUprightB = 1
	caseUprightC = 2
	caseMild     = 3
	caseHeavy    = 4
	caseWide     = 5
)

// Label thresholds matching the service's scoring buckets.
const (
	goodMaxAngle = 10.0
	mildMaxAngle = 25.0
)

// Body geometry for synthetic keypoints, in normalized image space.
const (
	hipMidX       = 0.5
	hipMidY       = 0.65
	torsoLength   = 0.3
	shoulderSpan  = 0.1
	hipSpan       = 0.09
	noseRise      = 0.12
	baseConf      = 0.75
	confJitterMax = 0.25
)

// randFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func randFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// sampleAngle draws a spine angle from the posture distribution.
func sampleAngle() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(postureCaseDivisor))
	switch n.Int64() {
	case caseUprightA, caseUprightB, caseUprightC:
		return uprightMin + randFloat()*uprightRange
	case caseMild:
		return mildMin + randFloat()*mildRange
	case caseHeavy:
		return heavyMin + randFloat()*heavyRange
	case caseWide:
		return wideMin + randFloat()*wideRange
	default:
		return wideMin + randFloat()*wideRange
	}
}

func labelFor(angle float64) string {
	switch {
	case angle <= goodMaxAngle:
		return "good"
	case angle <= mildMaxAngle:
		return "mild"
	default:
		return "bad"
	}
}

// generateEvent builds one keypoint event whose geometry reproduces a
// sampled spine angle.
func generateEvent() map[string]any {
	angle := sampleAngle()
	rad := angle * math.Pi / 180

	shoulderMidX := hipMidX - torsoLength*math.Sin(rad)
	shoulderMidY := hipMidY - torsoLength*math.Cos(rad)
	conf := baseConf + randFloat()*confJitterMax

	kp := func(x, y float64) map[string]any {
		return map[string]any{"x": x, "y": y, "confidence": conf}
	}

	return map[string]any{
		"label":     labelFor(angle),
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"keypoints": map[string]any{
			"left_shoulder":  kp(shoulderMidX-shoulderSpan, shoulderMidY),
			"right_shoulder": kp(shoulderMidX+shoulderSpan, shoulderMidY),
			"left_hip":       kp(hipMidX-hipSpan, hipMidY),
			"right_hip":      kp(hipMidX+hipSpan, hipMidY),
			"nose":           kp(shoulderMidX, shoulderMidY-noseRise),
		},
	}
}
