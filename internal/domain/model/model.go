// Package model contains domain models passed between layers.
package model

import "time"

// Session represents one bounded tracking interval during which posture
// events are collected. EventIDs preserves append order.
type Session struct {
	ID           string     `json:"id"`
	UserID       *string    `json:"user_id"`
	DeviceID     *string    `json:"device_id"`
	StartedAt    time.Time  `json:"started_at"`
	EndedAt      *time.Time `json:"ended_at"`
	TotalSeconds int        `json:"total_seconds"`
	GoodSeconds  int        `json:"good_seconds"`
	MildSeconds  int        `json:"mild_seconds"`
	BadSeconds   int        `json:"bad_seconds"`
	IsPaused     bool       `json:"is_paused"`
	EventIDs     []string   `json:"events"`
}

// Ended reports whether the session reached its terminal state.
func (s *Session) Ended() bool { return s.EndedAt != nil }

// Event is one posture observation. Immutable once stored.
// Angle and NeckTilt are nil when suppressed by low keypoint confidence
// or simply not supplied.
type Event struct {
	ID        string         `json:"id"`
	SessionID string         `json:"session_id"`
	Timestamp string         `json:"timestamp"`
	Label     string         `json:"label"`
	Score     *float64       `json:"score"`
	Angle     *float64       `json:"angle"`
	NeckTilt  *float64       `json:"neck_tilt,omitempty"`
	Keypoints map[string]any `json:"keypoints,omitempty"`
	Metadata  map[string]any `json:"metadata"`
}

// FeedEvent is the live-feed shape: an event tagged with its session.
type FeedEvent struct {
	SessionID string `json:"session_id"`
	Event
}

// Keypoint is a 2D body landmark with detection confidence in [0,1].
type Keypoint struct {
	X          float64
	Y          float64
	Confidence float64
}

// User is an account record owned by the identity layer.
type User struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Email        string         `json:"email"`
	PasswordHash string         `json:"password_hash"`
	CreatedAt    time.Time      `json:"created_at"`
	Settings     map[string]any `json:"settings"`
}

// Calibration stores a per-user baseline angle for a device.
type Calibration struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	DeviceID      *string   `json:"device_id"`
	BaselineAngle *float64  `json:"baseline_angle"`
	CreatedAt     time.Time `json:"created_at"`
}

// DeviceMetric is a health sample reported by a capture device.
type DeviceMetric struct {
	ID           string    `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	BatteryLevel *float64  `json:"battery_level"`
	FPS          *float64  `json:"fps"`
	DeviceID     *string   `json:"device_id"`
}

// Snapshot is the durable on-disk shape of the full in-memory state.
type Snapshot struct {
	Users         map[string]*User        `json:"users"`
	Sessions      map[string]*Session     `json:"sessions"`
	Events        map[string]*Event       `json:"events"`
	Calibrations  map[string]*Calibration `json:"calibrations"`
	DeviceMetrics []*DeviceMetric         `json:"device_metrics"`
}
