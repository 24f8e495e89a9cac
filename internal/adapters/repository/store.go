// Package repository defines the posture state store interface and errors.
package repository

import (
	"context"

	"github.com/okian/upright/internal/domain/model"
)

// Totals carries caller-supplied second buckets for ending a session.
// Nil fields fall back to defaults: TotalSeconds to the session's event
// count, the rest to zero.
type Totals struct {
	TotalSeconds *int
	GoodSeconds  *int
	MildSeconds  *int
	BadSeconds   *int
}

// Store provides read/write access to the full in-memory state: users,
// sessions, the append-only event log, calibrations and device metrics.
//
// All returned records are copies; mutations go through Store methods
// only. Once AppendEvent returns, the event is visible to subsequent
// EventsForSession calls.
type Store interface {
	// CreateUser registers a new account. Returns ErrEmailTaken when the
	// email is already registered.
	CreateUser(ctx context.Context, name, email, passwordHash string, settings map[string]any) (*model.User, error)
	// User returns the account for id, or ErrNotFound.
	User(ctx context.Context, id string) (*model.User, error)
	// UserByEmail returns the account for email, or ErrNotFound.
	UserByEmail(ctx context.Context, email string) (*model.User, error)

	// CreateSession starts a new tracking session. Both owner and device
	// are optional.
	CreateSession(ctx context.Context, userID, deviceID *string) (*model.Session, error)
	// Session returns the session for id, or ErrNotFound.
	Session(ctx context.Context, id string) (*model.Session, error)
	// SessionsForUser lists sessions owned by userID.
	SessionsForUser(ctx context.Context, userID string) ([]*model.Session, error)
	// SetPaused flips the pause flag. Idempotent. Returns ErrSessionEnded
	// for terminal sessions.
	SetPaused(ctx context.Context, id string, paused bool) (*model.Session, error)
	// EndSession moves the session to its terminal state and applies the
	// second buckets. Returns ErrSessionEnded when already ended.
	EndSession(ctx context.Context, id string, totals Totals) (*model.Session, error)

	// AppendEvent stores e under a freshly generated id and links it to
	// its session in append order. Pause state is enforced at the
	// pipeline entry, not here; terminal sessions reject the append.
	AppendEvent(ctx context.Context, sessionID string, e *model.Event) (string, error)
	// Event returns the event for id, or ErrNotFound.
	Event(ctx context.Context, id string) (*model.Event, error)
	// EventsForSession returns the session's events in append order.
	EventsForSession(ctx context.Context, sessionID string) ([]*model.Event, error)

	// CreateCalibration stores a baseline record for a user.
	CreateCalibration(ctx context.Context, userID string, deviceID *string, baselineAngle *float64) (*model.Calibration, error)
	// CalibrationsForUser lists calibrations owned by userID.
	CalibrationsForUser(ctx context.Context, userID string) ([]*model.Calibration, error)

	// AddDeviceMetric appends a device health sample.
	AddDeviceMetric(ctx context.Context, m *model.DeviceMetric) (*model.DeviceMetric, error)

	// Snapshot returns a deep copy of the full state for persistence.
	Snapshot(ctx context.Context) model.Snapshot
	// Restore replaces the full state from a loaded snapshot.
	Restore(ctx context.Context, snap model.Snapshot)

	// Counts reports collection sizes for stats.
	Counts(ctx context.Context) (users, sessions, events int)
}
