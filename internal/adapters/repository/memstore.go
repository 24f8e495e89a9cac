package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/upright/internal/domain/model"
	"github.com/okian/upright/pkg/metrics"
)

// MemStore is the single mutex-guarded implementation of Store.
//
// A single RWMutex covers every collection. That keeps cross-collection
// invariants trivial (every Event.SessionID refers to a live session,
// EventIDs stay duplicate-free and ordered) at the scale this service
// targets. Reads return copies so callers can serialize without holding
// the lock.
type MemStore struct {
	mu sync.RWMutex

	users         map[string]*model.User
	sessions      map[string]*model.Session
	events        map[string]*model.Event
	calibrations  map[string]*model.Calibration
	deviceMetrics []*model.DeviceMetric

	now   func() time.Time
	newID func() string
}

// NewMemStore creates an empty in-memory store.
func NewMemStore(opts ...Option) *MemStore {
	s := &MemStore{
		users:        make(map[string]*model.User),
		sessions:     make(map[string]*model.Session),
		events:       make(map[string]*model.Event),
		calibrations: make(map[string]*model.Calibration),
		now:          time.Now,
		newID:        uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateUser registers a new account.
func (s *MemStore) CreateUser(ctx context.Context, name, email, passwordHash string, settings map[string]any) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			return nil, fmt.Errorf("%w: %s", ErrEmailTaken, email)
		}
	}
	if settings == nil {
		settings = map[string]any{}
	}
	u := &model.User{
		ID:           s.newID(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    s.now().UTC(),
		Settings:     settings,
	}
	s.users[u.ID] = u
	metrics.UpdateTotalUsers(len(s.users))
	return cloneUser(u), nil
}

// User returns the account for id.
func (s *MemStore) User(ctx context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, id)
	}
	return cloneUser(u), nil
}

// UserByEmail returns the account for email.
func (s *MemStore) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, fmt.Errorf("%w: email %s", ErrNotFound, email)
}

// CreateSession starts a new tracking session.
func (s *MemStore) CreateSession(ctx context.Context, userID, deviceID *string) (*model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := &model.Session{
		ID:        s.newID(),
		UserID:    userID,
		DeviceID:  deviceID,
		StartedAt: s.now().UTC(),
		EventIDs:  []string{},
	}
	s.sessions[sess.ID] = sess
	metrics.UpdateTotalSessions(len(s.sessions))
	return cloneSession(sess), nil
}

// Session returns the session for id.
func (s *MemStore) Session(ctx context.Context, id string) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: session %s", ErrNotFound, id)
	}
	return cloneSession(sess), nil
}

// SessionsForUser lists sessions owned by userID.
func (s *MemStore) SessionsForUser(ctx context.Context, userID string) ([]*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []*model.Session{}
	for _, sess := range s.sessions {
		if sess.UserID != nil && *sess.UserID == userID {
			out = append(out, cloneSession(sess))
		}
	}
	return out, nil
}

// SetPaused flips the pause flag.
func (s *MemStore) SetPaused(ctx context.Context, id string, paused bool) (*model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: session %s", ErrNotFound, id)
	}
	if sess.Ended() {
		return nil, fmt.Errorf("%w: session %s", ErrSessionEnded, id)
	}
	sess.IsPaused = paused
	return cloneSession(sess), nil
}

// EndSession moves the session to its terminal state.
func (s *MemStore) EndSession(ctx context.Context, id string, totals Totals) (*model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: session %s", ErrNotFound, id)
	}
	if sess.Ended() {
		return nil, fmt.Errorf("%w: session %s", ErrSessionEnded, id)
	}
	endedAt := s.now().UTC()
	sess.EndedAt = &endedAt
	sess.TotalSeconds = len(sess.EventIDs)
	if totals.TotalSeconds != nil {
		sess.TotalSeconds = *totals.TotalSeconds
	}
	if totals.GoodSeconds != nil {
		sess.GoodSeconds = *totals.GoodSeconds
	}
	if totals.MildSeconds != nil {
		sess.MildSeconds = *totals.MildSeconds
	}
	if totals.BadSeconds != nil {
		sess.BadSeconds = *totals.BadSeconds
	}
	return cloneSession(sess), nil
}

// AppendEvent stores e under a fresh id and links it to its session.
func (s *MemStore) AppendEvent(ctx context.Context, sessionID string, e *model.Event) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return "", fmt.Errorf("%w: session %s", ErrNotFound, sessionID)
	}
	if sess.Ended() {
		return "", fmt.Errorf("%w: session %s", ErrSessionEnded, sessionID)
	}

	stored := cloneEvent(e)
	stored.ID = s.newID()
	stored.SessionID = sessionID
	s.events[stored.ID] = stored
	sess.EventIDs = append(sess.EventIDs, stored.ID)
	metrics.RecordEventStored()
	metrics.UpdateTotalEvents(len(s.events))
	return stored.ID, nil
}

// Event returns the event for id.
func (s *MemStore) Event(ctx context.Context, id string) (*model.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.events[id]
	if !ok {
		return nil, fmt.Errorf("%w: event %s", ErrNotFound, id)
	}
	return cloneEvent(e), nil
}

// EventsForSession returns the session's events in append order.
func (s *MemStore) EventsForSession(ctx context.Context, sessionID string) ([]*model.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: session %s", ErrNotFound, sessionID)
	}
	out := make([]*model.Event, 0, len(sess.EventIDs))
	for _, id := range sess.EventIDs {
		if e, found := s.events[id]; found {
			out = append(out, cloneEvent(e))
		}
	}
	return out, nil
}

// CreateCalibration stores a baseline record for a user.
func (s *MemStore) CreateCalibration(ctx context.Context, userID string, deviceID *string, baselineAngle *float64) (*model.Calibration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := &model.Calibration{
		ID:            s.newID(),
		UserID:        userID,
		DeviceID:      deviceID,
		BaselineAngle: baselineAngle,
		CreatedAt:     s.now().UTC(),
	}
	s.calibrations[c.ID] = c
	return cloneCalibration(c), nil
}

// CalibrationsForUser lists calibrations owned by userID.
func (s *MemStore) CalibrationsForUser(ctx context.Context, userID string) ([]*model.Calibration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []*model.Calibration{}
	for _, c := range s.calibrations {
		if c.UserID == userID {
			out = append(out, cloneCalibration(c))
		}
	}
	return out, nil
}

// AddDeviceMetric appends a device health sample.
func (s *MemStore) AddDeviceMetric(ctx context.Context, m *model.DeviceMetric) (*model.DeviceMetric, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *m
	stored.ID = s.newID()
	stored.Timestamp = s.now().UTC()
	s.deviceMetrics = append(s.deviceMetrics, &stored)
	clone := stored
	return &clone, nil
}

// Snapshot returns a deep copy of the full state for persistence.
func (s *MemStore) Snapshot(ctx context.Context) model.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := model.Snapshot{
		Users:         make(map[string]*model.User, len(s.users)),
		Sessions:      make(map[string]*model.Session, len(s.sessions)),
		Events:        make(map[string]*model.Event, len(s.events)),
		Calibrations:  make(map[string]*model.Calibration, len(s.calibrations)),
		DeviceMetrics: make([]*model.DeviceMetric, 0, len(s.deviceMetrics)),
	}
	for id, u := range s.users {
		snap.Users[id] = cloneUser(u)
	}
	for id, sess := range s.sessions {
		snap.Sessions[id] = cloneSession(sess)
	}
	for id, e := range s.events {
		snap.Events[id] = cloneEvent(e)
	}
	for id, c := range s.calibrations {
		snap.Calibrations[id] = cloneCalibration(c)
	}
	for _, m := range s.deviceMetrics {
		clone := *m
		snap.DeviceMetrics = append(snap.DeviceMetrics, &clone)
	}
	return snap
}

// Restore replaces the full state from a loaded snapshot.
func (s *MemStore) Restore(ctx context.Context, snap model.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users = make(map[string]*model.User)
	s.sessions = make(map[string]*model.Session)
	s.events = make(map[string]*model.Event)
	s.calibrations = make(map[string]*model.Calibration)
	s.deviceMetrics = nil

	for id, u := range snap.Users {
		s.users[id] = cloneUser(u)
	}
	for id, sess := range snap.Sessions {
		s.sessions[id] = cloneSession(sess)
	}
	for id, e := range snap.Events {
		s.events[id] = cloneEvent(e)
	}
	for id, c := range snap.Calibrations {
		s.calibrations[id] = cloneCalibration(c)
	}
	for _, m := range snap.DeviceMetrics {
		clone := *m
		s.deviceMetrics = append(s.deviceMetrics, &clone)
	}
	metrics.UpdateTotalUsers(len(s.users))
	metrics.UpdateTotalSessions(len(s.sessions))
	metrics.UpdateTotalEvents(len(s.events))
}

// Counts reports collection sizes for stats.
func (s *MemStore) Counts(ctx context.Context) (users, sessions, events int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users), len(s.sessions), len(s.events)
}

// Events are immutable once stored, so clones share the nested keypoint
// and metadata payloads; only the record itself and ordered slices are
// copied.
func cloneEvent(e *model.Event) *model.Event {
	clone := *e
	return &clone
}

func cloneSession(sess *model.Session) *model.Session {
	clone := *sess
	clone.EventIDs = append([]string{}, sess.EventIDs...)
	if sess.EndedAt != nil {
		endedAt := *sess.EndedAt
		clone.EndedAt = &endedAt
	}
	return &clone
}

func cloneUser(u *model.User) *model.User {
	clone := *u
	return &clone
}

func cloneCalibration(c *model.Calibration) *model.Calibration {
	clone := *c
	return &clone
}
