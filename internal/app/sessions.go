package app

import (
	"context"

	"github.com/okian/upright/internal/adapters/repository"
	"github.com/okian/upright/internal/domain/model"
	"github.com/okian/upright/pkg/logger"
)

// StartSession opens a tracking session. userID is nil for anonymous
// callers.
func (s *Service) StartSession(ctx context.Context, userID *string, body map[string]any) (*model.Session, error) {
	if err := s.guard.Check(body); err != nil {
		return nil, err
	}
	var deviceID *string
	if d := stringField(body, "device_id"); d != "" {
		deviceID = &d
	}
	sess, err := s.store.CreateSession(ctx, userID, deviceID)
	if err != nil {
		return nil, err
	}
	s.writer.Trigger()
	s.log.Info(ctx, "session started", logger.String("session_id", sess.ID))
	return sess, nil
}

// Session returns the session for id.
func (s *Service) Session(ctx context.Context, id string) (*model.Session, error) {
	return s.store.Session(ctx, id)
}

// SessionsForUser lists the caller's sessions.
func (s *Service) SessionsForUser(ctx context.Context, userID string) ([]*model.Session, error) {
	return s.store.SessionsForUser(ctx, userID)
}

// PauseSession suspends event intake for the session. Idempotent.
func (s *Service) PauseSession(ctx context.Context, id string) (*model.Session, error) {
	return s.setPaused(ctx, id, true)
}

// ResumeSession reopens event intake for the session. Idempotent.
func (s *Service) ResumeSession(ctx context.Context, id string) (*model.Session, error) {
	return s.setPaused(ctx, id, false)
}

func (s *Service) setPaused(ctx context.Context, id string, paused bool) (*model.Session, error) {
	sess, err := s.store.SetPaused(ctx, id, paused)
	if err != nil {
		return nil, err
	}
	s.writer.Trigger()
	return sess, nil
}

// EndSession moves the session to its terminal state. Missing second
// buckets fall back to defaults in the store.
func (s *Service) EndSession(ctx context.Context, id string, body map[string]any) (*model.Session, error) {
	if err := s.guard.Check(body); err != nil {
		return nil, err
	}
	totals := repository.Totals{
		TotalSeconds: intField(body, "total_seconds"),
		GoodSeconds:  intField(body, "good_seconds"),
		MildSeconds:  intField(body, "mild_seconds"),
		BadSeconds:   intField(body, "bad_seconds"),
	}
	sess, err := s.store.EndSession(ctx, id, totals)
	if err != nil {
		return nil, err
	}
	s.writer.Trigger()
	s.log.Info(ctx, "session ended",
		logger.String("session_id", sess.ID),
		logger.Int("events", len(sess.EventIDs)),
	)
	return sess, nil
}

// SessionEvents returns the session's events in append order.
func (s *Service) SessionEvents(ctx context.Context, id string) ([]*model.Event, error) {
	return s.store.EventsForSession(ctx, id)
}
