package app

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/upright/internal/adapters/repository"
	"github.com/okian/upright/internal/domain/angle"
	"github.com/okian/upright/internal/domain/model"
	"github.com/okian/upright/pkg/metrics"
)

// Bounds for caller-supplied values that bypass keypoint computation.
const (
	maxAngleDegrees = 90.0
	maxScore        = 1.0
)

// SubmitEvents runs the ingestion pipeline for one batch: payload
// guard, pause/terminal checks, rate-limit admission, per-event
// validation, then append and live publish. The batch is atomic: any
// failing item rejects the whole submission before the store is
// touched.
func (s *Service) SubmitEvents(ctx context.Context, sessionID string, body any) (int, error) {
	sess, err := s.store.Session(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	if sess.Ended() {
		metrics.RecordEventRejected("session_ended")
		return 0, fmt.Errorf("%w: session %s", repository.ErrSessionEnded, sessionID)
	}
	if sess.IsPaused {
		metrics.RecordEventRejected("session_paused")
		return 0, fmt.Errorf("%w: resume before sending events", ErrSessionPaused)
	}
	if err := s.guard.Check(body); err != nil {
		metrics.RecordEventRejected("payload")
		return 0, err
	}

	items, err := normalizeBatch(body)
	if err != nil {
		metrics.RecordEventRejected("shape")
		return 0, err
	}

	if err := s.limiter.Admit(sessionID, len(items)); err != nil {
		metrics.RecordEventRejected("rate_limited")
		return 0, err
	}

	events := make([]*model.Event, 0, len(items))
	for _, item := range items {
		ev, err := s.buildEvent(item)
		if err != nil {
			metrics.RecordEventRejected("validation")
			return 0, err
		}
		events = append(events, ev)
	}

	for _, ev := range events {
		id, err := s.store.AppendEvent(ctx, sessionID, ev)
		if err != nil {
			return 0, err
		}
		ev.ID = id
		ev.SessionID = sessionID
		s.feed.Publish(model.FeedEvent{SessionID: sessionID, Event: *ev})
	}
	s.writer.Trigger()
	return len(events), nil
}

// buildEvent validates one inbound item and derives posture geometry.
// Raw keypoints win over caller-supplied angle and score.
func (s *Service) buildEvent(item map[string]any) (*model.Event, error) {
	ev := &model.Event{
		Timestamp: stringField(item, "timestamp"),
		Label:     stringField(item, "label"),
		Metadata:  mapField(item, "metadata"),
	}
	if ev.Timestamp == "" {
		ev.Timestamp = time.Now().UTC().Format(time.RFC3339Nano)
	}
	if ev.Label == "" {
		ev.Label = "unknown"
	}

	if kps, ok := item["keypoints"].(map[string]any); ok && len(kps) > 0 {
		res, err := angle.Compute(kps)
		if err != nil {
			return nil, err
		}
		ev.Angle = res.Angle
		ev.NeckTilt = res.NeckTilt
		score := res.Score
		ev.Score = &score
		ev.Keypoints = kps
		if res.Angle != nil {
			metrics.RecordSpineAngle(*res.Angle)
		}
		return ev, nil
	}

	if a, ok := floatField(item, "angle"); ok {
		if a < 0 || a > maxAngleDegrees {
			return nil, fmt.Errorf("%w: angle must be between 0 and 90 degrees", ErrValidation)
		}
		ev.Angle = &a
		metrics.RecordSpineAngle(a)
	}
	if sc, ok := floatField(item, "score"); ok {
		if sc < 0 || sc > maxScore {
			return nil, fmt.Errorf("%w: score must be between 0 and 1", ErrValidation)
		}
		ev.Score = &sc
	}
	return ev, nil
}

// normalizeBatch accepts a single event object or an ordered sequence
// of them.
func normalizeBatch(body any) ([]map[string]any, error) {
	switch v := body.(type) {
	case map[string]any:
		return []map[string]any{v}, nil
	case []any:
		out := make([]map[string]any, 0, len(v))
		for _, item := range v {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: events must be objects", ErrValidation)
			}
			out = append(out, m)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: body must be an event or a sequence of events", ErrValidation)
	}
}
