// Package simulator drives a running service with synthetic posture
// sessions. It is a load and demo tool, not part of the serving path.
package simulator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/okian/upright/pkg/logger"
)

// Default runner configuration constants.
const (
	defaultEvents    = 100
	defaultBatchSize = 5
	defaultInterval  = time.Second
	defaultTimeout   = 30 * time.Second

	rateLimitBackoff = 1100 * time.Millisecond
)

// Config controls one simulated session.
type Config struct {
	BaseURL   string
	Events    int
	BatchSize int
	Interval  time.Duration
	Timeout   time.Duration
	DeviceID  string
}

// Stats summarizes a finished run.
type Stats struct {
	SessionID       string
	EventsSubmitted int
	BatchesRejected int
	Elapsed         time.Duration
}

// Runner submits generated events against a live service.
type Runner struct {
	cfg    Config
	client *http.Client
	log    logger.Logger
}

// Option applies a configuration option to the Runner.
type Option func(*Runner)

// WithLogger sets a custom logger for the runner.
func WithLogger(log logger.Logger) Option {
	return func(r *Runner) {
		if log != nil {
			r.log = log
		}
	}
}

// NewRunner creates a runner for cfg, filling in defaults.
func NewRunner(cfg Config, opts ...Option) *Runner {
	if cfg.Events <= 0 {
		cfg.Events = defaultEvents
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.DeviceID == "" {
		cfg.DeviceID = "simulator"
	}
	r := &Runner{cfg: cfg, client: &http.Client{Timeout: cfg.Timeout}}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		r.log = logger.Get().Named("simulator")
	}
	return r
}

// Run starts a session, streams batches until the requested event
// count is reached, then ends the session.
func (r *Runner) Run(ctx context.Context) (*Stats, error) {
	start := time.Now()

	sessionID, err := r.startSession(ctx)
	if err != nil {
		return nil, err
	}
	stats := &Stats{SessionID: sessionID}
	r.log.Info(ctx, "session started", logger.String("session_id", sessionID))

	for stats.EventsSubmitted < r.cfg.Events {
		size := r.cfg.BatchSize
		if remaining := r.cfg.Events - stats.EventsSubmitted; remaining < size {
			size = remaining
		}
		batch := make([]any, size)
		for i := range batch {
			batch[i] = generateEvent()
		}

		status, err := r.postJSON(ctx, "/sessions/"+sessionID+"/event", batch, nil)
		switch {
		case err != nil:
			return stats, err
		case status == http.StatusTooManyRequests:
			stats.BatchesRejected++
			if err := sleep(ctx, rateLimitBackoff); err != nil {
				return stats, err
			}
			continue
		case status != http.StatusCreated:
			return stats, fmt.Errorf("event submission failed with status %d", status)
		}

		stats.EventsSubmitted += size
		if err := sleep(ctx, r.cfg.Interval); err != nil {
			return stats, err
		}
	}

	if status, err := r.postJSON(ctx, "/sessions/"+sessionID+"/end", map[string]any{}, nil); err != nil {
		return stats, err
	} else if status != http.StatusOK {
		return stats, fmt.Errorf("session end failed with status %d", status)
	}

	stats.Elapsed = time.Since(start)
	r.log.Info(ctx, "run finished",
		logger.String("session_id", sessionID),
		logger.Int("events", stats.EventsSubmitted),
		logger.Int("rejected_batches", stats.BatchesRejected),
		logger.Duration("elapsed", stats.Elapsed),
	)
	return stats, nil
}

func (r *Runner) startSession(ctx context.Context) (string, error) {
	var resp struct {
		SessionID string `json:"session_id"`
	}
	status, err := r.postJSON(ctx, "/sessions/start", map[string]any{"device_id": r.cfg.DeviceID}, &resp)
	if err != nil {
		return "", err
	}
	if status != http.StatusCreated {
		return "", fmt.Errorf("session start failed with status %d", status)
	}
	return resp.SessionID, nil
}

func (r *Runner) postJSON(ctx context.Context, path string, body, out any) (int, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return 0, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.BaseURL+path, bytes.NewReader(raw))
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("post %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if out != nil && resp.StatusCode < http.StatusBadRequest {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
