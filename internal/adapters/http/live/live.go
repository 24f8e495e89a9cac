// Package live streams posture events over a WebSocket endpoint. New
// connections authenticate through a query-string credential, receive
// a bounded replay of recent events, then get every publish as it
// happens.
package live

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/net/websocket"

	"github.com/okian/upright/internal/adapters/broadcast"
	"github.com/okian/upright/internal/domain/model"
	"github.com/okian/upright/pkg/logger"
)

// Close codes sent before the handshake payload when the credential is
// unusable.
const (
	closeMissingToken = 4001
	closeInvalidToken = 4003
)

// Service is what the feed endpoint needs from the application layer.
type Service interface {
	Authenticate(ctx context.Context, token string) (string, error)
	Subscribe() *broadcast.Subscription
	Unsubscribe(id string)
}

// Handler serves the live posture feed.
type Handler struct {
	svc Service
	log logger.Logger
}

// Option applies a configuration option to the Handler.
type Option func(*Handler)

// WithLogger sets a custom logger for the handler.
func WithLogger(log logger.Logger) Option {
	return func(h *Handler) {
		if log != nil {
			h.log = log
		}
	}
}

// NewHandler creates a live feed handler.
func NewHandler(svc Service, opts ...Option) *Handler {
	h := &Handler{svc: svc}
	for _, opt := range opts {
		opt(h)
	}
	if h.log == nil {
		h.log = logger.Get().Named("live")
	}
	return h
}

// Register attaches the feed endpoint to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.Handle("/ws/posture", websocket.Handler(h.handle))
}

type historyMessage struct {
	Type   string            `json:"type"`
	Events []model.FeedEvent `json:"events"`
}

type postureMessage struct {
	Type  string          `json:"type"`
	Event model.FeedEvent `json:"event"`
}

type ackMessage struct {
	Ack bool `json:"ack"`
}

func (h *Handler) handle(conn *websocket.Conn) {
	defer func() { _ = conn.Close() }()

	// Clear deadlines inherited from the HTTP server; the stream lives
	// as long as the subscriber does.
	_ = conn.SetDeadline(time.Time{})

	r := conn.Request()
	ctx := r.Context()

	token := r.URL.Query().Get("token")
	if token == "" {
		_ = conn.WriteClose(closeMissingToken)
		return
	}
	userID, err := h.svc.Authenticate(ctx, token)
	if err != nil {
		_ = conn.WriteClose(closeInvalidToken)
		return
	}

	sub := h.svc.Subscribe()
	defer h.svc.Unsubscribe(sub.ID)
	h.log.Info(ctx, "feed subscriber connected",
		logger.String("user_id", userID),
		logger.Int("replayed", len(sub.Replay)),
	)

	if err := websocket.JSON.Send(conn, historyMessage{Type: "history", Events: sub.Replay}); err != nil {
		return
	}

	// Client frames are acknowledged but otherwise ignored. The reader
	// doubles as the disconnect detector.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var frame string
			if err := websocket.Message.Receive(conn, &frame); err != nil {
				return
			}
			if err := websocket.JSON.Send(conn, ackMessage{Ack: true}); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case ev, ok := <-sub.C:
			if !ok {
				// Dropped by the feed for falling behind, or shutdown.
				return
			}
			if err := websocket.JSON.Send(conn, postureMessage{Type: "posture", Event: ev}); err != nil {
				return
			}
		}
	}
}
