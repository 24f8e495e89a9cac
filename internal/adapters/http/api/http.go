// Package api exposes the posture service over HTTP: identity, session
// lifecycle, event ingestion, calibration records and operational
// endpoints.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/okian/upright/internal/domain/model"
)

// Service bundles everything the HTTP handlers need from the
// application layer. Using an interface bundle keeps the handler layer
// loosely coupled to implementations in other packages.
type Service interface {
	Signup(ctx context.Context, body map[string]any) (*model.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	Profile(ctx context.Context, userID string) (*model.User, error)
	Authenticate(ctx context.Context, token string) (string, error)

	StartSession(ctx context.Context, userID *string, body map[string]any) (*model.Session, error)
	SubmitEvents(ctx context.Context, sessionID string, body any) (int, error)
	PauseSession(ctx context.Context, id string) (*model.Session, error)
	ResumeSession(ctx context.Context, id string) (*model.Session, error)
	EndSession(ctx context.Context, id string, body map[string]any) (*model.Session, error)
	SessionEvents(ctx context.Context, id string) ([]*model.Event, error)
	SessionsForUser(ctx context.Context, userID string) ([]*model.Session, error)

	CreateCalibration(ctx context.Context, userID string, body map[string]any) (*model.Calibration, error)
	Calibrations(ctx context.Context, userID string) ([]*model.Calibration, error)
	RecordDeviceMetric(ctx context.Context, body map[string]any) (*model.DeviceMetric, error)

	Stats(ctx context.Context) map[string]any
}

// Server wires HTTP routes for the posture API.
type Server struct {
	authHandler     *AuthHandler
	sessionsHandler *SessionsHandler
	recordsHandler  *RecordsHandler
	statsHandler    *StatsHandler
	healthHandler   *HealthHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(svc Service) *Server {
	return &Server{
		authHandler:     NewAuthHandler(svc),
		sessionsHandler: NewSessionsHandler(svc),
		recordsHandler:  NewRecordsHandler(svc),
		statsHandler:    NewStatsHandler(svc),
		healthHandler:   NewHealthHandler(),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("POST /auth/signup", MetricsMiddleware(s.authHandler.HandleSignup, "auth_signup"))
	mux.HandleFunc("POST /auth/login", MetricsMiddleware(s.authHandler.HandleLogin, "auth_login"))
	mux.HandleFunc("GET /auth/me", MetricsMiddleware(s.authHandler.HandleMe, "auth_me"))

	mux.HandleFunc("POST /sessions/start", MetricsMiddleware(s.sessionsHandler.HandleStart, "session_start"))
	mux.HandleFunc("POST /sessions/{id}/event", MetricsMiddleware(s.sessionsHandler.HandleEvent, "session_event"))
	mux.HandleFunc("POST /sessions/{id}/pause", MetricsMiddleware(s.sessionsHandler.HandlePause, "session_pause"))
	mux.HandleFunc("POST /sessions/{id}/resume", MetricsMiddleware(s.sessionsHandler.HandleResume, "session_resume"))
	mux.HandleFunc("POST /sessions/{id}/end", MetricsMiddleware(s.sessionsHandler.HandleEnd, "session_end"))
	mux.HandleFunc("GET /sessions/{id}/events", MetricsMiddleware(s.sessionsHandler.HandleEvents, "session_events"))
	mux.HandleFunc("GET /users/me/sessions", MetricsMiddleware(s.sessionsHandler.HandleMySessions, "my_sessions"))

	mux.HandleFunc("GET /calibration", MetricsMiddleware(s.recordsHandler.HandleListCalibrations, "calibration_list"))
	mux.HandleFunc("POST /calibration", MetricsMiddleware(s.recordsHandler.HandleCreateCalibration, "calibration_create"))
	mux.HandleFunc("POST /device_metrics", MetricsMiddleware(s.recordsHandler.HandleDeviceMetric, "device_metrics"))

	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// bearerToken extracts the credential from the Authorization header.
func bearerToken(r *http.Request) string {
	if after, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	return ""
}

// decodeObject reads a JSON object body. An empty body decodes to an
// empty map so optional-body endpoints stay simple.
func decodeObject(r *http.Request) (map[string]any, error) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]any{}, nil
		}
		return nil, err
	}
	if body == nil {
		body = map[string]any{}
	}
	return body, nil
}
