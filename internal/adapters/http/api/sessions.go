package api

import (
	"encoding/json"
	"net/http"
)

// SessionsHandler handles the session lifecycle and event intake.
type SessionsHandler struct {
	svc Service
}

// NewSessionsHandler creates a new sessions handler.
func NewSessionsHandler(svc Service) *SessionsHandler {
	return &SessionsHandler{svc: svc}
}

type startResponse struct {
	SessionID string `json:"session_id"`
}

type eventAckResponse struct {
	StoredEvents int `json:"stored_events"`
}

type pauseResponse struct {
	SessionID string `json:"session_id"`
	IsPaused  bool   `json:"is_paused"`
}

type endResponse struct {
	SessionID string `json:"session_id"`
	Ended     bool   `json:"ended"`
}

// HandleStart handles POST /sessions/start requests. The bearer
// credential is optional: an invalid or absent token starts an
// anonymous session rather than failing the request.
func (h *SessionsHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	var userID *string
	if token := bearerToken(r); token != "" {
		if id, err := h.svc.Authenticate(r.Context(), token); err == nil {
			userID = &id
		}
	}
	body, err := decodeObject(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	sess, err := h.svc.StartSession(r.Context(), userID, body)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, startResponse{SessionID: sess.ID})
}

// HandleEvent handles POST /sessions/{id}/event requests. The body is
// a single event object or an ordered sequence of them.
func (h *SessionsHandler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	var body any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	n, err := h.svc.SubmitEvents(r.Context(), r.PathValue("id"), body)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, eventAckResponse{StoredEvents: n})
}

// HandlePause handles POST /sessions/{id}/pause requests.
func (h *SessionsHandler) HandlePause(w http.ResponseWriter, r *http.Request) {
	sess, err := h.svc.PauseSession(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pauseResponse{SessionID: sess.ID, IsPaused: sess.IsPaused})
}

// HandleResume handles POST /sessions/{id}/resume requests.
func (h *SessionsHandler) HandleResume(w http.ResponseWriter, r *http.Request) {
	sess, err := h.svc.ResumeSession(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pauseResponse{SessionID: sess.ID, IsPaused: sess.IsPaused})
}

// HandleEnd handles POST /sessions/{id}/end requests.
func (h *SessionsHandler) HandleEnd(w http.ResponseWriter, r *http.Request) {
	body, err := decodeObject(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	sess, err := h.svc.EndSession(r.Context(), r.PathValue("id"), body)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, endResponse{SessionID: sess.ID, Ended: true})
}

// HandleEvents handles GET /sessions/{id}/events requests.
func (h *SessionsHandler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.svc.SessionEvents(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

// HandleMySessions handles GET /users/me/sessions requests.
func (h *SessionsHandler) HandleMySessions(w http.ResponseWriter, r *http.Request) {
	userID, err := h.svc.Authenticate(r.Context(), bearerToken(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	sessions, err := h.svc.SessionsForUser(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}
