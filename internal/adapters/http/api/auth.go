package api

import (
	"encoding/json"
	"net/http"
	"time"
)

// AuthHandler handles signup, login and profile requests.
type AuthHandler struct {
	svc Service
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(svc Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

type signupResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type profileResponse struct {
	ID        string         `json:"id"`
	Email     string         `json:"email"`
	Name      string         `json:"name"`
	CreatedAt time.Time      `json:"created_at"`
	Settings  map[string]any `json:"settings"`
}

// HandleSignup handles POST /auth/signup requests.
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	body, err := decodeObject(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	u, err := h.svc.Signup(r.Context(), body)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, signupResponse{ID: u.ID, Email: u.Email})
}

// HandleLogin handles POST /auth/login requests.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	token, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}

// HandleMe handles GET /auth/me requests.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, err := h.svc.Authenticate(r.Context(), bearerToken(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	u, err := h.svc.Profile(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profileResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
		Settings:  u.Settings,
	})
}
