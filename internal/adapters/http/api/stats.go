package api

import (
	"net/http"
)

// StatsHandler handles stats requests.
type StatsHandler struct {
	svc Service
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(svc Service) *StatsHandler {
	return &StatsHandler{svc: svc}
}

// HandleStats handles GET /stats requests.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Stats(r.Context()))
}
