package api

import (
	"net/http"
)

// RecordsHandler handles calibration and device-metric requests.
type RecordsHandler struct {
	svc Service
}

// NewRecordsHandler creates a new records handler.
func NewRecordsHandler(svc Service) *RecordsHandler {
	return &RecordsHandler{svc: svc}
}

type calibrationResponse struct {
	CalibrationID string `json:"calibration_id"`
}

type deviceMetricResponse struct {
	Stored bool `json:"stored"`
}

// HandleListCalibrations handles GET /calibration requests.
func (h *RecordsHandler) HandleListCalibrations(w http.ResponseWriter, r *http.Request) {
	userID, err := h.svc.Authenticate(r.Context(), bearerToken(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	cals, err := h.svc.Calibrations(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cals)
}

// HandleCreateCalibration handles POST /calibration requests.
func (h *RecordsHandler) HandleCreateCalibration(w http.ResponseWriter, r *http.Request) {
	userID, err := h.svc.Authenticate(r.Context(), bearerToken(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	body, err := decodeObject(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	cal, err := h.svc.CreateCalibration(r.Context(), userID, body)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, calibrationResponse{CalibrationID: cal.ID})
}

// HandleDeviceMetric handles POST /device_metrics requests. No
// credential required; capture devices report anonymously.
func (h *RecordsHandler) HandleDeviceMetric(w http.ResponseWriter, r *http.Request) {
	body, err := decodeObject(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	if _, err := h.svc.RecordDeviceMetric(r.Context(), body); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, deviceMetricResponse{Stored: true})
}
