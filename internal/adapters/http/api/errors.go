package api

import (
	"errors"
	"net/http"

	"github.com/okian/upright/internal/adapters/repository"
	"github.com/okian/upright/internal/app"
	"github.com/okian/upright/internal/auth"
	"github.com/okian/upright/internal/domain/angle"
	"github.com/okian/upright/internal/domain/payload"
	"github.com/okian/upright/internal/domain/ratelimit"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
)

// statusFor maps domain errors to an HTTP status and a stable code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, ratelimit.ErrRateExceeded):
		return http.StatusTooManyRequests, "rate_exceeded"
	case errors.Is(err, app.ErrSessionPaused):
		return http.StatusBadRequest, "session_paused"
	case errors.Is(err, repository.ErrSessionEnded):
		return http.StatusBadRequest, "session_ended"
	case errors.Is(err, repository.ErrEmailTaken):
		return http.StatusBadRequest, "email_taken"
	case errors.Is(err, app.ErrInvalidCredentials),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenExpired):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, app.ErrValidation),
		errors.Is(err, ErrBadRequest),
		errors.Is(err, payload.ErrForbiddenKey),
		errors.Is(err, payload.ErrPayloadTooLarge),
		errors.Is(err, angle.ErrInvalidKeypoint),
		errors.Is(err, angle.ErrMissingKeypoint),
		errors.Is(err, angle.ErrAngleOutOfRange):
		return http.StatusBadRequest, "bad_request"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// writeDomainError translates err through statusFor. Rate rejections
// carry the retry hint in a Retry-After header.
func writeDomainError(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	if status == http.StatusTooManyRequests {
		w.Header().Set("Retry-After", "1")
	}
	writeError(w, status, code, err)
}
