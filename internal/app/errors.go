package app

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrValidation         = errors.New("invalid request")
	ErrSessionPaused      = errors.New("session is paused")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
