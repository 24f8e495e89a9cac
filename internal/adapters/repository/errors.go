package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound     = errors.New("not found")
	ErrEmailTaken   = errors.New("email already registered")
	ErrSessionEnded = errors.New("session already ended")
)
