package auth

import "errors"

// Sentinel kinds for credential errors.
var (
	ErrMissingToken = errors.New("authorization token missing")
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
