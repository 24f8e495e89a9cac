package ratelimit

import "errors"

// Sentinel kinds for admission control errors.
var (
	ErrRateExceeded = errors.New("too many events per second")
)
