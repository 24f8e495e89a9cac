package payload

import "errors"

// Sentinel kinds for payload validation errors.
var (
	ErrForbiddenKey    = errors.New("raw frame/image uploads are not allowed")
	ErrPayloadTooLarge = errors.New("payload too large - did you try to send raw frames?")
)
