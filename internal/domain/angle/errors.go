package angle

import "errors"

// Sentinel kinds for keypoint and angle errors.
var (
	ErrInvalidKeypoint = errors.New("invalid keypoint format")
	ErrMissingKeypoint = errors.New("missing keypoint")
	ErrAngleOutOfRange = errors.New("computed angle out of range")
)
