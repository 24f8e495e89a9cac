// Package payload rejects inbound request bodies that smuggle raw frame
// data. It walks decoded JSON values recursively and is independent of
// any wire schema: maps, sequences, strings and scalars are the only
// shapes it distinguishes.
package payload

import (
	"fmt"
	"strings"
)

// Default guard configuration constants.
const (
	defaultMaxStringLen = 5000
)

// forbiddenKeys are rejected at any nesting depth, case-insensitively.
// Raw image payloads always arrive under one of these.
var forbiddenKeys = map[string]struct{}{
	"image": {},
	"frame": {},
}

// Guard validates decoded payloads before any mutation happens.
type Guard struct {
	maxStringLen int
}

// Option applies a configuration option to the Guard.
type Option func(*Guard)

// WithMaxStringLen overrides the per-string size ceiling.
func WithMaxStringLen(n int) Option {
	return func(g *Guard) {
		if n > 0 {
			g.maxStringLen = n
		}
	}
}

// NewGuard creates a payload guard with configuration options.
func NewGuard(opts ...Option) *Guard {
	g := &Guard{maxStringLen: defaultMaxStringLen}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Check walks v and returns ErrForbiddenKey or ErrPayloadTooLarge on the
// first violation. Scalar values other than over-long strings pass.
// Check is side-effect free.
func (g *Guard) Check(v any) error {
	switch val := v.(type) {
	case map[string]any:
		for key, inner := range val {
			if _, bad := forbiddenKeys[strings.ToLower(key)]; bad {
				return fmt.Errorf("%w: %q", ErrForbiddenKey, key)
			}
			if err := g.Check(inner); err != nil {
				return err
			}
		}
	case []any:
		for _, item := range val {
			if err := g.Check(item); err != nil {
				return err
			}
		}
	case string:
		if len(val) > g.maxStringLen {
			return fmt.Errorf("%w: string field of %d bytes", ErrPayloadTooLarge, len(val))
		}
	}
	return nil
}
