// Package ratelimit provides per-session sliding-window admission
// control for inbound event batches.
package ratelimit

import (
	"fmt"
	"sync"
	"time"
)

// Default limiter configuration constants.
const (
	defaultMaxPerWindow = 10
	defaultWindowCap    = 20
	defaultWindow       = time.Second

	// RetryAfter is the hint returned with every rejection.
	RetryAfter = time.Second
)

// Limiter admits or rejects event batches per session. A batch is
// admitted or rejected as one unit; partial admission never happens.
type Limiter struct {
	mu           sync.Mutex
	windows      map[string][]time.Time
	maxPerWindow int
	windowCap    int
	window       time.Duration
	now          func() time.Time
}

// Option applies a configuration option to the Limiter.
type Option func(*Limiter)

// WithMaxPerWindow sets the number of events admitted per window.
func WithMaxPerWindow(n int) Option {
	return func(l *Limiter) {
		if n > 0 {
			l.maxPerWindow = n
		}
	}
}

// WithWindowCap bounds the stored timestamps per session.
func WithWindowCap(n int) Option {
	return func(l *Limiter) {
		if n > 0 {
			l.windowCap = n
		}
	}
}

// WithWindow sets the sliding window duration.
func WithWindow(d time.Duration) Option {
	return func(l *Limiter) {
		if d > 0 {
			l.window = d
		}
	}
}

// WithClock injects a time source for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		if now != nil {
			l.now = now
		}
	}
}

// NewLimiter creates a limiter with configuration options.
func NewLimiter(opts ...Option) *Limiter {
	l := &Limiter{
		windows:      make(map[string][]time.Time),
		maxPerWindow: defaultMaxPerWindow,
		windowCap:    defaultWindowCap,
		window:       defaultWindow,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Admit records count admissions for sessionID or rejects the whole
// batch with ErrRateExceeded. Timestamps older than the window are
// dropped first; the per-session store never exceeds the window cap.
func (l *Limiter) Admit(sessionID string, count int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	window := l.windows[sessionID]
	kept := window[:0]
	for _, ts := range window {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}

	if len(kept)+count > l.maxPerWindow {
		l.windows[sessionID] = kept
		return fmt.Errorf("%w: retry after %s", ErrRateExceeded, RetryAfter)
	}

	for i := 0; i < count; i++ {
		kept = append(kept, now)
	}
	// Silently drop the oldest entries once the bound is exceeded.
	if len(kept) > l.windowCap {
		kept = kept[len(kept)-l.windowCap:]
	}
	l.windows[sessionID] = kept
	return nil
}

// WindowLen reports the stored timestamp count for a session. Intended
// for stats and tests.
func (l *Limiter) WindowLen(sessionID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows[sessionID])
}

// Sessions reports how many sessions currently hold a window.
func (l *Limiter) Sessions() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}
