// Package repository defines the posture state store interface and errors.
package repository

import "time"

// Option applies a configuration option to the MemStore.
type Option func(*MemStore)

// WithClock injects a time source for tests.
func WithClock(now func() time.Time) Option {
	return func(s *MemStore) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator injects an id source for tests.
func WithIDGenerator(next func() string) Option {
	return func(s *MemStore) {
		if next != nil {
			s.newID = next
		}
	}
}
