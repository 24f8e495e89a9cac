// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Keep fields unexported where possible and use functional options.
// - Provide New() to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DataFile is the JSON snapshot location.
	DataFile string `koanf:"data_file"`

	// PersistSnapshots toggles durable snapshots entirely.
	PersistSnapshots bool `koanf:"persist_snapshots"`

	// JWTSecret signs bearer tokens. Must be set outside of dev.
	JWTSecret string `koanf:"jwt_secret"`

	// TokenTTLHours bounds bearer token lifetime.
	TokenTTLHours int `koanf:"token_ttl_hours"`

	// RateLimitPerSecond caps admitted events per session per second.
	RateLimitPerSecond int `koanf:"rate_limit_per_second"`

	// RateLimitWindowCap bounds stored admission timestamps per session.
	RateLimitWindowCap int `koanf:"rate_limit_window_cap"`

	// FeedHistorySize bounds the live feed replay ring buffer.
	FeedHistorySize int `koanf:"feed_history_size"`

	// FeedReplayCount is how many buffered events a new subscriber gets.
	FeedReplayCount int `koanf:"feed_replay_count"`

	// FeedSubscriberBuffer is the per-subscriber channel capacity.
	FeedSubscriberBuffer int `koanf:"feed_subscriber_buffer"`

	// MaxStringLen is the payload guard's per-string ceiling.
	MaxStringLen int `koanf:"max_string_len"`
}

// New creates a Config holding the documented defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		Addr:                 ":8000",
		DataFile:             "data/upright.json",
		PersistSnapshots:     true,
		JWTSecret:            "dev-secret-change-me",
		TokenTTLHours:        24,
		RateLimitPerSecond:   10,
		RateLimitWindowCap:   20,
		FeedHistorySize:      20,
		FeedReplayCount:      5,
		FeedSubscriberBuffer: 16,
		MaxStringLen:         5000,
	}
}
