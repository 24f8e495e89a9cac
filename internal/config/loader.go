package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if UPRIGHT_CONFIG is set
//  3. env (prefix UPRIGHT_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("UPRIGHT_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: UPRIGHT_ADDR, UPRIGHT_JWT_SECRET, ...
	// Map env keys like UPRIGHT_RATE_LIMIT_PER_SECOND -> rate_limit_per_second.
	envProvider := env.Provider("UPRIGHT_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "upright_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if cfg.Addr == "" {
		return nil, fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("%w: jwt_secret must not be empty", ErrInvalidConfig)
	}
	if cfg.RateLimitPerSecond <= 0 {
		return nil, fmt.Errorf("%w: rate_limit_per_second must be positive", ErrInvalidConfig)
	}
	return &cfg, nil
}
