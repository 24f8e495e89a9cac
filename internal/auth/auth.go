// Package auth issues and validates the opaque bearer credentials the
// rest of the service consumes. Tokens are HS256 JWTs carrying the user
// id; passwords are stored as bcrypt hashes.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Default token configuration constants.
const (
	defaultTokenTTL = 24 * time.Hour
	issuer          = "upright"
)

// Claims embeds the registered JWT fields plus our user binding.
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// Manager mints and verifies credentials.
type Manager struct {
	secret   []byte
	tokenTTL time.Duration
	cost     int
	now      func() time.Time
}

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithTokenTTL sets the token lifetime.
func WithTokenTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.tokenTTL = ttl
		}
	}
}

// WithBcryptCost overrides the hashing cost. Lower it in tests.
func WithBcryptCost(cost int) Option {
	return func(m *Manager) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			m.cost = cost
		}
	}
}

// WithClock injects a time source for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewManager creates a credential manager signing with secret.
func NewManager(secret string, opts ...Option) *Manager {
	m := &Manager{
		secret:   []byte(secret),
		tokenTTL: defaultTokenTTL,
		cost:     bcrypt.DefaultCost,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// HashPassword returns the bcrypt hash for password.
func (m *Manager) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), m.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored hash.
func (m *Manager) CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// GenerateToken mints a signed bearer token for userID.
func (m *Manager) GenerateToken(userID string) (string, error) {
	now := m.now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenTTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Authenticate resolves a bearer token to a user id.
func (m *Manager) Authenticate(token string) (string, error) {
	if token == "" {
		return "", ErrMissingToken
	}
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("%w: %w", ErrTokenExpired, err)
		}
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.UserID == "" {
		return "", ErrInvalidToken
	}
	return claims.UserID, nil
}
