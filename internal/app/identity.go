package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/upright/internal/auth"
	"github.com/okian/upright/internal/domain/model"
	"github.com/okian/upright/pkg/logger"
)

// Signup registers a new account. The email is normalized to lower case
// before the uniqueness check.
func (s *Service) Signup(ctx context.Context, body map[string]any) (*model.User, error) {
	if err := s.guard.Check(body); err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(stringField(body, "email")))
	password := stringField(body, "password")
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrValidation)
	}
	settings, _ := body["settings"].(map[string]any)

	hash, err := s.tokens.HashPassword(password)
	if err != nil {
		return nil, err
	}
	u, err := s.store.CreateUser(ctx, stringField(body, "name"), email, hash, settings)
	if err != nil {
		return nil, err
	}
	s.writer.Trigger()
	s.log.Info(ctx, "user registered", logger.String("user_id", u.ID))
	return u, nil
}

// Login verifies credentials and mints a bearer token. Unknown emails
// and wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.store.UserByEmail(ctx, email)
	if err != nil {
		return "", ErrInvalidCredentials
	}
	if !s.tokens.CheckPassword(password, u.PasswordHash) {
		return "", ErrInvalidCredentials
	}
	return s.tokens.GenerateToken(u.ID)
}

// Profile returns the account record for userID.
func (s *Service) Profile(ctx context.Context, userID string) (*model.User, error) {
	return s.store.User(ctx, userID)
}

// Authenticate resolves a bearer token to a user id. A valid token for
// a user that no longer exists is rejected like any invalid token.
func (s *Service) Authenticate(ctx context.Context, token string) (string, error) {
	userID, err := s.tokens.Authenticate(token)
	if err != nil {
		return "", err
	}
	if _, err := s.store.User(ctx, userID); err != nil {
		return "", fmt.Errorf("%w: unknown user", auth.ErrInvalidToken)
	}
	return userID, nil
}
