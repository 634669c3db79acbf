package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/novax/sochratic/internal/api"
)

const (
	keyToken = "auth_token"
	keyUser  = "user"
)

// SaveCredentials persists the bearer token and the signed-in user.
func (s *Store) SaveCredentials(ctx context.Context, token string, user api.User) error {
	if err := s.setValue(ctx, keyToken, token); err != nil {
		return err
	}
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	return s.setValue(ctx, keyUser, string(raw))
}

// Token returns the saved bearer token, or "" when signed out.
func (s *Store) Token(ctx context.Context) (string, error) {
	return s.getValue(ctx, keyToken)
}

// User returns the saved user, or nil when signed out.
func (s *Store) User(ctx context.Context) (*api.User, error) {
	raw, err := s.getValue(ctx, keyUser)
	if err != nil || raw == "" {
		return nil, err
	}
	var u api.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return &u, nil
}

// ClearCredentials signs the user out locally.
func (s *Store) ClearCredentials(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM credentials WHERE key IN (?, ?)`, keyToken, keyUser)
	if err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	return nil
}
