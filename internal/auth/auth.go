// Package auth ties the backend's auth endpoints to locally persisted
// credentials: sign in once, stay signed in across runs.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/novax/sochratic/internal/api"
)

// ErrNotSignedIn is returned by Current when no credentials are saved.
var ErrNotSignedIn = errors.New("not signed in")

// Credentials is the slice of the store the authenticator needs.
type Credentials interface {
	SaveCredentials(ctx context.Context, token string, user api.User) error
	Token(ctx context.Context) (string, error)
	User(ctx context.Context) (*api.User, error)
	ClearCredentials(ctx context.Context) error
}

// Endpoints is the slice of the API client the authenticator needs.
type Endpoints interface {
	Login(ctx context.Context, req api.LoginRequest) (*api.AuthResponse, error)
	Register(ctx context.Context, req api.RegisterRequest) (*api.AuthResponse, error)
}

// Authenticator performs login and registration and keeps the saved
// credentials in sync.
type Authenticator struct {
	endpoints Endpoints
	creds     Credentials
	log       *zap.Logger
}

// New creates an Authenticator. log may be nil.
func New(endpoints Endpoints, creds Credentials, log *zap.Logger) *Authenticator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Authenticator{endpoints: endpoints, creds: creds, log: log}
}

// Login authenticates and persists the returned token and user.
func (a *Authenticator) Login(ctx context.Context, username, password string) (*api.User, error) {
	resp, err := a.endpoints.Login(ctx, api.LoginRequest{
		Username: username,
		Password: password,
	})
	if err != nil {
		return nil, err
	}
	return a.persist(ctx, resp)
}

// Register creates an account and persists the returned credentials, so a
// fresh registration is also a sign-in.
func (a *Authenticator) Register(ctx context.Context, req api.RegisterRequest) (*api.User, error) {
	resp, err := a.endpoints.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	return a.persist(ctx, resp)
}

func (a *Authenticator) persist(ctx context.Context, resp *api.AuthResponse) (*api.User, error) {
	if resp.Token == "" || resp.User == nil {
		return nil, fmt.Errorf("auth response missing token or user")
	}
	if err := a.creds.SaveCredentials(ctx, resp.Token, *resp.User); err != nil {
		return nil, fmt.Errorf("save credentials: %w", err)
	}
	a.log.Info("signed in", zap.String("username", resp.User.Username))
	return resp.User, nil
}

// Logout clears the saved credentials. Local only; the backend keeps no
// server-side session to invalidate.
func (a *Authenticator) Logout(ctx context.Context) error {
	if err := a.creds.ClearCredentials(ctx); err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	a.log.Info("signed out")
	return nil
}

// Current returns the saved user, or ErrNotSignedIn. When the saved token
// carries an expiry that has passed, the stale credentials are cleared and
// ErrNotSignedIn is returned, so a dead token never reaches the backend.
func (a *Authenticator) Current(ctx context.Context) (*api.User, error) {
	token, err := a.creds.Token(ctx)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, ErrNotSignedIn
	}

	if expired(token) {
		a.log.Info("saved token expired, clearing credentials")
		if err := a.creds.ClearCredentials(ctx); err != nil {
			return nil, fmt.Errorf("clear expired credentials: %w", err)
		}
		return nil, ErrNotSignedIn
	}

	user, err := a.creds.User(ctx)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotSignedIn
	}
	return user, nil
}

// expired checks the token's exp claim without verifying the signature. Only
// the backend can verify; locally we just avoid sending obviously dead
// tokens. Tokens that don't parse or carry no expiry are treated as live.
func expired(token string) bool {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}
