package auth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/novax/sochratic/internal/api"
)

type memCreds struct {
	token string
	user  *api.User
}

func (m *memCreds) SaveCredentials(_ context.Context, token string, user api.User) error {
	m.token = token
	m.user = &user
	return nil
}

func (m *memCreds) Token(_ context.Context) (string, error) { return m.token, nil }

func (m *memCreds) User(_ context.Context) (*api.User, error) { return m.user, nil }

func (m *memCreds) ClearCredentials(_ context.Context) error {
	m.token = ""
	m.user = nil
	return nil
}

type fakeEndpoints struct {
	loginResp    *api.AuthResponse
	loginErr     error
	registerResp *api.AuthResponse
}

func (f *fakeEndpoints) Login(_ context.Context, _ api.LoginRequest) (*api.AuthResponse, error) {
	return f.loginResp, f.loginErr
}

func (f *fakeEndpoints) Register(_ context.Context, _ api.RegisterRequest) (*api.AuthResponse, error) {
	return f.registerResp, nil
}

// unsignedJWT builds a syntactically valid JWT with the given expiry. The
// signature is junk; expiry checking never verifies it.
func unsignedJWT(t *testing.T, exp time.Time) string {
	t.Helper()
	enc := func(v any) string {
		raw, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		return base64.RawURLEncoding.EncodeToString(raw)
	}
	header := enc(map[string]string{"alg": "HS256", "typ": "JWT"})
	claims := enc(map[string]any{"exp": exp.Unix(), "sub": "7"})
	return fmt.Sprintf("%s.%s.junk", header, claims)
}

func TestLoginPersistsCredentials(t *testing.T) {
	creds := &memCreds{}
	a := New(&fakeEndpoints{loginResp: &api.AuthResponse{
		Success: true,
		Token:   "tok",
		User:    &api.User{ID: 7, Username: "ada"},
	}}, creds, nil)

	user, err := a.Login(context.Background(), "ada", "pw")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if user.ID != 7 {
		t.Errorf("user = %+v", user)
	}
	if creds.token != "tok" {
		t.Errorf("saved token = %q", creds.token)
	}
}

func TestLoginFailureSavesNothing(t *testing.T) {
	creds := &memCreds{}
	a := New(&fakeEndpoints{loginErr: errors.New("invalid credentials")}, creds, nil)

	if _, err := a.Login(context.Background(), "ada", "wrong"); err == nil {
		t.Fatal("expected error")
	}
	if creds.token != "" {
		t.Errorf("token saved on failed login: %q", creds.token)
	}
}

func TestLoginMissingTokenRejected(t *testing.T) {
	a := New(&fakeEndpoints{loginResp: &api.AuthResponse{Success: true}}, &memCreds{}, nil)
	if _, err := a.Login(context.Background(), "ada", "pw"); err == nil {
		t.Fatal("expected error for response without token")
	}
}

func TestRegisterSignsIn(t *testing.T) {
	creds := &memCreds{}
	a := New(&fakeEndpoints{registerResp: &api.AuthResponse{
		Token: "tok2",
		User:  &api.User{ID: 8, Username: "bob"},
	}}, creds, nil)

	if _, err := a.Register(context.Background(), api.RegisterRequest{Username: "bob"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if creds.token != "tok2" {
		t.Errorf("saved token = %q", creds.token)
	}
}

func TestCurrent(t *testing.T) {
	creds := &memCreds{}
	a := New(&fakeEndpoints{}, creds, nil)
	ctx := context.Background()

	if _, err := a.Current(ctx); !errors.Is(err, ErrNotSignedIn) {
		t.Fatalf("err = %v, want ErrNotSignedIn", err)
	}

	live := unsignedJWT(t, time.Now().Add(time.Hour))
	if err := creds.SaveCredentials(ctx, live, api.User{ID: 7, Username: "ada"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	user, err := a.Current(ctx)
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if user.Username != "ada" {
		t.Errorf("user = %+v", user)
	}
}

func TestCurrentExpiredTokenClearsCredentials(t *testing.T) {
	creds := &memCreds{}
	a := New(&fakeEndpoints{}, creds, nil)
	ctx := context.Background()

	dead := unsignedJWT(t, time.Now().Add(-time.Hour))
	if err := creds.SaveCredentials(ctx, dead, api.User{ID: 7}); err != nil {
		t.Fatalf("save: %v", err)
	}

	if _, err := a.Current(ctx); !errors.Is(err, ErrNotSignedIn) {
		t.Fatalf("err = %v, want ErrNotSignedIn", err)
	}
	if creds.token != "" {
		t.Error("expired credentials must be cleared")
	}
}

func TestCurrentOpaqueTokenTreatedAsLive(t *testing.T) {
	creds := &memCreds{}
	a := New(&fakeEndpoints{}, creds, nil)
	ctx := context.Background()

	if err := creds.SaveCredentials(ctx, "not-a-jwt", api.User{ID: 7, Username: "ada"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	user, err := a.Current(ctx)
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if user == nil {
		t.Fatal("opaque tokens must not be treated as expired")
	}
}
