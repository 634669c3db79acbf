package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// CreateSession starts a new learning session.
func (c *Client) CreateSession(ctx context.Context, req CreateSessionRequest) (*SessionResponse, error) {
	var out SessionResponse
	if err := c.do(ctx, http.MethodPost, "/api/session", req, &out); err != nil {
		return nil, err
	}
	if out.SessionID == "" {
		return nil, fmt.Errorf("backend returned empty session id")
	}
	return &out, nil
}

// AbandonSession notifies the backend that a session ends without completion.
// The response body carries nothing useful and is discarded.
func (c *Client) AbandonSession(ctx context.Context, sessionID string) error {
	path := "/api/session/" + url.PathEscape(sessionID) + "/abandon"
	return c.do(ctx, http.MethodPost, path, nil, nil)
}

// SendMessage sends one chat turn and returns the tutor's reply text.
func (c *Client) SendMessage(ctx context.Context, req ChatRequest) (string, error) {
	var out ChatResponse
	if err := c.do(ctx, http.MethodPost, "/api/chat/message", req, &out); err != nil {
		return "", err
	}
	return out.Reply, nil
}

// CompleteSession finishes a session and returns the EXP reward breakdown.
func (c *Client) CompleteSession(ctx context.Context, sessionID string, req CompleteRequest) (*CompleteResponse, error) {
	path := "/api/exp/complete/" + url.PathEscape(sessionID)
	var out CompleteResponse
	if err := c.do(ctx, http.MethodPost, path, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login authenticates and returns the token plus user snapshot.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account. Response shape matches Login.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Profile fetches the authenticated user's profile.
func (c *Client) Profile(ctx context.Context) (*Profile, error) {
	var out ProfileResponse
	if err := c.do(ctx, http.MethodGet, "/api/profile", nil, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// Topics lists studyable topics.
func (c *Client) Topics(ctx context.Context) ([]Topic, error) {
	var out []Topic
	if err := c.do(ctx, http.MethodGet, "/api/topic", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateCheckout creates a payment checkout session and returns its URL.
func (c *Client) CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	var out CheckoutSession
	if err := c.do(ctx, http.MethodPost, "/payments/create-checkout-session", req, &out); err != nil {
		return nil, err
	}
	if out.URL == "" {
		return nil, fmt.Errorf("checkout session has no URL")
	}
	return &out, nil
}
