package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

type staticTokens string

func (s staticTokens) Token() string { return string(s) }

func fastRetry() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: time.Millisecond,
		MaxWait:     5 * time.Millisecond,
		Multiplier:  2.0,
	}
}

func newTestClient(t *testing.T, handler http.Handler, opts Options) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	opts.BaseURL = srv.URL
	if opts.Retry.MaxAttempts == 0 {
		opts.Retry = fastRetry()
	}
	return New(opts), srv
}

func TestBearerTokenAttached(t *testing.T) {
	var gotAuth string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	}), Options{Tokens: staticTokens("tok-123")})

	if _, err := c.Topics(context.Background()); err != nil {
		t.Fatalf("Topics: %v", err)
	}
	if gotAuth != "Bearer tok-123" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer tok-123")
	}
}

func TestNoTokenNoHeader(t *testing.T) {
	var gotAuth string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	}), Options{Tokens: staticTokens("")})

	if _, err := c.Topics(context.Background()); err != nil {
		t.Fatalf("Topics: %v", err)
	}
	if gotAuth != "" {
		t.Errorf("Authorization = %q, want empty", gotAuth)
	}
}

func TestRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"reply":"ok"}`))
	}), Options{})

	reply, err := c.SendMessage(context.Background(), ChatRequest{SessionID: "s", Mode: "DEFAULT"})
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if reply != "ok" {
		t.Errorf("reply = %q, want ok", reply)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestNoRetryOnClientError(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"topicId is required"}`))
	}), Options{})

	_, err := c.CreateSession(context.Background(), CreateSessionRequest{UserID: 1})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.Status != http.StatusBadRequest {
		t.Errorf("Status = %d, want 400", apiErr.Status)
	}
	if apiErr.Message != "topicId is required" {
		t.Errorf("Message = %q", apiErr.Message)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1 (4xx must not retry)", calls.Load())
	}
}

func TestErrorMessageFromLegacyField(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":"plan required"}`))
	}), Options{})

	_, err := c.Profile(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.Message != "plan required" {
		t.Errorf("Message = %q, want plan required", apiErr.Message)
	}
}

func TestUnauthorizedClearsCredentials(t *testing.T) {
	var cleared atomic.Int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"token expired"}`))
	}), Options{OnUnauthorized: func() { cleared.Add(1) }})

	_, err := c.Profile(context.Background())
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("error = %v, want ErrUnauthorized in chain", err)
	}
	if cleared.Load() != 1 {
		t.Errorf("OnUnauthorized calls = %d, want 1", cleared.Load())
	}
}

func TestContextCancellationStopsRetries(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}), Options{Retry: RetryConfig{
		MaxAttempts: 5,
		InitialWait: time.Hour, // cancellation must win over the wait
		MaxWait:     time.Hour,
		Multiplier:  1.0,
	}})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := c.Topics(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestCheckoutLegacyFieldNames(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"url":"https://pay.example/cs_1","id":"cs_1"}`))
	}), Options{})

	cs, err := c.CreateCheckout(context.Background(), CheckoutRequest{PriceID: "p"})
	if err != nil {
		t.Fatalf("CreateCheckout: %v", err)
	}
	if cs.URL != "https://pay.example/cs_1" {
		t.Errorf("URL = %q", cs.URL)
	}
	if cs.SessionID != "cs_1" {
		t.Errorf("SessionID = %q", cs.SessionID)
	}
}

func TestCreateSessionRejectsEmptyID(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"userId":1,"topicId":42}`))
	}), Options{})

	if _, err := c.CreateSession(context.Background(), CreateSessionRequest{UserID: 1, TopicID: 42}); err == nil {
		t.Fatal("expected error for missing session id")
	}
}
