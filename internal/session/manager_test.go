package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/novax/sochratic/internal/api"
)

// fakeBackend implements Backend with programmable results and call counts.
type fakeBackend struct {
	mu sync.Mutex

	createErr   error
	abandonErr  error
	completeErr error

	createCalls   int
	abandonCalls  int
	completeCalls int

	lastAbandonID string
}

func (f *fakeBackend) CreateSession(_ context.Context, req api.CreateSessionRequest) (*api.SessionResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &api.SessionResponse{SessionID: "abc", UserID: req.UserID, TopicID: req.TopicID}, nil
}

func (f *fakeBackend) AbandonSession(_ context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.abandonCalls++
	f.lastAbandonID = sessionID
	return f.abandonErr
}

func (f *fakeBackend) CompleteSession(_ context.Context, sessionID string, _ api.CompleteRequest) (*api.CompleteResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completeCalls++
	if f.completeErr != nil {
		return nil, f.completeErr
	}
	return &api.CompleteResponse{
		Success:   true,
		SessionID: sessionID,
		TotalExp:  120,
		Level:     3,
		ExpPoints: []api.ExpPoint{{Element: "problem_solving", Value: 70}, {Element: "recall", Value: 50}},
	}, nil
}

func TestCreateThenAbandon_NeverPanicsRegardlessOfOutcome(t *testing.T) {
	for _, abandonErr := range []error{nil, errors.New("network down")} {
		backend := &fakeBackend{abandonErr: abandonErr}
		m := NewManager(backend, nil, nil, 1, 42)

		id, err := m.Create(context.Background())
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if id != "abc" {
			t.Errorf("id = %q, want abc", id)
		}

		// Must not return an error and must not panic.
		m.Abandon(context.Background())

		if backend.lastAbandonID != "abc" {
			t.Errorf("abandoned id = %q, want abc", backend.lastAbandonID)
		}
	}
}

func TestCreate_ValidatesBeforeNetwork(t *testing.T) {
	backend := &fakeBackend{}
	m := NewManager(backend, nil, nil, 1, 0)

	if _, err := m.Create(context.Background()); err == nil {
		t.Fatal("expected validation error for topic id 0")
	}
	if backend.createCalls != 0 {
		t.Errorf("createCalls = %d, want 0 (validation must precede network)", backend.createCalls)
	}
}

func TestCreate_MountGuard(t *testing.T) {
	backend := &fakeBackend{}
	m := NewManager(backend, nil, nil, 1, 42)

	if _, err := m.Create(context.Background()); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := m.Create(context.Background()); !errors.Is(err, ErrAlreadyCreated) {
		t.Fatalf("second Create = %v, want ErrAlreadyCreated", err)
	}
	if backend.createCalls != 1 {
		t.Errorf("createCalls = %d, want 1", backend.createCalls)
	}
}

func TestComplete_SurfacesErrorAndStaysRetryable(t *testing.T) {
	backend := &fakeBackend{completeErr: errors.New("backend 503")}
	m := NewManager(backend, nil, nil, 1, 42)

	if _, err := m.Create(context.Background()); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := m.Complete(context.Background()); err == nil {
		t.Fatal("expected completion error to surface")
	}
	if m.Completed() {
		t.Error("session must not be marked completed after failure")
	}

	// Retry with the same arguments succeeds once the backend recovers.
	backend.mu.Lock()
	backend.completeErr = nil
	backend.mu.Unlock()

	reward, err := m.Complete(context.Background())
	if err != nil {
		t.Fatalf("retry Complete: %v", err)
	}
	if reward.TotalExp != 120 || reward.Level != 3 {
		t.Errorf("reward = %+v", reward)
	}
	if len(reward.ExpPoints) != 2 {
		t.Errorf("ExpPoints = %d entries, want 2", len(reward.ExpPoints))
	}
}

func TestAbandon_NoOpAfterComplete(t *testing.T) {
	backend := &fakeBackend{}
	m := NewManager(backend, nil, nil, 1, 42)

	if _, err := m.Create(context.Background()); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := m.Complete(context.Background()); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	m.Abandon(context.Background())
	if backend.abandonCalls != 0 {
		t.Errorf("abandonCalls = %d, want 0 after completion", backend.abandonCalls)
	}
}

func TestAbandon_NoOpWithoutSession(t *testing.T) {
	backend := &fakeBackend{}
	m := NewManager(backend, nil, nil, 1, 42)

	m.Abandon(context.Background())
	if backend.abandonCalls != 0 {
		t.Errorf("abandonCalls = %d, want 0 without a session", backend.abandonCalls)
	}
}

func TestComplete_WithoutSession(t *testing.T) {
	m := NewManager(&fakeBackend{}, nil, nil, 1, 42)
	if _, err := m.Complete(context.Background()); !errors.Is(err, ErrNoSession) {
		t.Fatalf("Complete = %v, want ErrNoSession", err)
	}
}

type recordingRecorder struct {
	mu      sync.Mutex
	entries []string
}

func (r *recordingRecorder) RecordSession(sessionID string, userID, topicID int, outcome string, totalExp int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, outcome)
}

func TestRecorderSeesLifecycle(t *testing.T) {
	rec := &recordingRecorder{}
	m := NewManager(&fakeBackend{}, rec, nil, 1, 42)

	if _, err := m.Create(context.Background()); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := m.Complete(context.Background()); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	want := []string{"created", "completed"}
	if len(rec.entries) != len(want) {
		t.Fatalf("entries = %v, want %v", rec.entries, want)
	}
	for i := range want {
		if rec.entries[i] != want[i] {
			t.Errorf("entries[%d] = %q, want %q", i, rec.entries[i], want[i])
		}
	}
}
