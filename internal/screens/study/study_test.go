package study

import (
	"context"
	"sync"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/novax/sochratic/internal/api"
	"github.com/novax/sochratic/internal/flow"
	"github.com/novax/sochratic/internal/tutor"
)

// mockBackend implements session.Backend for testing.
type mockBackend struct {
	mu            sync.Mutex
	abandonCalls  int
	completeCalls int
}

func (m *mockBackend) CreateSession(_ context.Context, req api.CreateSessionRequest) (*api.SessionResponse, error) {
	return &api.SessionResponse{SessionID: "s1", UserID: req.UserID, TopicID: req.TopicID}, nil
}

func (m *mockBackend) AbandonSession(_ context.Context, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.abandonCalls++
	return nil
}

func (m *mockBackend) CompleteSession(_ context.Context, sessionID string, _ api.CompleteRequest) (*api.CompleteResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completeCalls++
	return &api.CompleteResponse{Success: true, SessionID: sessionID, TotalExp: 100, Level: 2}, nil
}

// mockStages implements StageStore in memory.
type mockStages struct {
	mu    sync.Mutex
	saved map[[2]int]string
}

func newMockStages() *mockStages {
	return &mockStages{saved: make(map[[2]int]string)}
}

func (m *mockStages) SaveStage(_ context.Context, userID, topicID int, stage string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved[[2]int{userID, topicID}] = stage
	return nil
}

func (m *mockStages) Stage(_ context.Context, userID, topicID int) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saved[[2]int{userID, topicID}], nil
}

func (m *mockStages) ClearStage(_ context.Context, userID, topicID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.saved, [2]int{userID, topicID})
	return nil
}

func newTestScreen(gw tutor.Gateway, backend *mockBackend, stages *mockStages) *StudyScreen {
	return New(gw, backend, stages, nil,
		api.User{ID: 1, Username: "ada"},
		api.Topic{ID: 42, Title: "Queues"},
		nil)
}

// drive runs the screen's init command synchronously and applies the result.
func drive(t *testing.T, s *StudyScreen) {
	t.Helper()
	msg := s.start()()
	started, ok := msg.(startedMsg)
	if !ok {
		t.Fatalf("start returned %T", msg)
	}
	if started.Err != nil {
		t.Fatalf("start: %v", started.Err)
	}
	if _, cmd := s.Update(started); cmd != nil {
		cmd()
	}
}

func TestCloseAbandonsExactlyOnce(t *testing.T) {
	backend := &mockBackend{}
	s := newTestScreen(tutor.NewScript(), backend, newMockStages())
	drive(t, s)

	s.Close()
	s.Close() // router never double-closes, but a bug here loses nothing

	if backend.abandonCalls != 1 {
		t.Errorf("abandonCalls = %d, want 1", backend.abandonCalls)
	}
}

func TestCloseSavesResumePoint(t *testing.T) {
	backend := &mockBackend{}
	stages := newMockStages()
	gw := tutor.NewScript("<MATERIAL_TYPE=concept> material")
	s := newTestScreen(gw, backend, stages)
	drive(t, s)

	msg := s.submitChat2(t, "explain queues")
	if _, cmd := s.Update(msg); cmd != nil {
		cmd()
	}
	if s.ctrl.Stage() != flow.StageExplanation {
		t.Fatalf("stage = %q", s.ctrl.Stage())
	}

	s.Close()
	saved, _ := stages.Stage(context.Background(), 1, 42)
	if saved != "explanation" {
		t.Errorf("saved stage = %q, want explanation", saved)
	}
}

// submitChat2 types text and runs the resulting command synchronously.
func (s *StudyScreen) submitChat2(t *testing.T, text string) tea.Msg {
	t.Helper()
	s.input.Model.SetValue(text)
	cmd := s.submitChat()
	if cmd == nil {
		t.Fatal("submitChat returned nil cmd")
	}
	return cmd()
}

func TestResumeRestoresSavedStage(t *testing.T) {
	backend := &mockBackend{}
	stages := newMockStages()
	_ = stages.SaveStage(context.Background(), 1, 42, "realisation")

	s := newTestScreen(tutor.NewScript(), backend, stages)
	drive(t, s)

	if s.ctrl.Stage() != flow.StageRealisation {
		t.Errorf("stage = %q, want realisation", s.ctrl.Stage())
	}
}

func TestCompletedClearsResumePoint(t *testing.T) {
	backend := &mockBackend{}
	stages := newMockStages()
	gw := tutor.NewScript("<ACTIVE_RECALL_MODE> q1")
	s := newTestScreen(gw, backend, stages)
	drive(t, s)

	msg := s.transition(flow.StageRecall, "")()
	if _, cmd := s.Update(msg); cmd != nil {
		cmd()
	}
	msg = s.transition(flow.StageCompleted, "")()
	if _, cmd := s.Update(msg); cmd != nil {
		cmd()
	}

	if s.ctrl.Stage() != flow.StageCompleted {
		t.Fatalf("stage = %q", s.ctrl.Stage())
	}
	saved, _ := stages.Stage(context.Background(), 1, 42)
	if saved != "" {
		t.Errorf("resume point = %q, want cleared", saved)
	}

	s.Close()
	if backend.abandonCalls != 0 {
		t.Errorf("abandonCalls = %d, want 0 after completion", backend.abandonCalls)
	}
}

func TestEmptyInputNotSent(t *testing.T) {
	gw := tutor.NewScript()
	s := newTestScreen(gw, &mockBackend{}, newMockStages())
	drive(t, s)

	if cmd := s.submitChat(); cmd != nil {
		t.Error("empty input must not produce a send command")
	}
	if len(gw.Turns) != 0 {
		t.Errorf("gateway saw %d turns", len(gw.Turns))
	}
}
