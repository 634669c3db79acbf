// Package session manages the lifetime of one backend learning session:
// created when a study screen mounts, then either completed for EXP or
// abandoned best-effort.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/novax/sochratic/internal/api"
)

// ErrAlreadyCreated is returned when Create is called on a manager that
// already holds a live session. One manager, one backend session.
var ErrAlreadyCreated = errors.New("session already created")

// ErrNoSession is returned when Complete is called before Create.
var ErrNoSession = errors.New("no active session")

// Backend is the slice of the API the manager needs.
type Backend interface {
	CreateSession(ctx context.Context, req api.CreateSessionRequest) (*api.SessionResponse, error)
	AbandonSession(ctx context.Context, sessionID string) error
	CompleteSession(ctx context.Context, sessionID string, req api.CompleteRequest) (*api.CompleteResponse, error)
}

// Recorder receives lifecycle events for local history. Failures are the
// recorder's problem; the manager never blocks on it.
type Recorder interface {
	RecordSession(sessionID string, userID, topicID int, outcome string, totalExp int)
}

// Reward is the EXP breakdown returned by completion.
type Reward struct {
	TotalExp  int
	Level     int
	ExpPoints []api.ExpPoint
}

// Manager owns one (user, topic) session.
type Manager struct {
	backend  Backend
	recorder Recorder
	log      *zap.Logger

	userID  int
	topicID int

	mu        sync.Mutex
	sessionID string
	completed bool
}

// NewManager creates a manager for one study attempt. recorder may be nil.
func NewManager(backend Backend, recorder Recorder, log *zap.Logger, userID, topicID int) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		backend:  backend,
		recorder: recorder,
		log:      log,
		userID:   userID,
		topicID:  topicID,
	}
}

// Create starts the backend session. Validation failures happen before any
// network call. Calling Create twice is an error: it would open a second
// backend session nothing ever closes.
func (m *Manager) Create(ctx context.Context) (string, error) {
	if m.topicID <= 0 {
		return "", fmt.Errorf("invalid topic id: %d", m.topicID)
	}
	if m.userID <= 0 {
		return "", fmt.Errorf("invalid user id: %d", m.userID)
	}

	m.mu.Lock()
	if m.sessionID != "" {
		m.mu.Unlock()
		return "", ErrAlreadyCreated
	}
	m.mu.Unlock()

	resp, err := m.backend.CreateSession(ctx, api.CreateSessionRequest{
		UserID:  m.userID,
		TopicID: m.topicID,
	})
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}

	m.mu.Lock()
	m.sessionID = resp.SessionID
	m.mu.Unlock()

	m.log.Info("session created",
		zap.String("session_id", resp.SessionID),
		zap.Int("topic_id", m.topicID))

	if m.recorder != nil {
		m.recorder.RecordSession(resp.SessionID, m.userID, m.topicID, "created", 0)
	}
	return resp.SessionID, nil
}

// SessionID returns the live session id, or "" before Create.
func (m *Manager) SessionID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessionID
}

// Abandon notifies the backend that the session ends without completion.
// Best-effort: errors are logged, never returned. No-op when there is no
// session or it was already completed.
func (m *Manager) Abandon(ctx context.Context) {
	m.mu.Lock()
	id := m.sessionID
	done := m.completed
	m.mu.Unlock()

	if id == "" || done {
		return
	}

	if err := m.backend.AbandonSession(ctx, id); err != nil {
		m.log.Warn("abandon session failed",
			zap.String("session_id", id),
			zap.Error(err))
	} else {
		m.log.Info("session abandoned", zap.String("session_id", id))
	}
	if m.recorder != nil {
		m.recorder.RecordSession(id, m.userID, m.topicID, "abandoned", 0)
	}
}

// Complete finishes the session and claims EXP. Every failure is surfaced:
// a swallowed error here is lost user-visible reward. Retrying after a
// failure is allowed and hits the backend with the same arguments.
func (m *Manager) Complete(ctx context.Context) (*Reward, error) {
	m.mu.Lock()
	id := m.sessionID
	m.mu.Unlock()

	if id == "" {
		return nil, ErrNoSession
	}

	resp, err := m.backend.CompleteSession(ctx, id, api.CompleteRequest{
		UserID:  m.userID,
		TopicID: m.topicID,
	})
	if err != nil {
		return nil, fmt.Errorf("complete session: %w", err)
	}

	m.mu.Lock()
	m.completed = true
	m.mu.Unlock()

	m.log.Info("session completed",
		zap.String("session_id", id),
		zap.Int("total_exp", resp.TotalExp),
		zap.Int("level", resp.Level))

	if m.recorder != nil {
		m.recorder.RecordSession(id, m.userID, m.topicID, "completed", resp.TotalExp)
	}
	return &Reward{
		TotalExp:  resp.TotalExp,
		Level:     resp.Level,
		ExpPoints: resp.ExpPoints,
	}, nil
}

// Completed reports whether the session finished successfully.
func (m *Manager) Completed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.completed
}
