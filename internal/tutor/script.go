package tutor

import (
	"context"
	"sync"
)

// Script is a deterministic Gateway for tests and demos. Replies are served
// in FIFO order; signals are parsed from the reply text exactly like the
// remote gateway does, so scripted tags behave like backend tags.
type Script struct {
	mu      sync.Mutex
	replies []string
	Turns   []Turn
	Err     error
}

// NewScript creates a Script gateway with the given canned replies.
func NewScript(replies ...string) *Script {
	return &Script{replies: replies}
}

func (s *Script) Send(_ context.Context, turn Turn) (*Reply, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Turns = append(s.Turns, turn)

	if s.Err != nil {
		return nil, s.Err
	}
	if len(s.replies) == 0 {
		return &Reply{Text: "Keep going. What do you think happens next?"}, nil
	}
	text := s.replies[0]
	s.replies = s.replies[1:]
	return &Reply{Text: text, Signal: ParseSignal(text)}, nil
}

// Add appends a canned reply.
func (s *Script) Add(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies = append(s.replies, text)
}
