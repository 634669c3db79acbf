package flow

import (
	"time"

	"github.com/google/uuid"
)

// Author identifies who produced a transcript message.
type Author string

const (
	AuthorLearner Author = "user"
	AuthorTutor   Author = "ai"
)

// Message is one turn of the guided conversation. The transcript is
// append-only and lives only as long as the study screen.
type Message struct {
	ID        string
	Author    Author
	Text      string
	Time      time.Time
	Important bool
}

func newMessage(author Author, text string, important bool) Message {
	return Message{
		ID:        uuid.New().String(),
		Author:    author,
		Text:      text,
		Time:      time.Now(),
		Important: important,
	}
}

// Artifacts are the text payloads stages hand to each other. Ownership
// transfers by copy; no stage holds a reference into another's data.
type Artifacts struct {
	// AIText is the explanatory material consumed by the explanation stage.
	AIText string

	// Problem is the implementation context consumed by realisation.
	Problem string

	// FinalSolution is the solution draft: AI-seeded, learner-edited.
	FinalSolution string
}
