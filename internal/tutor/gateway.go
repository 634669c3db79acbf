// Package tutor is the chat gateway between the stage flow and whatever
// produces tutoring replies: the Sochratic backend online, a model provider
// offline, or a script in tests.
package tutor

import "context"

// Mode tells the tutor which stage-specific behavior to use for a turn.
type Mode string

const (
	ModeDefault        Mode = "DEFAULT"
	ModeExplain        Mode = "EXPLAIN_CONCEPT"
	ModeSolution       Mode = "REQUEST_SOLUTION"
	ModeImplementation Mode = "ENTER_IMPLEMENTATION"
	ModeRecall         Mode = "ACTIVE_RECALL"
)

// Turn is one learner utterance sent to the tutor.
type Turn struct {
	SessionID string
	TopicID   int
	UserID    int
	Text      string
	Mode      Mode
}

// Reply is the structured response envelope. Signal carries the control
// information that used to be sniffed out of the reply text.
type Reply struct {
	Text   string
	Signal Signal
}

// Gateway produces tutoring replies.
type Gateway interface {
	Send(ctx context.Context, turn Turn) (*Reply, error)
}
