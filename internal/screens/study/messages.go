package study

import (
	"time"

	"github.com/novax/sochratic/internal/flow"
)

// startedMsg is sent when the backend session has been created and any
// saved stage restored.
type startedMsg struct {
	SessionID string
	Stage     flow.Stage
	Err       error
}

// replyMsg is sent when a chat turn or stage transition settles.
type replyMsg struct {
	Res *flow.Result
	Err error
}

// spinnerTickMsg is sent at short intervals to animate the thinking spinner.
type spinnerTickMsg time.Time

// stageSavedMsg confirms the resume point was persisted. Carries nothing;
// persistence failures are invisible to the learner.
type stageSavedMsg struct{}
