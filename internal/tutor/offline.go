package tutor

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/novax/sochratic/internal/llm"
)

const offlineMaxTokens = 1500

// replyEnvelope is the JSON contract the offline tutor's model must honor.
// Online, control information rides as tags inside free text; offline we can
// demand the structured form directly.
var replyEnvelope = &llm.Envelope{
	Name: "tutor-reply",
	Definition: map[string]any{
		"type":     "object",
		"required": []any{"reply", "signal"},
		"properties": map[string]any{
			"reply": map[string]any{
				"type":        "string",
				"description": "The tutoring reply shown to the learner.",
			},
			"signal": map[string]any{
				"type":        "string",
				"description": "Control signal for the learning flow.",
				"enum":        []any{"none", "material", "implementation_start", "recall_start"},
			},
		},
	},
}

const offlineSystemBase = `You are Sochratic, a Socratic programming tutor.
Never hand the learner a finished answer in DEFAULT mode; guide with questions.
Respond with a JSON object {"reply": ..., "signal": ...}.`

// modeInstructions steer the model per stage, including which signal it is
// allowed to emit.
var modeInstructions = map[Mode]string{
	ModeDefault: `Mode DEFAULT: continue the guided conversation. Set signal
to "material" only when the learner clearly needs a concept explanation,
otherwise "none".`,
	ModeExplain: `Mode EXPLAIN_CONCEPT: produce a thorough markdown
explanation of the concept the learner is stuck on and set signal to
"material". If no explanation is warranted, reply conversationally with
signal "none".`,
	ModeSolution: `Mode REQUEST_SOLUTION: produce a worked draft solution for
the problem under discussion. Set signal to "none".`,
	ModeImplementation: `Mode ENTER_IMPLEMENTATION: restate the problem as a
concrete implementation task and set signal to "implementation_start".`,
	ModeRecall: `Mode ACTIVE_RECALL: ask the learner recall questions about
what was just studied and set signal to "recall_start".`,
}

// Offline is the Gateway backed directly by a model provider. It needs no
// backend session; conversation history is held per session id in memory.
type Offline struct {
	provider llm.Provider

	mu      sync.Mutex
	history map[string][]llm.Turn
}

// NewOffline creates a provider-backed gateway.
func NewOffline(provider llm.Provider) *Offline {
	return &Offline{
		provider: provider,
		history:  make(map[string][]llm.Turn),
	}
}

func (o *Offline) Send(ctx context.Context, turn Turn) (*Reply, error) {
	instr, ok := modeInstructions[turn.Mode]
	if !ok {
		return nil, fmt.Errorf("unknown tutor mode: %q", turn.Mode)
	}

	o.mu.Lock()
	history := append([]llm.Turn(nil), o.history[turn.SessionID]...)
	o.mu.Unlock()
	history = append(history, llm.Turn{Role: llm.RoleLearner, Text: turn.Text})

	out, err := o.provider.Complete(ctx, llm.Request{
		System:      offlineSystemBase + "\n\n" + instr,
		History:     history,
		Envelope:    replyEnvelope,
		MaxTokens:   offlineMaxTokens,
		Temperature: 0.3,
	})
	if err != nil {
		return nil, err
	}

	var env struct {
		Reply  string `json:"reply"`
		Signal string `json:"signal"`
	}
	if err := json.Unmarshal([]byte(out.Text), &env); err != nil {
		// The envelope was schema-validated by the provider; reaching
		// here means the validator and decoder disagree.
		return nil, fmt.Errorf("decode tutor envelope: %w", err)
	}

	o.mu.Lock()
	o.history[turn.SessionID] = append(history, llm.Turn{Role: llm.RoleTutor, Text: env.Reply})
	o.mu.Unlock()

	return &Reply{Text: env.Reply, Signal: ParseSignalName(env.Signal)}, nil
}

// Forget drops the in-memory history for a session.
func (o *Offline) Forget(sessionID string) {
	o.mu.Lock()
	delete(o.history, sessionID)
	o.mu.Unlock()
}
