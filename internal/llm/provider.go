// Package llm abstracts the model providers behind the offline tutor.
// The online path never touches this package; the backend owns its own models.
package llm

import "context"

// Provider is the single abstraction over model vendors.
type Provider interface {
	// Complete sends the conversation to the model and returns its output.
	// When the request carries an Envelope, the output Text is JSON that
	// has been validated against the envelope's schema.
	Complete(ctx context.Context, req Request) (*Completion, error)

	// ModelID returns the configured model identifier.
	ModelID() string
}

// Request describes one completion call.
type Request struct {
	// System sets the tutor persona and stage behavior.
	System string

	// History is the conversation so far, oldest turn first. The last
	// entry is the learner utterance being answered.
	History []Turn

	// Envelope, when set, asks the model for JSON conforming to the given
	// schema, using the vendor's native structured-output mechanism.
	Envelope *Envelope

	// MaxTokens bounds the response length.
	MaxTokens int

	// Temperature in [0,1]; zero means deterministic.
	Temperature float64
}

// Turn is one message of the conversation.
type Turn struct {
	Role Role
	Text string
}

// Role identifies the turn author.
type Role string

const (
	RoleLearner Role = "user"
	RoleTutor   Role = "assistant"
)

// Envelope names a JSON schema the response must conform to.
type Envelope struct {
	// Name identifies the envelope (tool name for Anthropic, schema name
	// for OpenAI). Kebab-case.
	Name string

	// Definition is the JSON Schema as a map.
	Definition map[string]any
}

// Completion holds the model output.
type Completion struct {
	// Text is the raw output: prose normally, JSON when an Envelope was
	// requested.
	Text string

	// Usage reports token consumption.
	Usage Usage

	// Model is the model that actually served the request.
	Model string

	// StopReason is normalized to "end" or "max_tokens".
	StopReason string
}

// Usage tracks token consumption for one request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
