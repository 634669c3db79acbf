package llm

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// envelopeCache caches compiled schemas by envelope name.
var envelopeCache sync.Map // map[string]*jsonschema.Schema

// validateEnvelope checks that text is JSON conforming to the envelope
// schema. Returns *ErrBadEnvelope on any failure.
func validateEnvelope(env *Envelope, text string) error {
	if env == nil {
		return nil
	}

	var parsed any
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return &ErrBadEnvelope{Text: text, Err: fmt.Errorf("invalid JSON: %w", err)}
	}

	compiled, err := compiledEnvelope(env)
	if err != nil {
		return &ErrBadEnvelope{Text: text, Err: fmt.Errorf("compile envelope %q: %w", env.Name, err)}
	}

	if err := compiled.Validate(parsed); err != nil {
		return &ErrBadEnvelope{Text: text, Err: fmt.Errorf("schema validation failed: %w", err)}
	}
	return nil
}

func compiledEnvelope(env *Envelope) (*jsonschema.Schema, error) {
	if cached, ok := envelopeCache.Load(env.Name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	// The compiler wants a parsed JSON value, not a Go map with arbitrary
	// value types; round-trip through encoding/json to normalize.
	defBytes, err := json.Marshal(env.Definition)
	if err != nil {
		return nil, fmt.Errorf("marshal definition: %w", err)
	}
	var defParsed any
	if err := json.Unmarshal(defBytes, &defParsed); err != nil {
		return nil, fmt.Errorf("parse definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("envelope://%s.json", env.Name)
	if err := c.AddResource(url, defParsed); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	envelopeCache.Store(env.Name, compiled)
	return compiled, nil
}
