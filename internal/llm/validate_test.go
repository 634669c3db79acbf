package llm

import (
	"errors"
	"testing"
)

func replyEnvelope() *Envelope {
	return &Envelope{
		Name: "tutor-reply",
		Definition: map[string]any{
			"type":     "object",
			"required": []any{"reply", "signal"},
			"properties": map[string]any{
				"reply": map[string]any{"type": "string"},
				"signal": map[string]any{
					"type": "string",
					"enum": []any{"none", "material", "implementation_start", "recall_start"},
				},
			},
		},
	}
}

func TestValidateEnvelope_Valid(t *testing.T) {
	err := validateEnvelope(replyEnvelope(), `{"reply":"think about it","signal":"none"}`)
	if err != nil {
		t.Fatalf("validateEnvelope: %v", err)
	}
}

func TestValidateEnvelope_NotJSON(t *testing.T) {
	err := validateEnvelope(replyEnvelope(), `just some prose`)
	var bad *ErrBadEnvelope
	if !errors.As(err, &bad) {
		t.Fatalf("error = %v, want *ErrBadEnvelope", err)
	}
}

func TestValidateEnvelope_WrongShape(t *testing.T) {
	err := validateEnvelope(replyEnvelope(), `{"reply":"hi","signal":"explode"}`)
	var bad *ErrBadEnvelope
	if !errors.As(err, &bad) {
		t.Fatalf("error = %v, want *ErrBadEnvelope", err)
	}
}

func TestValidateEnvelope_NilEnvelope(t *testing.T) {
	if err := validateEnvelope(nil, "any text at all"); err != nil {
		t.Fatalf("nil envelope must not validate: %v", err)
	}
}
