package tutor

import (
	"context"

	"github.com/novax/sochratic/internal/api"
)

// Remote is the Gateway backed by the Sochratic backend. The backend still
// speaks in embedded tags, so the signal is parsed out of the reply text.
type Remote struct {
	client *api.Client
}

// NewRemote creates a backend-backed gateway.
func NewRemote(client *api.Client) *Remote {
	return &Remote{client: client}
}

func (r *Remote) Send(ctx context.Context, turn Turn) (*Reply, error) {
	reply, err := r.client.SendMessage(ctx, api.ChatRequest{
		TopicID:   turn.TopicID,
		Message:   turn.Text,
		UserID:    turn.UserID,
		SessionID: turn.SessionID,
		Mode:      string(turn.Mode),
	})
	if err != nil {
		return nil, err
	}
	return &Reply{Text: reply, Signal: ParseSignal(reply)}, nil
}
