package ai

import (
	"context"
	"encoding/json"
)

// Message is one turn of a chat exchange.
type Message struct {
	Role    string `json:"role"` // system, user, assistant
	Content string `json:"content"`
}

// Generator is the opaque LLM collaborator: send a prompt, get JSON back,
// or stream a dialogue token by token. Failures surface as
// GENERATION_FAILURE errors and must never corrupt application state.
type Generator interface {
	// Generate runs a single completion constrained to a JSON object.
	Generate(ctx context.Context, system, prompt string) (json.RawMessage, error)

	// StreamChat streams assistant tokens for a conversation. Both
	// channels are closed when the stream ends; at most one error is sent.
	StreamChat(ctx context.Context, messages []Message) (<-chan string, <-chan error)
}

// Ensure Client implements the interface
var _ Generator = (*Client)(nil)
