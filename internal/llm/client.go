// Package llm defines the generative backend abstraction for the chatbot.
package llm

import "context"

// Reply is the backend's answer to one assembled prompt, with the token
// counts that feed usage accounting. Counts are backend-reported when
// available, otherwise estimated.
type Reply struct {
	Text         string
	InputTokens  int
	OutputTokens int
}

// Client is the interface to the generative backend: one operation, from
// assembled prompt to text plus token counts.
type Client interface {
	Generate(ctx context.Context, prompt string) (*Reply, error)
}
