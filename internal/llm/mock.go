package llm

import (
	"context"
	"fmt"
	"sync"
)

// MockClient is a configurable mock backend for tests and local development.
// Responses are returned in order; once exhausted the last one repeats.
type MockClient struct {
	mu        sync.Mutex
	responses []Reply
	callIndex int
	prompts   []string
}

// NewMockClient creates a mock client with a sequence of responses. Replies
// with zero token counts get estimated counts filled in.
func NewMockClient(responses ...Reply) *MockClient {
	return &MockClient{responses: responses}
}

// Generate implements Client.
func (m *MockClient) Generate(_ context.Context, prompt string) (*Reply, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.prompts = append(m.prompts, prompt)

	if len(m.responses) == 0 {
		return nil, fmt.Errorf("mock: no responses configured")
	}

	idx := m.callIndex
	if idx >= len(m.responses) {
		idx = len(m.responses) - 1
	} else {
		m.callIndex++
	}

	resp := m.responses[idx]
	if resp.InputTokens == 0 {
		resp.InputTokens = EstimateTokens(prompt)
	}
	if resp.OutputTokens == 0 {
		resp.OutputTokens = EstimateTokens(resp.Text)
	}
	return &resp, nil
}

// Prompts returns the prompts received so far.
func (m *MockClient) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}
