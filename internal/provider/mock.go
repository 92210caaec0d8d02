package provider

import "context"

// MockClient is a scriptable Client for tests and offline development.
type MockClient struct {
	// CompleteFn handles each call when set.
	CompleteFn func(ctx context.Context, prompt string, maxTokens int) (*Completion, error)

	// Calls records every prompt dispatched.
	Calls []string
}

func (m *MockClient) Complete(ctx context.Context, prompt string, maxTokens int) (*Completion, error) {
	m.Calls = append(m.Calls, prompt)

	if m.CompleteFn != nil {
		return m.CompleteFn(ctx, prompt, maxTokens)
	}

	return &Completion{
		Text:         "{}",
		InputTokens:  estimateTokens(prompt),
		OutputTokens: 1,
	}, nil
}
