package llm

import (
	"context"
	"sync"
)

// --- Mock Provider for Testing ---

// MockProvider records prompts and answers with a canned response.
type MockProvider struct {
	mu       sync.Mutex
	Response string
	Err      error
	prompts  []string

	// CompleteFunc can be overridden for custom behavior
	CompleteFunc func(ctx context.Context, prompt string) (string, error)
}

func NewMockProvider(response string) *MockProvider {
	return &MockProvider{Response: response}
}

func (m *MockProvider) Complete(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	fn := m.CompleteFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, prompt)
	}
	return m.Response, m.Err
}

// Prompts returns every prompt seen so far.
func (m *MockProvider) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

// MockFactory returns a Factory that always hands out p and remembers the
// requested kinds and keys.
func MockFactory(p Provider) (Factory, *[]ProviderKind) {
	var mu sync.Mutex
	kinds := &[]ProviderKind{}
	return func(kind ProviderKind, apiKey string) (Provider, error) {
		mu.Lock()
		defer mu.Unlock()
		*kinds = append(*kinds, kind)
		return p, nil
	}, kinds
}
