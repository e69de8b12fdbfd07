package llm

import (
	"context"
	"sync/atomic"
)

// MockClient is a Client whose behaviour is supplied by function fields.
// It is used by tests across the reader pipeline.
type MockClient struct {
	GenerateContentFunc func(ctx context.Context, prompt string, tier ModelTier) (string, error)
	GenerateJSONFunc    func(ctx context.Context, prompt string, tier ModelTier) (string, error)

	calls atomic.Int64
}

// GenerateContent delegates to GenerateContentFunc.
func (m *MockClient) GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	m.calls.Add(1)
	if m.GenerateContentFunc != nil {
		return m.GenerateContentFunc(ctx, prompt, tier)
	}
	return "", nil
}

// GenerateJSON delegates to GenerateJSONFunc, then to GenerateContentFunc.
func (m *MockClient) GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	if m.GenerateJSONFunc != nil {
		m.calls.Add(1)
		return m.GenerateJSONFunc(ctx, prompt, tier)
	}
	return m.GenerateContent(ctx, prompt, tier)
}

// GetModel returns a fixed model name.
func (m *MockClient) GetModel(ModelTier) string { return "mock-model" }

// Close is a no-op.
func (m *MockClient) Close() error { return nil }

// Calls reports how many generation calls were made.
func (m *MockClient) Calls() int { return int(m.calls.Load()) }
