package llm

import (
	"context"
	"errors"
)

// Errors shared by the providers.
var (
	ErrMissingAPIKey = errors.New("API key is required")
	ErrEmptyResponse = errors.New("model returned no text")
)

// Client is an abstraction over LLM providers: submit a prompt, receive text.
type Client interface {
	// GenerateContent generates text content using the specified model tier
	GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error)
	// GenerateJSON asks for a JSON answer and strips any markdown fence around it
	GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error)
	// GetModel returns the underlying provider model for a tier
	GetModel(tier ModelTier) string
	// Close releases any resources held by the client
	Close() error
}

// NewClient creates the client for config.Provider. A nil config selects the Gemini defaults.
func NewClient(ctx context.Context, config *Config, apiKey string) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	if config.Provider == ProviderOpenAI {
		return NewOpenAIClient(config, apiKey)
	}
	return NewGeminiClient(ctx, config, apiKey)
}
