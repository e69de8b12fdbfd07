// Package llm provides centralized LLM configuration and client abstractions.
// The reader pipeline talks to the generation service only through Client.
package llm

import (
	"fmt"
	"maps"
)

// ModelTier represents the complexity/capability level of a model
type ModelTier string

const (
	// TierLite is for high-volume, simple tasks: per-paragraph insight selection
	TierLite ModelTier = "lite"
	// TierStandard is for moderate reasoning: article outlines, paste restructuring
	TierStandard ModelTier = "standard"
	// TierAdvanced is reserved for overrides that need a stronger model
	TierAdvanced ModelTier = "advanced"
)

// Provider represents an LLM provider
type Provider string

// Provider constants define supported LLM providers
const (
	// ProviderGemini is the Google Gemini provider
	ProviderGemini Provider = "gemini"
	// ProviderOpenAI is the OpenAI provider
	ProviderOpenAI Provider = "openai"
)

// ParseProvider converts a configuration string into a Provider.
// An empty string selects Gemini.
func ParseProvider(s string) (Provider, error) {
	switch Provider(s) {
	case "", ProviderGemini:
		return ProviderGemini, nil
	case ProviderOpenAI:
		return ProviderOpenAI, nil
	default:
		return "", fmt.Errorf("unknown LLM provider %q", s)
	}
}

// DefaultTemperature keeps answers close to verbatim quotes of the input.
const DefaultTemperature = 0.1

// defaultModels lists the model per tier for each provider.
var defaultModels = map[Provider]map[ModelTier]string{
	ProviderGemini: {
		TierLite:     "gemini-2.5-flash-lite",
		TierStandard: "gemini-2.5-flash",
		TierAdvanced: "gemini-2.5-pro",
	},
	ProviderOpenAI: {
		TierLite:     "gpt-4o-mini",
		TierStandard: "gpt-4o-mini",
		TierAdvanced: "gpt-4o",
	},
}

// Config holds the model configuration for the application
type Config struct {
	Provider    Provider
	Models      map[ModelTier]string
	Temperature float64 // zero means DefaultTemperature
}

// DefaultConfig returns the default configuration (Gemini)
func DefaultConfig() *Config {
	return ConfigFor(ProviderGemini)
}

// ConfigFor returns the default configuration for a provider. Unknown providers get Gemini.
func ConfigFor(provider Provider) *Config {
	models, ok := defaultModels[provider]
	if !ok {
		provider, models = ProviderGemini, defaultModels[ProviderGemini]
	}
	return &Config{Provider: provider, Models: maps.Clone(models)}
}

// DefaultGeminiConfig returns the default Gemini configuration
func DefaultGeminiConfig() *Config {
	return ConfigFor(ProviderGemini)
}

// DefaultOpenAIConfig returns the default OpenAI configuration
func DefaultOpenAIConfig() *Config {
	return ConfigFor(ProviderOpenAI)
}

// GetModel returns the model name for a tier, falling back to standard, then lite.
func (c *Config) GetModel(tier ModelTier) string {
	for _, t := range []ModelTier{tier, TierStandard, TierLite} {
		if model, ok := c.Models[t]; ok {
			return model
		}
	}
	return ""
}

// WithModel returns a copy of c with model set for tier.
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	out := *c
	out.Models = maps.Clone(c.Models)
	if out.Models == nil {
		out.Models = make(map[ModelTier]string)
	}
	out.Models[tier] = model
	return &out
}

func (c *Config) temperature() float64 {
	if c.Temperature <= 0 {
		return DefaultTemperature
	}
	return c.Temperature
}
