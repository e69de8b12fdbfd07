// Package config provides configuration loading and validation for the reader API and CLI.
package config

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jonathan/premium-reader/internal/llm"
	"github.com/jonathan/premium-reader/internal/logging"
)

// Defaults
const (
	DefaultPort         = 3001
	DefaultHost         = "0.0.0.0"
	DefaultLogLevel     = "info"
	DefaultFetchTimeout = "15s"
)

// DefaultAllowedOrigins are the web origins allowed by CORS without configuration.
var DefaultAllowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"}

// Config represents the server and CLI configuration. It can be loaded from a
// JSON or YAML file and is then overridden by the environment.
type Config struct {
	Port     int    `json:"port,omitempty" yaml:"port,omitempty"`
	Host     string `json:"host,omitempty" yaml:"host,omitempty"`
	LogLevel string `json:"log_level,omitempty" yaml:"log_level,omitempty"`

	// LLM
	LLMProvider  string            `json:"llm_provider,omitempty" yaml:"llm_provider,omitempty"` // gemini or openai
	GeminiAPIKey string            `json:"gemini_api_key,omitempty" yaml:"gemini_api_key,omitempty"`
	OpenAIAPIKey string            `json:"openai_api_key,omitempty" yaml:"openai_api_key,omitempty"`
	Models       map[string]string `json:"models,omitempty" yaml:"models,omitempty"` // tier -> model override

	// Storage; empty keeps saved articles in memory
	DatabaseURL string `json:"database_url,omitempty" yaml:"database_url,omitempty"`

	AllowedOrigins []string `json:"allowed_origins,omitempty" yaml:"allowed_origins,omitempty"`

	// Behavior
	UseBrowser         bool   `json:"use_browser,omitempty" yaml:"use_browser,omitempty"`                   // Retry with headless browser when no article is found
	PasteAIStructuring bool   `json:"paste_ai_structuring,omitempty" yaml:"paste_ai_structuring,omitempty"` // Restructure long pastes with the model
	FetchTimeout       string `json:"fetch_timeout,omitempty" yaml:"fetch_timeout,omitempty"`               // Go duration, e.g. "15s"
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Port:           DefaultPort,
		Host:           DefaultHost,
		LogLevel:       DefaultLogLevel,
		LLMProvider:    string(llm.ProviderGemini),
		AllowedOrigins: slices.Clone(DefaultAllowedOrigins),
		FetchTimeout:   DefaultFetchTimeout,
	}
}

// LoadConfig loads configuration from a JSON or YAML file, chosen by extension.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

// Load builds the effective configuration: defaults, then the optional file at
// path, then the environment. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		fileCfg, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = fileCfg.MergeWithDefaults(cfg)
	}

	cfg.ApplyEnv(os.LookupEnv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyEnv overrides fields from environment variables present in lookup.
// WEB_APP_URL is appended to the allowed origins rather than replacing them.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(key); ok && v != "" {
			if parsed, err := strconv.ParseBool(v); err == nil {
				*dst = parsed
			}
		}
	}

	if v, ok := lookup("PORT"); ok && v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Port = port
		} else {
			c.Port = -1
		}
	}
	str("HOST", &c.Host)
	str("LOG_LEVEL", &c.LogLevel)
	str("LLM_PROVIDER", &c.LLMProvider)
	str("GEMINI_API_KEY", &c.GeminiAPIKey)
	str("OPENAI_API_KEY", &c.OpenAIAPIKey)
	str("DATABASE_URL", &c.DatabaseURL)
	str("FETCH_TIMEOUT", &c.FetchTimeout)
	boolean("USE_BROWSER", &c.UseBrowser)
	boolean("PASTE_AI_STRUCTURING", &c.PasteAIStructuring)

	if v, ok := lookup("WEB_APP_URL"); ok && v != "" && !slices.Contains(c.AllowedOrigins, v) {
		c.AllowedOrigins = append(c.AllowedOrigins, v)
	}
}

// Validate checks that the configuration has valid values.
// A missing API key is not an error: the model-backed features degrade instead.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 1 and 65535")
	}
	if _, err := llm.ParseProvider(c.LLMProvider); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if c.LogLevel != "" && !logging.ValidLevel(c.LogLevel) {
		return fmt.Errorf("config error: unknown log level %q", c.LogLevel)
	}
	if _, err := c.FetchTimeoutDuration(); err != nil {
		return err
	}
	for tier := range c.Models {
		switch llm.ModelTier(tier) {
		case llm.TierLite, llm.TierStandard, llm.TierAdvanced:
		default:
			return fmt.Errorf("config error: unknown model tier %q", tier)
		}
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.Host == "" {
		result.Host = defaults.Host
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}
	if result.LLMProvider == "" {
		result.LLMProvider = defaults.LLMProvider
	}
	if result.GeminiAPIKey == "" {
		result.GeminiAPIKey = defaults.GeminiAPIKey
	}
	if result.OpenAIAPIKey == "" {
		result.OpenAIAPIKey = defaults.OpenAIAPIKey
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.FetchTimeout == "" {
		result.FetchTimeout = defaults.FetchTimeout
	}

	// Int fields: use default if zero
	if result.Port == 0 {
		result.Port = defaults.Port
	}

	if len(result.AllowedOrigins) == 0 {
		result.AllowedOrigins = slices.Clone(defaults.AllowedOrigins)
	}
	if len(result.Models) == 0 && len(defaults.Models) > 0 {
		result.Models = defaults.Models
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (the file or environment always wins for bools)

	return result
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// FetchTimeoutDuration parses FetchTimeout. Empty means the default.
func (c *Config) FetchTimeoutDuration() (time.Duration, error) {
	raw := c.FetchTimeout
	if raw == "" {
		raw = DefaultFetchTimeout
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("config error: invalid 'fetch_timeout' %q: %w", raw, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("config error: 'fetch_timeout' must be positive")
	}
	return d, nil
}

// Provider returns the configured LLM provider, defaulting to Gemini.
func (c *Config) Provider() llm.Provider {
	p, err := llm.ParseProvider(c.LLMProvider)
	if err != nil {
		return llm.ProviderGemini
	}
	return p
}

// APIKey returns the key for the configured provider.
func (c *Config) APIKey() string {
	if c.Provider() == llm.ProviderOpenAI {
		return c.OpenAIAPIKey
	}
	return c.GeminiAPIKey
}

// LLMConfigured reports whether an API key is available for the provider.
func (c *Config) LLMConfigured() bool {
	return c.APIKey() != ""
}

// LLMConfig returns the model configuration with any per-tier overrides applied.
func (c *Config) LLMConfig() *llm.Config {
	cfg := llm.ConfigFor(c.Provider())
	for tier, model := range c.Models {
		if model != "" {
			cfg = cfg.WithModel(llm.ModelTier(tier), model)
		}
	}
	return cfg
}
