package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// EndpointConfig limits one route. Paths ending in "/" match by prefix.
type EndpointConfig struct {
	Path   string
	Method string
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// LoadConfig loads rate limiting configuration from environment variables.
func LoadConfig() *Config {
	return LoadConfigFrom(os.LookupEnv)
}

// LoadConfigFrom loads rate limiting configuration from lookup.
func LoadConfigFrom(lookup func(string) (string, bool)) *Config {
	env := envReader(lookup)
	if !env.boolean("RATE_LIMIT_ENABLED", true) {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    env.integer("RATE_LIMIT_DEFAULT_LIMIT", 600),
		DefaultWindow:   env.duration("RATE_LIMIT_DEFAULT_WINDOW", time.Minute),
		CleanupInterval: env.duration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		IdleTTL:         env.duration("RATE_LIMIT_IDLE_TTL", time.Hour),
		Whitelist:       parseIPList(env.str("RATE_LIMIT_WHITELIST", "")),
		Blacklist:       parseIPList(env.str("RATE_LIMIT_BLACKLIST", "")),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the default endpoint-specific configurations.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Model-backed operations
		{Path: "/enhance", Method: "POST", Limit: 30, Window: time.Minute, Burst: 5},
		{Path: "/enhance/single", Method: "POST", Limit: 300, Window: time.Minute, Burst: 30},
		{Path: "/structure", Method: "POST", Limit: 30, Window: time.Minute, Burst: 5},

		// Outbound fetches and parsing
		{Path: "/fetch", Method: "POST", Limit: 60, Window: time.Minute, Burst: 10},
		{Path: "/parse", Method: "POST", Limit: 60, Window: time.Minute, Burst: 10},

		// Store writes
		{Path: "/articles", Method: "POST", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/articles/", Method: "DELETE", Limit: 100, Window: time.Minute, Burst: 10},

		// Reads use the default limit; health checks and preflights are unlimited
	}
}

type envReader func(string) (string, bool)

func (e envReader) str(key, def string) string {
	if v, ok := e(key); ok && v != "" {
		return v
	}
	return def
}

func (e envReader) integer(key string, def int) int {
	if v, err := strconv.Atoi(e.str(key, "")); err == nil {
		return v
	}
	return def
}

func (e envReader) boolean(key string, def bool) bool {
	if v, err := strconv.ParseBool(e.str(key, "")); err == nil {
		return v
	}
	return def
}

func (e envReader) duration(key string, def time.Duration) time.Duration {
	if v, err := time.ParseDuration(e.str(key, "")); err == nil {
		return v
	}
	return def
}

// parseIPList parses a comma-separated list of IP addresses into a set.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
