package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	Auth       AuthConfig
	RateLimit  RateLimitConfig
	Log        LogConfig
	Generation GenerationConfig
	SearchData SearchDataConfig
	Competitor CompetitorConfig
	Batch      BatchConfig
	Brand      BrandConfig
	Webhook    WebhookConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: false

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 // default: 5

	// Burst is the maximum burst size per API key.
	Burst int // default: 10
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// GenerationConfig controls the text-generation provider and retry policy.
//
// Two interchangeable OpenAI-compatible providers are supported; the first
// one with a key set wins (OpenAI preferred). At least one is required for
// the /generate path.
type GenerationConfig struct {
	// APIKey is the resolved provider key (OPENAI_API_KEY, else OPENROUTER_API_KEY).
	APIKey string

	// BaseURL is the resolved provider base URL.
	BaseURL string

	// Model is the default generation model.
	Model string // default: "gpt-4o-mini"

	// MaxRetries is the attempt budget for length-constrained generation.
	MaxRetries int // default: 3

	// MinWords / MaxWords are the brand length bounds for generated copy.
	MinWords int // default: 350
	MaxWords int // default: 500

	// MaxCompletionTokens caps the completion size requested per attempt.
	MaxCompletionTokens int // default: 1200

	// Timeout is the per-call deadline for the provider.
	Timeout time.Duration // default: 60s
}

// Configured reports whether a generation provider is usable.
func (g GenerationConfig) Configured() bool {
	return g.APIKey != ""
}

// SearchDataConfig controls the search-volume/SERP provider.
type SearchDataConfig struct {
	// Login and Password are the provider's basic-auth credential pair.
	Login    string
	Password string

	// BaseURL is the provider API root.
	BaseURL string // default: "https://api.dataforseo.com"

	// Location is the default location code (2840 = United States).
	Location int // default: 2840

	// Language is the default two-letter language code.
	Language string // default: "en"

	// PollAttempts bounds the task-polling fallback path.
	PollAttempts int // default: 6

	// Timeout is the per-call deadline for the provider.
	Timeout time.Duration // default: 30s

	// CacheTTL is how long volume lookups are served from memory before the
	// paid provider is asked again. Zero disables the cache.
	CacheTTL time.Duration // default: 30m

	// CacheEntries caps the volume cache size.
	CacheEntries int // default: 1000
}

// Configured reports whether the search-data provider is usable.
func (s SearchDataConfig) Configured() bool {
	return s.Login != "" && s.Password != ""
}

// CompetitorConfig controls competitor page fetching and extraction.
type CompetitorConfig struct {
	// Limit is how many top-ranking URLs are fetched per keyword.
	Limit int // default: 3

	// FetchTimeout is the per-URL deadline.
	FetchTimeout time.Duration // default: 10s

	// FetchStagger is the per-index launch delay to avoid tripping
	// remote rate limits.
	FetchStagger time.Duration // default: 1s

	// MaxContentChars truncates extracted page text.
	MaxContentChars int // default: 3000

	// MinContentChars filters near-empty extractions out of the prompt.
	MinContentChars int // default: 100

	// ContentFormat is "text" (collapsed plain text) or "markdown".
	ContentFormat string // default: "text"

	// StripSelectors are removed from competitor HTML before text extraction.
	StripSelectors []string
}

// BatchConfig controls batch orchestration.
type BatchConfig struct {
	// MaxConcurrent is the concurrency-group size: a throttle against
	// overwhelming downstream providers and bounding concurrent LLM spend.
	MaxConcurrent int // default: 3
}

// BrandConfig carries brand-level knobs.
type BrandConfig struct {
	// Domain is the operator's own domain, matched case-insensitively
	// against competitor domains for the already-ranking signal.
	Domain string // default: "seatpick.com"
}

// WebhookConfig controls batch lifecycle notifications. Disabled when URL
// is empty.
type WebhookConfig struct {
	// URL receives a signed POST per completed batch.
	URL string

	// Secret signs the webhook body (HMAC-SHA256). Optional.
	Secret string
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("COPYSMITH_HOST", "0.0.0.0"),
			Port: envIntOr("COPYSMITH_PORT", 8080),
			Mode: envOr("COPYSMITH_MODE", "release"),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("COPYSMITH_AUTH_ENABLED", false),
			APIKeys: envSliceOr("COPYSMITH_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("COPYSMITH_RATE_RPS", 5.0),
			Burst:             envIntOr("COPYSMITH_RATE_BURST", 10),
		},
		Log: LogConfig{
			Level:  envOr("COPYSMITH_LOG_LEVEL", "info"),
			Format: envOr("COPYSMITH_LOG_FORMAT", "json"),
		},
		Generation: loadGeneration(),
		SearchData: SearchDataConfig{
			Login:        os.Getenv("SERPDATA_LOGIN"),
			Password:     os.Getenv("SERPDATA_PASSWORD"),
			BaseURL:      envOr("SERPDATA_BASE_URL", "https://api.dataforseo.com"),
			Location:     envIntOr("COPYSMITH_LOCATION", 2840),
			Language:     envOr("COPYSMITH_LANGUAGE", "en"),
			PollAttempts: envIntOr("COPYSMITH_POLL_ATTEMPTS", 6),
			Timeout:      envDurationOr("COPYSMITH_SEARCH_TIMEOUT", 30*time.Second),
			CacheTTL:     envDurationOr("COPYSMITH_VOLUME_CACHE_TTL", 30*time.Minute),
			CacheEntries: envIntOr("COPYSMITH_VOLUME_CACHE_ENTRIES", 1000),
		},
		Competitor: CompetitorConfig{
			Limit:           envIntOr("COPYSMITH_COMPETITOR_LIMIT", 3),
			FetchTimeout:    envDurationOr("COPYSMITH_FETCH_TIMEOUT", 10*time.Second),
			FetchStagger:    envDurationOr("COPYSMITH_FETCH_STAGGER", time.Second),
			MaxContentChars: envIntOr("COPYSMITH_MAX_CONTENT_CHARS", 3000),
			MinContentChars: envIntOr("COPYSMITH_MIN_CONTENT_CHARS", 100),
			ContentFormat:   envOr("COPYSMITH_CONTENT_FORMAT", "text"),
			StripSelectors: envSliceOr("COPYSMITH_STRIP_SELECTORS", []string{
				"script", "style", "nav", "footer", "header", "aside", "noscript", "form", "iframe",
			}),
		},
		Batch: BatchConfig{
			MaxConcurrent: envIntOr("COPYSMITH_MAX_CONCURRENT", 3),
		},
		Brand: BrandConfig{
			Domain: envOr("COPYSMITH_BRAND_DOMAIN", "seatpick.com"),
		},
		Webhook: WebhookConfig{
			URL:    os.Getenv("COPYSMITH_WEBHOOK_URL"),
			Secret: os.Getenv("COPYSMITH_WEBHOOK_SECRET"),
		},
	}
}

// loadGeneration resolves the generation provider from either credential
// pair. OpenAI wins when both are set.
func loadGeneration() GenerationConfig {
	g := GenerationConfig{
		Model:               envOr("COPYSMITH_MODEL", "gpt-4o-mini"),
		MaxRetries:          envIntOr("COPYSMITH_MAX_RETRIES", 3),
		MinWords:            envIntOr("COPYSMITH_MIN_WORDS", 350),
		MaxWords:            envIntOr("COPYSMITH_MAX_WORDS", 500),
		MaxCompletionTokens: envIntOr("COPYSMITH_MAX_COMPLETION_TOKENS", 1200),
		Timeout:             envDurationOr("COPYSMITH_LLM_TIMEOUT", 60*time.Second),
	}

	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		g.APIKey = key
		g.BaseURL = envOr("OPENAI_BASE_URL", "https://api.openai.com/v1")
		return g
	}
	if key := os.Getenv("OPENROUTER_API_KEY"); key != "" {
		g.APIKey = key
		g.BaseURL = envOr("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1")
	}
	return g
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
