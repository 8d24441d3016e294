package model

import "time"

// Config holds the complete claimcheck configuration
type Config struct {
	Oracle      OracleConfig      `yaml:"oracle" mapstructure:"oracle"`
	Index       IndexConfig       `yaml:"index" mapstructure:"index"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit" mapstructure:"rate_limit"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
}

// OracleConfig configures the LLM oracle used for classification and suggestions
type OracleConfig struct {
	// Provider name: "openai", "ollama", "scripted", "" (scripted)
	Provider string `yaml:"provider" mapstructure:"provider"`
	// Model name (provider-specific)
	Model string `yaml:"model" mapstructure:"model"`
	// APIKey for hosted providers (prefer OPENAI_API_KEY env var)
	APIKey string `yaml:"api_key,omitempty" mapstructure:"api_key"`
	// BaseURL for custom endpoints (e.g. Ollama)
	BaseURL string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	// Timeout bounds every single oracle call; a hung call never blocks the claim
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// MaxTokens for suggestion generation
	MaxTokens int `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// IndexConfig configures the policy-exclusion retrieval index
type IndexConfig struct {
	// CorpusPath points to a YAML policy corpus; empty uses the built-in corpus
	CorpusPath string `yaml:"corpus_path,omitempty" mapstructure:"corpus_path"`
	// Threshold is the minimum cosine similarity for a usable policy match
	Threshold float64 `yaml:"threshold" mapstructure:"threshold"`
	// TopK candidates retrieved per query before threshold filtering
	TopK int `yaml:"top_k" mapstructure:"top_k"`
	// Embedder name: "openai" or "hash" (local, deterministic)
	Embedder string `yaml:"embedder" mapstructure:"embedder"`
}

// CacheConfig configures embedding and classification caching
type CacheConfig struct {
	Enabled         bool          `yaml:"enabled" mapstructure:"enabled"`
	TTL             time.Duration `yaml:"ttl" mapstructure:"ttl"`
	CleanupInterval time.Duration `yaml:"cleanup_interval" mapstructure:"cleanup_interval"`
}

// ConcurrencyConfig configures the per-claim evaluation fan-out
type ConcurrencyConfig struct {
	// Workers bounds concurrent evaluator calls within one claim
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// RateLimitConfig bounds outbound oracle calls per provider
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// OutputConfig configures report rendering
type OutputConfig struct {
	Verbose       bool `yaml:"verbose" mapstructure:"verbose"`
	IncludeFooter bool `yaml:"include_footer" mapstructure:"include_footer"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Oracle: OracleConfig{
			Provider:  "",
			Model:     "",
			Timeout:   20 * time.Second,
			MaxTokens: 500,
		},
		Index: IndexConfig{
			Threshold: 0.3,
			TopK:      3,
			Embedder:  "hash",
		},
		Cache: CacheConfig{
			Enabled:         true,
			TTL:             time.Hour,
			CleanupInterval: 10 * time.Minute,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 6, // five fields + the clinical check
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 5,
			BurstSize:         5,
		},
		Output: OutputConfig{
			Verbose:       false,
			IncludeFooter: true,
		},
	}
}
