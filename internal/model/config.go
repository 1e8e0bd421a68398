package model

import "time"

// Config is the application configuration. Values come from defaults, the
// config file (~/.cardrisk/config.yaml), CARDRISK_* environment variables,
// and CLI flags, in ascending priority.
type Config struct {
	Hub          HubConfig          `yaml:"hub" json:"hub"`
	Cache        CacheConfig        `yaml:"cache" json:"cache"`
	Policy       PolicyConfig       `yaml:"policy" json:"policy"`
	Output       OutputConfig       `yaml:"output" json:"output"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" json:"concurrency"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" json:"rate_limiting"`
	LLM          LLMConfig          `yaml:"llm" json:"llm"`
}

// HubConfig configures the model registry client.
type HubConfig struct {
	Endpoint     string        `yaml:"endpoint" json:"endpoint"`
	Token        string        `yaml:"-" json:"-"` // from HF_TOKEN / HUGGINGFACE_HUB_TOKEN, never persisted
	Timeout      time.Duration `yaml:"timeout" json:"timeout"`
	UserAgent    string        `yaml:"user_agent" json:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" json:"max_body_bytes"`
}

// CacheConfig configures the fetch memoization cache.
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" json:"enabled"`
	Dir       string        `yaml:"dir" json:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" json:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" json:"disk_ttl"`
}

// PolicyConfig locates the risk policy override document.
type PolicyConfig struct {
	Dir string `yaml:"dir" json:"dir"` // directory holding risk_policy.json
}

// OutputConfig controls report rendering.
type OutputConfig struct {
	Dir     string `yaml:"dir" json:"dir"`
	Verbose bool   `yaml:"verbose" json:"verbose"`
}

// ConcurrencyConfig controls batch processing.
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" json:"workers"`
}

// RateLimitingConfig throttles requests against the hub.
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" json:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" json:"burst_size"`
}

// LLMConfig configures the optional reviewer summary. Disabled unless a
// provider is set; the summary never affects scoring.
type LLMConfig struct {
	Provider  string `yaml:"provider" json:"provider"` // "openai", "ollama", ""
	Model     string `yaml:"model" json:"model"`
	APIKey    string `yaml:"-" json:"-"`
	BaseURL   string `yaml:"base_url" json:"base_url"`
	Timeout   int    `yaml:"timeout" json:"timeout"` // seconds
	MaxTokens int    `yaml:"max_tokens" json:"max_tokens"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Hub: HubConfig{
			Endpoint:     "https://huggingface.co",
			Timeout:      30 * time.Second,
			UserAgent:    "cardrisk/0.1 (+https://github.com/ppiankov/cardrisk)",
			MaxBodyBytes: 4_000_000,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       "", // resolved to ~/.cardrisk/cache at startup
			MemoryTTL: 15 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		Policy: PolicyConfig{
			Dir: "", // resolved to ~/.cardrisk at startup
		},
		Output: OutputConfig{
			Dir: ".",
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 4,
			BurstSize:         4,
		},
		LLM: LLMConfig{
			Timeout:   30,
			MaxTokens: 600,
		},
	}
}
