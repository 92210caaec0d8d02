package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/quillworks/quill/internal/ledger"
	"github.com/quillworks/quill/internal/provider"
)

// Supported provider backends.
const (
	BackendOpenAI    = "openai"
	BackendAnthropic = "anthropic"
)

const (
	EnvProviderBackend     = "QUILL_PROVIDER_BACKEND"
	EnvProviderAPIKey      = "QUILL_PROVIDER_API_KEY"
	EnvProviderBaseURL     = "QUILL_PROVIDER_BASE_URL"
	EnvProviderMaxAttempts = "QUILL_PROVIDER_MAX_ATTEMPTS"
	EnvProviderBackoffBase = "QUILL_PROVIDER_BACKOFF_BASE"
)

// TierConfig configures one completion tier. Prices are micro-dollars per
// 1000 tokens.
type TierConfig struct {
	Model                  string  `toml:"model"`
	Temperature            float64 `toml:"temperature"`
	MaxTokens              int     `toml:"max_tokens"`
	InputPricePer1KMicros  int64   `toml:"input_price_per_1k_micros"`
	OutputPricePer1KMicros int64   `toml:"output_price_per_1k_micros"`
}

// Settings converts the tier config to gateway tier settings.
func (c *TierConfig) Settings() provider.TierSettings {
	return provider.TierSettings{
		Model:            c.Model,
		Temperature:      c.Temperature,
		MaxTokens:        c.MaxTokens,
		InputPricePer1K:  ledger.CostMicros(c.InputPricePer1KMicros),
		OutputPricePer1K: ledger.CostMicros(c.OutputPricePer1KMicros),
	}
}

// Merge overwrites non-zero fields from overlay.
func (c *TierConfig) Merge(overlay *TierConfig) {
	if overlay.Model != "" {
		c.Model = overlay.Model
	}
	if overlay.Temperature != 0 {
		c.Temperature = overlay.Temperature
	}
	if overlay.MaxTokens != 0 {
		c.MaxTokens = overlay.MaxTokens
	}
	if overlay.InputPricePer1KMicros != 0 {
		c.InputPricePer1KMicros = overlay.InputPricePer1KMicros
	}
	if overlay.OutputPricePer1KMicros != 0 {
		c.OutputPricePer1KMicros = overlay.OutputPricePer1KMicros
	}
}

// ProviderConfig holds the completion backend and its two tier settings.
type ProviderConfig struct {
	Backend     string     `toml:"backend"`
	APIKey      string     `toml:"api_key"`
	BaseURL     string     `toml:"base_url"`
	MaxAttempts int        `toml:"max_attempts"`
	BackoffBase string     `toml:"backoff_base"`
	Extraction  TierConfig `toml:"extraction"`
	Generation  TierConfig `toml:"generation"`
}

// BackoffBaseDuration returns BackoffBase as a time.Duration.
func (c *ProviderConfig) BackoffBaseDuration() time.Duration {
	d, _ := time.ParseDuration(c.BackoffBase)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *ProviderConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *ProviderConfig) Merge(overlay *ProviderConfig) {
	if overlay.Backend != "" {
		c.Backend = overlay.Backend
	}
	if overlay.APIKey != "" {
		c.APIKey = overlay.APIKey
	}
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.MaxAttempts != 0 {
		c.MaxAttempts = overlay.MaxAttempts
	}
	if overlay.BackoffBase != "" {
		c.BackoffBase = overlay.BackoffBase
	}

	c.Extraction.Merge(&overlay.Extraction)
	c.Generation.Merge(&overlay.Generation)
}

func (c *ProviderConfig) loadDefaults() {
	if c.Backend == "" {
		c.Backend = BackendOpenAI
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = 3
	}
	if c.BackoffBase == "" {
		c.BackoffBase = "250ms"
	}

	if c.Extraction.Model == "" {
		c.Extraction.Model = "gpt-4o-mini"
	}
	if c.Extraction.MaxTokens == 0 {
		c.Extraction.MaxTokens = 1024
	}
	if c.Extraction.InputPricePer1KMicros == 0 {
		c.Extraction.InputPricePer1KMicros = 150
	}
	if c.Extraction.OutputPricePer1KMicros == 0 {
		c.Extraction.OutputPricePer1KMicros = 600
	}

	if c.Generation.Model == "" {
		c.Generation.Model = "gpt-4o"
	}
	if c.Generation.Temperature == 0 {
		c.Generation.Temperature = 0.8
	}
	if c.Generation.MaxTokens == 0 {
		c.Generation.MaxTokens = 1024
	}
	if c.Generation.InputPricePer1KMicros == 0 {
		c.Generation.InputPricePer1KMicros = 2500
	}
	if c.Generation.OutputPricePer1KMicros == 0 {
		c.Generation.OutputPricePer1KMicros = 10000
	}
}

func (c *ProviderConfig) loadEnv() {
	if v := os.Getenv(EnvProviderBackend); v != "" {
		c.Backend = v
	}
	if v := os.Getenv(EnvProviderAPIKey); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv(EnvProviderBaseURL); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv(EnvProviderMaxAttempts); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxAttempts = n
		}
	}
	if v := os.Getenv(EnvProviderBackoffBase); v != "" {
		c.BackoffBase = v
	}
}

func (c *ProviderConfig) validate() error {
	if c.Backend != BackendOpenAI && c.Backend != BackendAnthropic {
		return fmt.Errorf("unsupported backend: %s", c.Backend)
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be at least 1: %d", c.MaxAttempts)
	}
	if _, err := time.ParseDuration(c.BackoffBase); err != nil {
		return fmt.Errorf("invalid backoff_base: %w", err)
	}
	return nil
}
