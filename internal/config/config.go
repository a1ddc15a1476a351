package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"     validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Auth       AuthConfig       `mapstructure:"auth"       validate:"required"`
	Providers  []ProviderConfig `mapstructure:"providers"  validate:"required,min=1,dive"`
	Generation GenerationConfig `mapstructure:"generation" validate:"required"`
	Quality    QualityConfig    `mapstructure:"quality"    validate:"required"`
	Templates  TemplatesConfig  `mapstructure:"templates"`
	Health     HealthConfig     `mapstructure:"health"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`

	// RequestTimeout bounds a single generation request end to end,
	// including all provider fallback attempts.
	RequestTimeout time.Duration `mapstructure:"request_timeout" validate:"required"`
}

// DatabaseConfig contains all database-related configuration settings.
// An empty URL disables persistence; generation still works, results are
// simply not stored.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"omitempty,url"`
}

// AuthConfig contains authentication settings for the transport layer.
type AuthConfig struct {
	JWTSecret   string        `mapstructure:"jwt_secret"   validate:"required,min=32"`
	TokenExpiry time.Duration `mapstructure:"token_expiry" validate:"required"`

	// Clients lists the API clients allowed to request tokens. Keys are
	// stored bcrypt-hashed; plaintext keys never appear in configuration.
	Clients []ClientCredential `mapstructure:"clients" validate:"dive"`
}

// ClientCredential pairs a client identifier with its bcrypt-hashed API key.
type ClientCredential struct {
	ID        string `mapstructure:"id"         validate:"required"`
	HashedKey string `mapstructure:"hashed_key" validate:"required"`
}

// ProviderConfig describes one configured AI provider backend.
type ProviderConfig struct {
	// ID is the unique identifier for this provider instance.
	ID string `mapstructure:"id" validate:"required"`

	// Kind selects the adapter implementation.
	Kind string `mapstructure:"kind" validate:"required,oneof=gemini openai"`

	// APIKey is the credential handle for the backend.
	APIKey string `mapstructure:"api_key" validate:"required"`

	// Model is the backend model name, e.g. "gemini-2.0-flash" or "gpt-4o".
	Model string `mapstructure:"model" validate:"required"`

	// BaseURL overrides the backend endpoint (OpenAI-compatible gateways).
	BaseURL string `mapstructure:"base_url" validate:"omitempty,url"`

	// Tier is the preference ordering hint; lower tiers are tried first.
	Tier int `mapstructure:"tier" validate:"gte=0"`

	// CallTimeout bounds a single generation call to this provider.
	CallTimeout time.Duration `mapstructure:"call_timeout" validate:"required"`
}

// GenerationConfig tunes the fallback router.
type GenerationConfig struct {
	// RateLimitBackoffCap caps how long the router will honor a provider's
	// suggested backoff before retrying a rate-limited call.
	RateLimitBackoffCap time.Duration `mapstructure:"rate_limit_backoff_cap" validate:"required"`
}

// QualityConfig holds the scoring thresholds contract. All values are
// configuration inputs; the assessor hardcodes none of them.
type QualityConfig struct {
	// Weights maps dimension name to its weight in the aggregate. Weights
	// are normalized at load time; they need not sum to one.
	Weights map[string]float64 `mapstructure:"weights" validate:"required,min=1"`

	// Floors maps dimension name to the minimum score below which content
	// fails regardless of its aggregate.
	Floors map[string]float64 `mapstructure:"floors" validate:"required"`

	// PassThresholds maps content type to its aggregate pass threshold.
	// Types without an entry use DefaultThreshold.
	PassThresholds map[string]float64 `mapstructure:"pass_thresholds"`

	// DefaultThreshold is the aggregate pass threshold for content types
	// without a specific entry.
	DefaultThreshold float64 `mapstructure:"default_threshold" validate:"gte=0,lte=1"`
}

// TemplatesConfig locates prompt template overrides.
type TemplatesConfig struct {
	// Dir is an optional directory of *.tmpl files overriding the embedded
	// defaults, one file per content type.
	Dir string `mapstructure:"dir"`
}

// HealthConfig controls the periodic provider health prober.
type HealthConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"`

	// ProbeTimeout bounds a single provider probe.
	ProbeTimeout time.Duration `mapstructure:"probe_timeout"`
}
