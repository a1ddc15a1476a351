package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studygen/studygen-api/internal/config"
)

func validConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:           8080,
			LogLevel:       "info",
			RequestTimeout: 2 * time.Minute,
		},
		Auth: config.AuthConfig{
			JWTSecret:   "0123456789abcdef0123456789abcdef",
			TokenExpiry: time.Hour,
		},
		Providers: []config.ProviderConfig{
			{
				ID:          "gemini-primary",
				Kind:        "gemini",
				APIKey:      "test-key",
				Model:       "gemini-2.0-flash",
				Tier:        0,
				CallTimeout: 30 * time.Second,
			},
		},
		Generation: config.GenerationConfig{
			RateLimitBackoffCap: 10 * time.Second,
		},
		Quality: config.QualityConfig{
			Weights: map[string]float64{
				"structural_completeness": 0.5,
				"topic_relevance":         0.5,
			},
			Floors: map[string]float64{
				"structural_completeness": 0.4,
			},
			DefaultThreshold: 0.70,
		},
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	t.Run("valid config passes", func(t *testing.T) {
		t.Parallel()

		require.NoError(t, config.Validate(validConfig()))
	})

	t.Run("missing providers fails", func(t *testing.T) {
		t.Parallel()

		cfg := validConfig()
		cfg.Providers = nil
		assert.Error(t, config.Validate(cfg))
	})

	t.Run("unknown provider kind fails", func(t *testing.T) {
		t.Parallel()

		cfg := validConfig()
		cfg.Providers[0].Kind = "cohere"
		assert.Error(t, config.Validate(cfg))
	})

	t.Run("short jwt secret fails", func(t *testing.T) {
		t.Parallel()

		cfg := validConfig()
		cfg.Auth.JWTSecret = "short"
		assert.Error(t, config.Validate(cfg))
	})

	t.Run("floor for unweighted dimension fails", func(t *testing.T) {
		t.Parallel()

		cfg := validConfig()
		cfg.Quality.Floors["imaginary_dimension"] = 0.5
		assert.Error(t, config.Validate(cfg))
	})

	t.Run("duplicate provider ids fail", func(t *testing.T) {
		t.Parallel()

		cfg := validConfig()
		cfg.Providers = append(cfg.Providers, cfg.Providers[0])
		assert.Error(t, config.Validate(cfg))
	})

	t.Run("threshold outside unit interval fails", func(t *testing.T) {
		t.Parallel()

		cfg := validConfig()
		cfg.Quality.DefaultThreshold = 1.3
		assert.Error(t, config.Validate(cfg))
	})
}

func TestLoadUsesDefaults(t *testing.T) {
	// Not parallel: Load reads process environment.
	t.Setenv("STUDYGEN_AUTH_JWT_SECRET", "0123456789abcdef0123456789abcdef")

	// Providers cannot come from plain env vars (slice shape), so loading
	// without a config file must fail validation rather than succeed with
	// an empty provider pool.
	cfg, err := config.Load()
	assert.Nil(t, cfg)
	assert.Error(t, err)
}
