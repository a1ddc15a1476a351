package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from environment variables and an optional
// config.yaml in the working directory. Environment variables use the
// STUDYGEN_ prefix with underscores for nesting (STUDYGEN_SERVER_PORT) and
// take precedence over file values. Returns a populated, validated Config.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("STUDYGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; the environment can carry
		// everything. Any other read failure is fatal.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks a Config against its struct validation tags plus the
// cross-field rules the tags cannot express.
func Validate(cfg *Config) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Every floor must belong to a weighted dimension, otherwise it could
	// never be evaluated.
	for name := range cfg.Quality.Floors {
		if _, ok := cfg.Quality.Weights[name]; !ok {
			return fmt.Errorf("invalid configuration: floor for unweighted dimension %q", name)
		}
	}

	seen := make(map[string]bool, len(cfg.Providers))
	for _, p := range cfg.Providers {
		if seen[p.ID] {
			return fmt.Errorf("invalid configuration: duplicate provider id %q", p.ID)
		}
		seen[p.ID] = true
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.request_timeout", 2*time.Minute)

	v.SetDefault("auth.token_expiry", time.Hour)

	v.SetDefault("generation.rate_limit_backoff_cap", 10*time.Second)

	v.SetDefault("quality.weights", map[string]float64{
		"structural_completeness": 0.35,
		"factual_density":         0.25,
		"age_appropriateness":     0.20,
		"topic_relevance":         0.20,
	})
	v.SetDefault("quality.floors", map[string]float64{
		"structural_completeness": 0.40,
		"factual_density":         0.20,
		"age_appropriateness":     0.20,
		"topic_relevance":         0.20,
	})
	v.SetDefault("quality.default_threshold", 0.70)

	v.SetDefault("health.enabled", true)
	v.SetDefault("health.interval", time.Minute)
	v.SetDefault("health.probe_timeout", 10*time.Second)
}
