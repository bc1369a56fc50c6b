package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Load reads configuration from environment variables. A .env file is
// loaded first when present (local development); in production the
// environment is injected directly.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debugf("no .env file loaded: %v", err)
	} else {
		logrus.Infof("loaded environment variables from .env file")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config from environment: %w", err)
	}

	return cfg, nil
}

// Validate performs range and cross-field validation after parsing.
func (c *Config) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP_PORT: %d (must be 1-65535)", c.HTTPPort)
	}
	if c.MetricsPort < 1 || c.MetricsPort > 65535 {
		return fmt.Errorf("invalid METRICS_PORT: %d (must be 1-65535)", c.MetricsPort)
	}
	if c.HTTPPort == c.MetricsPort {
		return fmt.Errorf("HTTP_PORT and METRICS_PORT must differ, both are %d", c.HTTPPort)
	}

	if c.AwardMaxAttempts < 1 {
		return fmt.Errorf("AWARD_MAX_ATTEMPTS must be at least 1, got %d", c.AwardMaxAttempts)
	}
	if c.AwardBackoffMs < 0 {
		return fmt.Errorf("AWARD_BACKOFF_MS must be non-negative, got %d", c.AwardBackoffMs)
	}
	if c.CoalesceWindowMs < 0 {
		return fmt.Errorf("COALESCE_WINDOW_MS must be non-negative, got %d", c.CoalesceWindowMs)
	}
	if c.SnapshotTTLDays < 0 {
		return fmt.Errorf("SNAPSHOT_TTL_DAYS must be non-negative, got %d", c.SnapshotTTLDays)
	}

	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL %q: %w", c.LogLevel, err)
	}

	if c.OtelEnabled && c.ZipkinEndpoint == "" {
		return fmt.Errorf("ZIPKIN_ENDPOINT is required when OTEL_ENABLED is true")
	}

	return nil
}
