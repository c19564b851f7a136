package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

type Config struct {
	CoreDatabaseURL string
	TemporalAddress string
	HTTPListenAddr  string
	RegistryURL     string
	ServingNetwork  string
	LogLevel        string
	ServiceName     string

	// MetricsAddr serves /metrics for the worker; empty disables it.
	MetricsAddr string

	// LockTTL bounds how long an unreleased deployment lock blocks a
	// workspace before a later acquire may take it over.
	LockTTL time.Duration
}

func Load() (*Config, error) {
	cfg := &Config{
		CoreDatabaseURL: getEnv("CORE_DATABASE_URL", ""),
		TemporalAddress: getEnv("TEMPORAL_ADDRESS", "localhost:7233"),
		HTTPListenAddr:  getEnv("HTTP_LISTEN_ADDR", ":8000"),
		MetricsAddr:     getEnv("METRICS_ADDR", ""),
		RegistryURL:     getEnv("REGISTRY_URL", "registry.localhost:5000"),
		ServingNetwork:  getEnv("SERVING_NETWORK", "ntcore_default"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		ServiceName:     getEnv("SERVICE_NAME", ""),
	}

	ttl := getEnv("DEPLOYMENT_LOCK_TTL", "10m")
	d, err := time.ParseDuration(ttl)
	if err != nil {
		return nil, fmt.Errorf("parse DEPLOYMENT_LOCK_TTL %q: %w", ttl, err)
	}
	cfg.LockTTL = d

	return cfg, nil
}

// Validate checks that the variables required by the given component are set.
func (c *Config) Validate(component string) error {
	var missing []string

	switch component {
	case "api":
		if c.CoreDatabaseURL == "" {
			missing = append(missing, "CORE_DATABASE_URL")
		}
		if c.TemporalAddress == "" {
			missing = append(missing, "TEMPORAL_ADDRESS")
		}
		if c.HTTPListenAddr == "" {
			missing = append(missing, "HTTP_LISTEN_ADDR")
		}
	case "worker":
		if c.CoreDatabaseURL == "" {
			missing = append(missing, "CORE_DATABASE_URL")
		}
		if c.TemporalAddress == "" {
			missing = append(missing, "TEMPORAL_ADDRESS")
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required config for %s: %s", component, strings.Join(missing, ", "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
