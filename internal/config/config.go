// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	// Reference data settings.
	CompoundsPath string // Tab-separated compound reference table.
	ReactionsPath string // Tab-separated reaction reference table.
	MediaLibrary  string // YAML file of predefined media; optional.

	// Modeling service settings.
	SolverURL     string        // Base URL of the external modeling service.
	SolverTimeout time.Duration // Per-call HTTP timeout; gapfill searches can be slow.
	FBACacheSize  int           // LRU entries for cached FBA results; 0 disables.

	// MCP transport settings.
	Transport string // "stdio" or "http".
	Port      int    // HTTP transport port.

	// OTEL settings.
	OTELEndpoint string
	OTELInsecure bool
	ServiceName  string

	// Operational settings.
	LogLevel string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (Config, error) {
	cfg := Config{
		CompoundsPath: envStr("MODELFORGE_COMPOUNDS_PATH", "data/compounds.tsv"),
		ReactionsPath: envStr("MODELFORGE_REACTIONS_PATH", "data/reactions.tsv"),
		MediaLibrary:  envStr("MODELFORGE_MEDIA_LIBRARY", ""),
		SolverURL:     envStr("MODELFORGE_SOLVER_URL", "http://localhost:8901"),
		SolverTimeout: envDuration("MODELFORGE_SOLVER_TIMEOUT", 10*time.Minute),
		FBACacheSize:  envInt("MODELFORGE_FBA_CACHE_SIZE", 128),
		Transport:     envStr("MODELFORGE_TRANSPORT", "stdio"),
		Port:          envInt("MODELFORGE_PORT", 8900),
		OTELEndpoint:  envStr("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTELInsecure:  envBool("OTEL_EXPORTER_OTLP_INSECURE", false),
		ServiceName:   envStr("OTEL_SERVICE_NAME", "modelforge"),
		LogLevel:      envStr("MODELFORGE_LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that required configuration is present and coherent.
func (c Config) Validate() error {
	if c.CompoundsPath == "" {
		return fmt.Errorf("config: MODELFORGE_COMPOUNDS_PATH is required")
	}
	if c.ReactionsPath == "" {
		return fmt.Errorf("config: MODELFORGE_REACTIONS_PATH is required")
	}
	if c.SolverURL == "" {
		return fmt.Errorf("config: MODELFORGE_SOLVER_URL is required")
	}
	if c.Transport != "stdio" && c.Transport != "http" {
		return fmt.Errorf("config: MODELFORGE_TRANSPORT must be \"stdio\" or \"http\", got %q", c.Transport)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: MODELFORGE_PORT must be a valid port, got %d", c.Port)
	}
	if c.FBACacheSize < 0 {
		return fmt.Errorf("config: MODELFORGE_FBA_CACHE_SIZE must be non-negative")
	}
	return nil
}

func envStr(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func envBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultVal
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
