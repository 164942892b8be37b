package config

import (
	"fmt"
	"strings"
	"time"
)

const defaultShutdownTimeout = 10 * time.Second

// Config holds runtime configuration for the server.
type Config struct {
	Port            string
	LogLevel        string
	LogFormat       string
	Backend         string
	ShutdownTimeout time.Duration
	SharePoint      SharePointConfig
	Metrics         MetricsConfig
	Tracing         TracingConfig
}

// Load reads configuration from environment variables with sensible defaults.
// It fails only when a value is present but malformed or the selected backend
// is missing required settings.
func Load() (Config, error) {
	sp, err := loadSharePoint()
	if err != nil {
		return Config{}, err
	}
	cfg := Config{
		Port:            envOrDefault(envPort, defaultPort),
		LogLevel:        envOrDefault(envLogLevel, defaultLogLevel),
		LogFormat:       envOrDefault(envLogFormat, defaultLogFormat),
		Backend:         strings.ToLower(envOrDefault(envBackend, BackendMemory)),
		ShutdownTimeout: durationEnvOrDefault(envShutdownGrace, defaultShutdownTimeout),
		SharePoint:      sp,
		Metrics:         loadMetrics(),
		Tracing:         loadTracing(),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the backend selection and its settings.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendMemory:
		return nil
	case BackendSharePoint:
		if err := c.SharePoint.validate(); err != nil {
			return fmt.Errorf("config: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("config: unknown backend %q (want %s or %s)", c.Backend, BackendMemory, BackendSharePoint)
	}
}
