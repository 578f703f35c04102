package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Settings holds runtime configuration. It is loaded once by the caller
// and passed explicitly to every component that needs it.
type Settings struct {
	DatabaseURL string `envconfig:"DATABASE_URL" default:"sqlite://./appkit.db"`
	Debug       bool   `envconfig:"DEBUG" default:"false"`
	ProjectRoot string `envconfig:"APPKIT_ROOT" default:"."`

	Server    ServerConfig
	Logging   LogConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Metrics   MetricsConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// CORSConfig holds cross-origin configuration for the host engine.
type CORSConfig struct {
	AllowedOrigins []string `envconfig:"CORS_ORIGINS" default:"*"`
	Enabled        bool     `envconfig:"CORS_ENABLED" default:"true"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"false"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `envconfig:"METRICS_ENABLED" default:"true"`
	Path    string `envconfig:"METRICS_PATH" default:"/metrics"`
}

// Load loads settings from environment variables.
func Load() (*Settings, error) {
	var s Settings
	if err := envconfig.Process("", &s); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &s, nil
}

// LoadOrDefault loads settings from environment or returns default.
func LoadOrDefault() *Settings {
	s, err := Load()
	if err != nil {
		return Default()
	}
	return s
}

// Default returns default settings.
func Default() *Settings {
	return &Settings{
		DatabaseURL: "sqlite://./appkit.db",
		ProjectRoot: ".",
		Server: ServerConfig{
			Port: "8000",
			Host: "0.0.0.0",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"*"},
			Enabled:        true,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           false,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Addr returns the listen address.
func (s *Settings) Addr() string {
	return s.Server.Host + ":" + s.Server.Port
}
