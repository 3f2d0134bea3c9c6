package config

import (
	"errors"
	"fmt"
	"time"
)

// ServerConfig holds all configuration for the server binary.
type ServerConfig struct {
	HTTP          HTTPConfig          `envconfig:"HTTP"`
	Database      DatabaseConfig      `envconfig:"DB"`
	Scheduling    SchedulingConfig    `envconfig:"SCHEDULING"`
	Holidays      HolidaysConfig      `envconfig:"HOLIDAYS"`
	Redis         RedisConfig         `envconfig:"REDIS"`
	Observability ObservabilityConfig `envconfig:"OTEL"`
}

// HTTPConfig holds HTTP server configuration.
// Zero values fall back to the server package defaults.
type HTTPConfig struct {
	Host              string        `envconfig:"HOST"`
	Port              string        `envconfig:"PORT" default:"8080"`
	ReadTimeout       time.Duration `envconfig:"READ_TIMEOUT"`
	WriteTimeout      time.Duration `envconfig:"WRITE_TIMEOUT"`
	IdleTimeout       time.Duration `envconfig:"IDLE_TIMEOUT"`
	ReadHeaderTimeout time.Duration `envconfig:"READ_HEADER_TIMEOUT"`
	MaxHeaderBytes    int           `envconfig:"MAX_HEADER_BYTES"`
	MaxBodyBytes      int64         `envconfig:"MAX_BODY_BYTES"`
	CORSOrigins       []string      `envconfig:"CORS_ORIGINS"`
	ShutdownTimeout   time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// ErrPortRequired is returned when the HTTP port is blank.
var ErrPortRequired = errors.New("FISCAL_HTTP_PORT is required")

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	if c.Port == "" {
		return ErrPortRequired
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("FISCAL_HTTP_SHUTDOWN_TIMEOUT must be positive, got %s", c.ShutdownTimeout)
	}
	return nil
}

// LoadServerConfig loads and validates server configuration from environment.
func LoadServerConfig() (*ServerConfig, error) {
	cfg := &ServerConfig{}

	if err := load(cfg, &cfg.HTTP, &cfg.Database, &cfg.Scheduling, &cfg.Holidays, &cfg.Redis, &cfg.Observability); err != nil {
		return nil, fmt.Errorf("failed to load server config: %w", err)
	}

	return cfg, nil
}
