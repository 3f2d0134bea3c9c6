package config

import (
	"fmt"
	"time"
)

// WorkerConfig holds all configuration for the worker binary.
type WorkerConfig struct {
	Database      DatabaseConfig      `envconfig:"DB"`
	Scheduling    SchedulingConfig    `envconfig:"SCHEDULING"`
	Holidays      HolidaysConfig      `envconfig:"HOLIDAYS"`
	Redis         RedisConfig         `envconfig:"REDIS"`
	Observability ObservabilityConfig `envconfig:"OTEL"`

	TickInterval     time.Duration `envconfig:"WORKER_TICK_INTERVAL" default:"24h"`
	OperationTimeout time.Duration `envconfig:"WORKER_OPERATION_TIMEOUT" default:"5m"`
}

// Validate validates the worker timing settings.
func (c *WorkerConfig) Validate() error {
	if c.TickInterval <= 0 {
		return fmt.Errorf("FISCAL_WORKER_TICK_INTERVAL must be positive, got %s", c.TickInterval)
	}
	if c.OperationTimeout <= 0 {
		return fmt.Errorf("FISCAL_WORKER_OPERATION_TIMEOUT must be positive, got %s", c.OperationTimeout)
	}
	return nil
}

// LoadWorkerConfig loads and validates worker configuration from environment.
func LoadWorkerConfig() (*WorkerConfig, error) {
	cfg := &WorkerConfig{}

	if err := load(cfg, cfg, &cfg.Database, &cfg.Scheduling, &cfg.Holidays, &cfg.Redis, &cfg.Observability); err != nil {
		return nil, fmt.Errorf("failed to load worker config: %w", err)
	}

	return cfg, nil
}
