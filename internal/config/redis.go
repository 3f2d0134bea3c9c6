package config

import (
	"fmt"
	"time"
)

// RedisConfig configures the monthly job lock. An empty address disables locking.
type RedisConfig struct {
	Addr     string        `envconfig:"ADDR"`
	Password string        `envconfig:"PASSWORD"`
	DB       int           `envconfig:"DB"`
	LockTTL  time.Duration `envconfig:"LOCK_TTL" default:"10m"`
}

// Enabled reports whether a Redis address is configured.
func (c *RedisConfig) Enabled() bool {
	return c.Addr != ""
}

func (c *RedisConfig) Validate() error {
	if c.Enabled() && c.LockTTL <= 0 {
		return fmt.Errorf("FISCAL_REDIS_LOCK_TTL must be positive, got %s", c.LockTTL)
	}
	return nil
}
