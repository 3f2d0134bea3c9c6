package config

import (
	"fmt"
	"time"

	"github.com/rezkam/fiscal/internal/domain"
)

// SchedulingConfig holds due-date scheduling settings.
type SchedulingConfig struct {
	DefaultWeekendPolicy string `envconfig:"DEFAULT_WEEKEND_POLICY" default:"postpone"`
	StrictHistory        bool   `envconfig:"STRICT_HISTORY"`
	Jurisdiction         string `envconfig:"JURISDICTION" default:"BR"`

	BatchSize           int           `envconfig:"BATCH_SIZE" default:"10"`
	BatchDelay          time.Duration `envconfig:"BATCH_DELAY" default:"100ms"`
	LargeBatchThreshold int           `envconfig:"LARGE_BATCH_THRESHOLD" default:"100"`

	// MaxConcurrentWrites of zero writes each chunk fully in parallel.
	MaxConcurrentWrites int `envconfig:"MAX_CONCURRENT_WRITES"`
}

// WeekendPolicy returns the parsed default policy. Call Validate first.
func (c *SchedulingConfig) WeekendPolicy() domain.WeekendPolicy {
	p, _ := domain.NewWeekendPolicy(c.DefaultWeekendPolicy)
	return p.Or(domain.WeekendPostpone)
}

// Validate validates the scheduling configuration.
func (c *SchedulingConfig) Validate() error {
	if _, err := domain.NewWeekendPolicy(c.DefaultWeekendPolicy); err != nil {
		return fmt.Errorf("FISCAL_SCHEDULING_DEFAULT_WEEKEND_POLICY: %w", err)
	}
	if c.Jurisdiction == "" {
		return fmt.Errorf("FISCAL_SCHEDULING_JURISDICTION is required")
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("FISCAL_SCHEDULING_BATCH_SIZE must be positive, got %d", c.BatchSize)
	}
	if c.BatchDelay < 0 {
		return fmt.Errorf("FISCAL_SCHEDULING_BATCH_DELAY must not be negative, got %s", c.BatchDelay)
	}
	if c.MaxConcurrentWrites < 0 {
		return fmt.Errorf("FISCAL_SCHEDULING_MAX_CONCURRENT_WRITES must not be negative, got %d", c.MaxConcurrentWrites)
	}
	if c.LargeBatchThreshold <= 0 {
		return fmt.Errorf("FISCAL_SCHEDULING_LARGE_BATCH_THRESHOLD must be positive, got %d", c.LargeBatchThreshold)
	}
	return nil
}
