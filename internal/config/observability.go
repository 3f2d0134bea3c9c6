package config

import "errors"

// ObservabilityConfig holds observability configuration.
// Exporter endpoints and headers come from the standard OTEL_* variables.
type ObservabilityConfig struct {
	Enabled     bool   `envconfig:"ENABLED"`
	ServiceName string `envconfig:"SERVICE_NAME" default:"fiscal"`
}

func (c *ObservabilityConfig) Validate() error {
	if c.Enabled && c.ServiceName == "" {
		return errors.New("FISCAL_OTEL_SERVICE_NAME is required when telemetry is enabled")
	}
	return nil
}
