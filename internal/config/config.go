// Package config loads process configuration from FISCAL_* environment variables.
// An optional .env file in the working directory is read first; variables
// already set in the environment win over it.
package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Prefix is prepended to every configuration variable.
const Prefix = "FISCAL"

// validator is implemented by every configuration section.
type validator interface {
	Validate() error
}

// load fills cfg from the environment and validates each section.
func load(cfg any, sections ...validator) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to read .env file: %w", err)
	}

	if err := envconfig.Process(Prefix, cfg); err != nil {
		return fmt.Errorf("failed to parse environment: %w", err)
	}

	for _, s := range sections {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	return nil
}
