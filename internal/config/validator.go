package config

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrNoInput is returned when no PDF is configured.
var ErrNoInput = errors.New("no input PDF")

// Validate checks that the configuration can be run.
func (c *Config) Validate() error {
	if len(c.PDFs) == 0 {
		return ErrNoInput
	}
	if c.Agency == "" || c.Routes == "" {
		return fmt.Errorf("config error: agency and routes are both required")
	}
	if c.Out == "" {
		return fmt.Errorf("config error: out must not be empty")
	}
	if c.Workers < 1 {
		return fmt.Errorf("config error: workers must be at least 1, got %d", c.Workers)
	}
	if _, err := regexp.Compile(c.RoutePattern); err != nil {
		return fmt.Errorf("config error: route_pattern: %w", err)
	}
	return nil
}
