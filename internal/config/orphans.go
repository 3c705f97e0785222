package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	EnvOrphansEnabled     = "ORPHANS_ENABLED"
	EnvOrphansInterval    = "ORPHANS_INTERVAL"
	EnvOrphansMaxAttempts = "ORPHANS_MAX_ATTEMPTS"
)

// OrphansConfig controls the background blob reconciler.
type OrphansConfig struct {
	Enabled     *bool  `toml:"enabled"`
	Interval    string `toml:"interval"`
	MaxAttempts int    `toml:"max_attempts"`
}

// IsEnabled reports whether the reconciler runs. Defaults to true.
func (c *OrphansConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

func (c *OrphansConfig) IntervalDuration() time.Duration {
	d, _ := time.ParseDuration(c.Interval)
	return d
}

func (c *OrphansConfig) Finalize() error {
	if c.Interval == "" {
		c.Interval = "5m"
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = 5
	}

	if v := os.Getenv(EnvOrphansEnabled); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			c.Enabled = &enabled
		}
	}
	if v := os.Getenv(EnvOrphansInterval); v != "" {
		c.Interval = v
	}
	if v := os.Getenv(EnvOrphansMaxAttempts); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxAttempts = n
		}
	}

	d, err := time.ParseDuration(c.Interval)
	if err != nil {
		return fmt.Errorf("invalid interval: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("interval must be positive")
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be positive")
	}
	return nil
}

func (c *OrphansConfig) Merge(overlay *OrphansConfig) {
	if overlay.Enabled != nil {
		c.Enabled = overlay.Enabled
	}
	if overlay.Interval != "" {
		c.Interval = overlay.Interval
	}
	if overlay.MaxAttempts != 0 {
		c.MaxAttempts = overlay.MaxAttempts
	}
}
