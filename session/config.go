package session

import (
	"fmt"
	"time"
)

const (
	DefaultIdleTimeout   = 2 * time.Hour
	DefaultSweepInterval = 5 * time.Minute
)

// Config holds session lifecycle parameters. Durations use
// time.ParseDuration syntax ("90m", "2h").
type Config struct {
	IdleTimeout   string `json:"idle_timeout,omitempty"`
	SweepInterval string `json:"sweep_interval,omitempty"`
}

// DefaultConfig returns the default session configuration.
func DefaultConfig() Config {
	return Config{
		IdleTimeout:   DefaultIdleTimeout.String(),
		SweepInterval: DefaultSweepInterval.String(),
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.IdleTimeout != "" {
		c.IdleTimeout = source.IdleTimeout
	}
	if source.SweepInterval != "" {
		c.SweepInterval = source.SweepInterval
	}
}

// Durations parses the configured idle timeout and sweep interval, falling
// back to the defaults for empty values.
func (c *Config) Durations() (idle, sweep time.Duration, err error) {
	idle, err = parseDuration("idle_timeout", c.IdleTimeout, DefaultIdleTimeout)
	if err != nil {
		return 0, 0, err
	}
	sweep, err = parseDuration("sweep_interval", c.SweepInterval, DefaultSweepInterval)
	if err != nil {
		return 0, 0, err
	}
	return idle, sweep, nil
}

func parseDuration(field, value string, fallback time.Duration) (time.Duration, error) {
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, field, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: %s must be positive", ErrInvalidConfig, field)
	}
	return d, nil
}
