package config

import (
	"fmt"
	"time"
)

// ServerConfig configures the web shell.
type ServerConfig struct {
	Addr            string `json:"addr,omitempty"`
	RatePerMinute   int    `json:"rate_per_minute,omitempty"`
	RateBurst       int    `json:"rate_burst,omitempty"`
	ShutdownTimeout string `json:"shutdown_timeout,omitempty"`
	LogoPath        string `json:"logo_path,omitempty"`

	// ClientHeader names a proxy-set header holding the client address for
	// rate limiting. Empty uses the connection's remote address.
	ClientHeader string `json:"client_header,omitempty"`
}

// DefaultServerConfig listens on :8501 and allows 20 questions a minute per
// client with a burst of 5.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:            ":8501",
		RatePerMinute:   20,
		RateBurst:       5,
		ShutdownTimeout: "10s",
	}
}

// Merge applies non-zero values from source into c.
func (c *ServerConfig) Merge(source *ServerConfig) {
	if source.Addr != "" {
		c.Addr = source.Addr
	}
	if source.RatePerMinute > 0 {
		c.RatePerMinute = source.RatePerMinute
	}
	if source.RateBurst > 0 {
		c.RateBurst = source.RateBurst
	}
	if source.ShutdownTimeout != "" {
		c.ShutdownTimeout = source.ShutdownTimeout
	}
	if source.LogoPath != "" {
		c.LogoPath = source.LogoPath
	}
	if source.ClientHeader != "" {
		c.ClientHeader = source.ClientHeader
	}
}

// ShutdownGrace parses ShutdownTimeout, defaulting to 10s when empty.
func (c *ServerConfig) ShutdownGrace() (time.Duration, error) {
	if c.ShutdownTimeout == "" {
		return 10 * time.Second, nil
	}
	d, err := time.ParseDuration(c.ShutdownTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return d, nil
}
