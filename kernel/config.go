package kernel

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tailored-agentic-units/gichat/core/config"
	"github.com/tailored-agentic-units/gichat/session"
)

const defaultSecretsPath = ".streamlit/secrets.toml"

// Config holds initialization parameters for the relay and its shells.
// Each section delegates to that subsystem's Merge.
type Config struct {
	Agent           config.AgentConfig  `json:"agent"`
	Session         session.Config      `json:"session"`
	Server          config.ServerConfig `json:"server"`
	Observer        string              `json:"observer,omitempty"`
	InstructionPath string              `json:"instruction_path,omitempty"`
	SecretsPath     string              `json:"secrets_path,omitempty"`
}

// DefaultConfig returns a Config with defaults for all subsystems.
func DefaultConfig() Config {
	return Config{
		Agent:       config.DefaultAgentConfig(),
		Session:     session.DefaultConfig(),
		Server:      config.DefaultServerConfig(),
		Observer:    "slog",
		SecretsPath: defaultSecretsPath,
	}
}

// Merge applies non-zero values from source into c, delegating to each
// subsystem's Merge method.
func (c *Config) Merge(source *Config) {
	c.Agent.Merge(&source.Agent)
	c.Session.Merge(&source.Session)
	c.Server.Merge(&source.Server)

	if source.Observer != "" {
		c.Observer = source.Observer
	}
	if source.InstructionPath != "" {
		c.InstructionPath = source.InstructionPath
	}
	if source.SecretsPath != "" {
		c.SecretsPath = source.SecretsPath
	}
}

// LoadConfig reads a JSON config file, merges it with defaults, and returns
// the resulting Config.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var loaded Config
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Merge(&loaded)
	return &cfg, nil
}
