// Package config holds the agent and server configuration types shared by
// the agent factory, the web shell, and the kernel configuration file.
package config

// Provider names understood by the agent factory.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"
)

// Defaults applied by DefaultAgentConfig.
const (
	DefaultModel       = "gpt-4o"
	DefaultTemperature = 0.3
	DefaultMaxTokens   = 4096
)

// ProviderConfig identifies the completion backend and how to reach it.
// APIKey is never read from or written to a config file; it is resolved at
// startup by ResolveAPIKey.
type ProviderConfig struct {
	Name      string `json:"name"`
	BaseURL   string `json:"base_url,omitempty"`
	APIKeyEnv string `json:"api_key_env,omitempty"`
	APIKey    string `json:"-"`
}

// KeyEnv returns the environment variable (and secrets file key) holding the
// provider credential. Empty means the provider needs no credential.
func (p *ProviderConfig) KeyEnv() string {
	if p.APIKeyEnv != "" {
		return p.APIKeyEnv
	}
	switch p.Name {
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	default:
		return ""
	}
}

// ModelConfig holds the fixed model identifier and sampling parameters.
type ModelConfig struct {
	Name        string   `json:"name"`
	Temperature *float64 `json:"temperature,omitempty"`
	MaxTokens   int      `json:"max_tokens,omitempty"`
}

// TemperatureOrDefault returns the configured temperature or the default low
// temperature used for decision support.
func (m *ModelConfig) TemperatureOrDefault() float64 {
	if m.Temperature == nil {
		return DefaultTemperature
	}
	return *m.Temperature
}

// AgentConfig configures one completion agent.
type AgentConfig struct {
	Provider *ProviderConfig `json:"provider"`
	Model    *ModelConfig    `json:"model"`
}

// DefaultAgentConfig returns the OpenAI gpt-4o configuration at temperature 0.3.
func DefaultAgentConfig() AgentConfig {
	temperature := DefaultTemperature
	return AgentConfig{
		Provider: &ProviderConfig{Name: ProviderOpenAI},
		Model: &ModelConfig{
			Name:        DefaultModel,
			Temperature: &temperature,
			MaxTokens:   DefaultMaxTokens,
		},
	}
}

// Merge applies non-zero values from source into c.
func (c *AgentConfig) Merge(source *AgentConfig) {
	if source.Provider != nil {
		if c.Provider == nil {
			c.Provider = &ProviderConfig{}
		}
		if source.Provider.Name != "" {
			c.Provider.Name = source.Provider.Name
		}
		if source.Provider.BaseURL != "" {
			c.Provider.BaseURL = source.Provider.BaseURL
		}
		if source.Provider.APIKeyEnv != "" {
			c.Provider.APIKeyEnv = source.Provider.APIKeyEnv
		}
		if source.Provider.APIKey != "" {
			c.Provider.APIKey = source.Provider.APIKey
		}
	}

	if source.Model != nil {
		if c.Model == nil {
			c.Model = &ModelConfig{}
		}
		if source.Model.Name != "" {
			c.Model.Name = source.Model.Name
		}
		if source.Model.Temperature != nil {
			t := *source.Model.Temperature
			c.Model.Temperature = &t
		}
		if source.Model.MaxTokens > 0 {
			c.Model.MaxTokens = source.Model.MaxTokens
		}
	}
}
