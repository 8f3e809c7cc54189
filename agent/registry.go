package agent

import (
	"cmp"
	"fmt"
	"slices"
	"sync"

	"github.com/tailored-agentic-units/gichat/core/config"
)

// AgentInfo describes a registered agent's name and backend.
type AgentInfo struct {
	Name     string `json:"name"`
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

// Registry manages named agent configurations with lazy instantiation.
// Configs are stored at registration time; agents are created on first
// Get call and the instance is reused afterwards. Thread-safe for
// concurrent access.
type Registry struct {
	mu      sync.RWMutex
	configs map[string]config.AgentConfig
	agents  map[string]Agent
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		configs: make(map[string]config.AgentConfig),
		agents:  make(map[string]Agent),
	}
}

// Get retrieves a named agent, instantiating it lazily on first access.
func (r *Registry) Get(name string) (Agent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, registered := r.configs[name]; !registered {
		return nil, fmt.Errorf("%w: %s", ErrAgentNotFound, name)
	}

	if a, exists := r.agents[name]; exists {
		return a, nil
	}

	cfg := r.configs[name]
	a, err := New(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create agent %q: %w", name, err)
	}

	r.agents[name] = a
	return a, nil
}

// List describes the registered agents, sorted by name. It never
// instantiates an agent.
func (r *Registry) List() []AgentInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]AgentInfo, 0, len(r.configs))
	for name, cfg := range r.configs {
		info := AgentInfo{Name: name}
		if cfg.Provider != nil {
			info.Provider = cfg.Provider.Name
		}
		if cfg.Model != nil {
			info.Model = cfg.Model.Name
		}
		infos = append(infos, info)
	}

	slices.SortFunc(infos, func(a, b AgentInfo) int {
		return cmp.Compare(a.Name, b.Name)
	})
	return infos
}

// Register adds a named agent configuration to the registry.
// The agent is not instantiated until Get is called.
func (r *Registry) Register(name string, cfg config.AgentConfig) error {
	if name == "" {
		return ErrEmptyAgentName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.configs[name]; exists {
		return fmt.Errorf("%w: %s", ErrAgentExists, name)
	}

	r.configs[name] = cfg
	return nil
}
