package llm

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// RoleConfig overrides the provider or model for one reasoning role
// (decompose, answer, synthesize).
type RoleConfig struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
}

// RoutingConfig selects which provider serves which role.
type RoutingConfig struct {
	ActiveProvider string                `yaml:"active_provider"`
	Roles          map[string]RoleConfig `yaml:"roles"`
}

// LoadRoutingConfig reads a YAML routing file. A missing file yields an
// empty config, which routes everything to the registered default.
func LoadRoutingConfig(path string) (RoutingConfig, error) {
	var cfg RoutingConfig
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read routing config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse routing config: %w", err)
	}
	return cfg, nil
}

// Manager routes reasoning roles to registered providers.
type Manager struct {
	cfg       RoutingConfig
	providers map[string]Provider
}

// NewManager builds a manager over the registered providers. The first
// registered name doubles as the fallback when the config names nothing.
func NewManager(cfg RoutingConfig, providers map[string]Provider) *Manager {
	return &Manager{cfg: cfg, providers: providers}
}

// ProviderFor resolves the provider for a role: role override first, then
// the global active provider, then any registered provider.
func (m *Manager) ProviderFor(role string) Provider {
	if rc, ok := m.cfg.Roles[role]; ok && rc.Provider != "" {
		if p, ok := m.providers[rc.Provider]; ok {
			return p
		}
	}
	if p, ok := m.providers[m.cfg.ActiveProvider]; ok {
		return p
	}
	for _, p := range m.providers {
		return p
	}
	return nil
}

// OptionsFor returns the per-call options a role's config implies.
func (m *Manager) OptionsFor(role string) map[string]interface{} {
	if rc, ok := m.cfg.Roles[role]; ok && rc.Model != "" {
		return map[string]interface{}{OptionModel: rc.Model}
	}
	return nil
}
