package llm

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRoutingConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "routing.yaml")
	content := `active_provider: gemini
roles:
  synthesize:
    provider: mock
    model: mock-large
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadRoutingConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "gemini", cfg.ActiveProvider)
	assert.Equal(t, "mock", cfg.Roles["synthesize"].Provider)
	assert.Equal(t, "mock-large", cfg.Roles["synthesize"].Model)
}

func TestLoadRoutingConfigMissingFile(t *testing.T) {
	cfg, err := LoadRoutingConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Empty(t, cfg.ActiveProvider)
}

func TestManagerRoleRouting(t *testing.T) {
	gemini := NewMockProvider("gemini says")
	mock := NewMockProvider("mock says")
	m := NewManager(RoutingConfig{
		ActiveProvider: "gemini",
		Roles: map[string]RoleConfig{
			"synthesize": {Provider: "mock", Model: "mock-large"},
		},
	}, map[string]Provider{"gemini": gemini, "mock": mock})

	assert.Same(t, Provider(mock), m.ProviderFor("synthesize"))
	assert.Same(t, Provider(gemini), m.ProviderFor("decompose"))

	opts := m.OptionsFor("synthesize")
	require.NotNil(t, opts)
	assert.Equal(t, "mock-large", opts[OptionModel])
	assert.Nil(t, m.OptionsFor("decompose"))
}

func TestManagerFallsBackToAnyProvider(t *testing.T) {
	only := NewMockProvider()
	m := NewManager(RoutingConfig{}, map[string]Provider{"only": only})
	assert.Same(t, Provider(only), m.ProviderFor("answer"))
}
