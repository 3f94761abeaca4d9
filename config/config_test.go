package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flexygent/flexygent/orchestration"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "claude-sonnet-4-5", cfg.LLM.Model)
	assert.Equal(t, orchestration.AutonomyAuto, cfg.Policy.Autonomy)
	assert.Equal(t, orchestration.DefaultMaxSteps, cfg.Policy.MaxSteps)
	assert.Equal(t, "memory", cfg.Memory.Backend)
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
llm:
  model: gpt-5.2
policy:
  autonomy: confirm
  max_steps: 3
  deny_tools: [web.fetch]
memory:
  backend: sqlite
  path: /tmp/flexygent.db
log:
  level: debug
  format: json
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "gpt-5.2", cfg.LLM.Model)
	assert.Equal(t, orchestration.AutonomyConfirm, cfg.Policy.Autonomy)
	assert.Equal(t, 3, cfg.Policy.MaxSteps)
	assert.Equal(t, []string{"web.fetch"}, cfg.Policy.DenyTools)
	assert.Equal(t, "sqlite", cfg.Memory.Backend)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel())
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm:\n  model: gpt-5.2\n"), 0o644))
	t.Setenv("FLEXYGENT_LLM_MODEL", "claude-opus-4-6")
	t.Setenv("FLEXYGENT_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "claude-opus-4-6", cfg.LLM.Model)
	assert.Equal(t, slog.LevelWarn, cfg.LogLevel())
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm: [broken"), 0o644))
	_, err := Load(path)
	require.Error(t, err)
}

func TestNewLoggerBuilds(t *testing.T) {
	cfg := Default()
	require.NotNil(t, cfg.NewLogger())
	cfg.Log.Format = "json"
	require.NotNil(t, cfg.NewLogger())
}
