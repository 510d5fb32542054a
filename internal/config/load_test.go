package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFromPaths_DefaultsWhenNoFiles(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadFromPaths(context.Background(), filepath.Join(dir, "missing.yaml"), "")
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o-mini", cfg.Cloud.Model)
	assert.Equal(t, 15*time.Minute, cfg.Pipeline.StageTimeout)
}

func TestLoadFromPaths_ProjectOverridesGlobal(t *testing.T) {
	globalDir := t.TempDir()
	projectDir := t.TempDir()

	global := writeFile(t, globalDir, "config.yaml", `
cloud:
  model: gpt-4o
local:
  model: qwen2.5-coder:7b
`)
	project := writeFile(t, projectDir, "config.yaml", `
cloud:
  model: gpt-4.1-mini
pipeline:
  stage_timeout: 90s
agents:
  developer:
    max_iterations: 8
`)

	cfg, err := LoadFromPaths(context.Background(), project, global)
	require.NoError(t, err)

	assert.Equal(t, "gpt-4.1-mini", cfg.Cloud.Model, "project wins")
	assert.Equal(t, "qwen2.5-coder:7b", cfg.Local.Model, "global kept when project silent")
	assert.Equal(t, 90*time.Second, cfg.Pipeline.StageTimeout)
	assert.Equal(t, 8, cfg.Agents.Developer.MaxIterations)
	assert.Equal(t, 3, cfg.Agents.Supervisor.MaxIterations)
}

func TestLoadFromPaths_EnvOverrides(t *testing.T) {
	t.Setenv("LUNA_CLOUD_MODEL", "gpt-4o")
	t.Setenv("OLLAMA_BASE_URL", "http://gpu-box:11434")
	t.Setenv("LUNA_PIPELINE_ENFORCE_CONTRACTS", "false")

	cfg, err := LoadFromPaths(context.Background(), "", "")
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o", cfg.Cloud.Model)
	assert.Equal(t, "http://gpu-box:11434", cfg.Local.BaseURL)
	assert.False(t, cfg.Pipeline.EnforceContracts)
}

func TestLoadFromPaths_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	project := writeFile(t, dir, "config.yaml", `
cloud:
  provider: anthropic
`)

	_, err := LoadFromPaths(context.Background(), project, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cloud.provider")
}

func TestLoadFromPaths_MalformedYAML(t *testing.T) {
	dir := t.TempDir()
	project := writeFile(t, dir, "config.yaml", "cloud: [unclosed")

	_, err := LoadFromPaths(context.Background(), project, "")
	require.Error(t, err)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, ".env", "LUNA_DOTENV_PROBE=from-file\n")
	t.Setenv("LUNA_DOTENV_PROBE", "")
	require.NoError(t, os.Unsetenv("LUNA_DOTENV_PROBE"))

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-file", os.Getenv("LUNA_DOTENV_PROBE"))

	require.NoError(t, LoadDotEnv(filepath.Join(dir, "absent.env")), "missing file is fine")
}
