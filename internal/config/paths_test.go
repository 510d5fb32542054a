package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathsUnderLunaHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("LUNA_HOME", home)

	dir, err := HomeDir()
	require.NoError(t, err)
	assert.Equal(t, home, dir)

	logPath, err := LogFilePath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "logs", "luna.log"), logPath)

	global, err := GlobalConfigPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "config.yaml"), global)
}

func TestProjectConfigPath(t *testing.T) {
	assert.Equal(t, filepath.Join(".luna", "config.yaml"), ProjectConfigPath())
}
