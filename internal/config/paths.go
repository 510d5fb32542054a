package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lunacore/luna/internal/constants"
)

// HomeDir is where luna keeps its global config and logs: $LUNA_HOME when
// set, ~/.luna otherwise.
func HomeDir() (string, error) {
	if dir := os.Getenv(constants.EnvLunaHome); dir != "" {
		return dir, nil
	}
	user, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate user home: %w", err)
	}
	return filepath.Join(user, constants.LunaHome), nil
}

// inHome joins elem onto HomeDir.
func inHome(elem ...string) (string, error) {
	dir, err := HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(append([]string{dir}, elem...)...), nil
}

// GlobalConfigPath is the user-wide config.yaml.
func GlobalConfigPath() (string, error) {
	return inHome(constants.GlobalConfigName)
}

// ProjectConfigPath is the per-directory config file, relative to the
// working directory.
func ProjectConfigPath() string {
	return filepath.Join(constants.ProjectConfigDir, constants.GlobalConfigName)
}

// LogFilePath is the rotating CLI log.
func LogFilePath() (string, error) {
	return inHome(constants.LogsDir, constants.CLILogFileName)
}
