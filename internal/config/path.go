// Package config loads statement-flow settings from viper and the environment.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// AppName names the configuration directory under $HOME/.config.
const AppName = "stmt"

// DefaultDatabaseFile is the cache file name inside the configuration directory.
const DefaultDatabaseFile = "statements.db"

// ExpandPath expands ~ and environment variables in a file path.
// It handles both ~ for home directory and $VAR style environment variables.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	// First expand tilde if present
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = home
		}
	}

	// Then expand environment variables
	return os.ExpandEnv(path)
}

// Dir returns $HOME/.config/stmt.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName), nil
}

// DatabasePath returns the statement cache location. database.path wins over
// the default file in the configuration directory.
func DatabasePath() (string, error) {
	if p := strings.TrimSpace(viper.GetString("database.path")); p != "" {
		return ExpandPath(p), nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DefaultDatabaseFile), nil
}
