// Package config provides configuration paths for the signet CLI.
package config

import (
	"os"
	"path/filepath"
)

// Dir returns the signet config directory.
// Uses XDG_CONFIG_HOME/signet, defaulting to ~/.config/signet.
func Dir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "signet"), nil
}

// DataDir returns the signet data directory, which holds the audit database.
// Uses XDG_DATA_HOME/signet, defaulting to ~/.local/share/signet.
func DataDir() (string, error) {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(base, "signet"), nil
}
