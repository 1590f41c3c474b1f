// Package xdg resolves XDG Base Directory paths for csvflow.
//
// Only the config directory is used today: results are never persisted, so
// csvflow keeps no state directory.
package xdg

import (
	"os"
	"path/filepath"
)

// AppName is the directory name used under the XDG base directories.
const AppName = "csvflow"

// ConfigDir returns the XDG config directory for csvflow.
// The directory is created with private permissions (0700) if missing.
// It falls back to ~/.config/csvflow when XDG_CONFIG_HOME is unset.
func ConfigDir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	dir := filepath.Join(base, AppName)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return dir, nil
}
