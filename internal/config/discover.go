package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnvConfigPath names the environment variable that pins the config file.
const EnvConfigPath = "MEDIARR_CONFIG"

// ErrNotFound is returned by Discover when no candidate path exists.
var ErrNotFound = errors.New("config not found")

// DefaultPath is where `mediarr config init` writes when given no path:
// $XDG_CONFIG_HOME/mediarr/config.toml, falling back to ~/.config.
func DefaultPath() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "config.toml"
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "mediarr", "config.toml")
}

// SearchPaths lists the locations Discover tries, in order, when
// MEDIARR_CONFIG is unset.
func SearchPaths() []string {
	return []string{
		"config.toml",
		DefaultPath(),
		"/etc/mediarr/config.toml",
	}
}

// Discover returns the config file to load. MEDIARR_CONFIG wins and must
// exist; otherwise the first existing entry of SearchPaths is used.
func Discover() (string, error) {
	if p := os.Getenv(EnvConfigPath); p != "" {
		if _, err := os.Stat(p); err != nil {
			return "", fmt.Errorf("%s=%s: %w", EnvConfigPath, p, err)
		}
		return p, nil
	}

	paths := SearchPaths()
	for _, p := range paths {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w (tried %s)", ErrNotFound, strings.Join(paths, ", "))
}
