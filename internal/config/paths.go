package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// Platform identifiers.
const (
	platformLinux  = "linux"
	platformDarwin = "darwin"
)

// Application directory name used across all platforms.
const appName = "boxapi"

// Config file name.
const configFileName = "config.toml"

// DefaultConfigDir returns the platform-specific directory for config files:
// $XDG_CONFIG_HOME/boxapi or ~/.config/boxapi on Linux and
// ~/Library/Application Support/boxapi on macOS.
func DefaultConfigDir() string {
	return platformDir("XDG_CONFIG_HOME", ".config")
}

// DefaultDataDir returns the platform-specific directory for the auth token:
// $XDG_DATA_HOME/boxapi or ~/.local/share/boxapi on Linux. macOS keeps
// config and data in the same directory.
func DefaultDataDir() string {
	return platformDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

// platformDir resolves an application directory. Returns "" when the home
// directory is unknown.
func platformDir(xdgVar, homeRel string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	switch runtime.GOOS {
	case platformLinux:
		return xdgDir(home, xdgVar, homeRel)
	case platformDarwin:
		return filepath.Join(home, "Library", "Application Support", appName)
	default:
		return filepath.Join(home, homeRel, appName)
	}
}

// xdgDir applies the XDG base directory rule for one variable.
func xdgDir(home, xdgVar, homeRel string) string {
	if xdg := os.Getenv(xdgVar); xdg != "" {
		return filepath.Join(xdg, appName)
	}

	return filepath.Join(home, homeRel, appName)
}

// DefaultConfigPath returns the full path to the default config file, used
// when neither BOXAPI_CONFIG nor --config is given.
func DefaultConfigPath() string {
	dir := DefaultConfigDir()
	if dir == "" {
		return ""
	}

	return filepath.Join(dir, configFileName)
}
