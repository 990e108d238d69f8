package config

import (
	"os"
	"path/filepath"
)

const (
	// EnvConfigPath names a config file directly and wins over the search.
	EnvConfigPath = "TOPOVIEW_CONFIG"
	// ConfigFileName is looked for in the working directory.
	ConfigFileName = "topoview.yaml"
	// ConfigDirName is the directory used under the XDG and system locations.
	ConfigDirName = "topoview"
)

// FindConfigPath returns the first config file that exists, or "" when none
// does. $TOPOVIEW_CONFIG is honored first, then the working directory, the
// XDG config home, ~/.config, and finally /etc.
func FindConfigPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" && fileExists(p) {
		return p
	}
	for _, p := range searchPaths() {
		if fileExists(p) {
			return p
		}
	}
	return ""
}

func searchPaths() []string {
	paths := []string{ConfigFileName}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, ConfigDirName, "config.yaml"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", ConfigDirName, "config.yaml"))
	}
	return append(paths, filepath.Join("/etc", ConfigDirName, "config.yaml"))
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
