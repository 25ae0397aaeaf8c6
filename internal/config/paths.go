// ABOUTME: Standard filesystem paths for overlay-wizard configuration and data
// ABOUTME: Resolves ~/.overlay-wizard/ for global and .overlay-wizard.yaml for project-local config

package config

import (
	"os"
	"path/filepath"
)

const (
	globalDirName     = ".overlay-wizard"
	projectConfigName = ".overlay-wizard.yaml"
	globalConfigName  = "config.yaml"
	assetsDirName     = "assets"
)

// GlobalDir returns the user-global config directory (~/.overlay-wizard/).
func GlobalDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", globalDirName)
	}
	return filepath.Join(home, globalDirName)
}

// GlobalConfigFile returns the path to the global config file.
func GlobalConfigFile() string {
	return filepath.Join(GlobalDir(), globalConfigName)
}

// ProjectConfigFile returns the path to the project-local config file.
func ProjectConfigFile(projectRoot string) string {
	return filepath.Join(projectRoot, projectConfigName)
}

// AssetsDir returns the directory the file host copies uploaded images into,
// next to its state file.
func AssetsDir(statePath string) string {
	return filepath.Join(filepath.Dir(statePath), assetsDirName)
}

// EnsureDir creates dir (and parents) if missing.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0o755)
}
