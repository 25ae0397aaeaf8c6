// ABOUTME: Environment overrides and ${VAR} expansion for config fields
// ABOUTME: OVERLAY_WIZARD_* variables override file values; unset vars expand to empty

package config

import (
	"os"
	"regexp"
)

// Environment variable names read by ApplyEnv.
const (
	EnvHostMode  = "OVERLAY_WIZARD_HOST"
	EnvStatePath = "OVERLAY_WIZARD_STATE"
	EnvAssetPath = "OVERLAY_WIZARD_ASSET"
	EnvLogLevel  = "OVERLAY_WIZARD_LOG_LEVEL"
	EnvLogFile   = "OVERLAY_WIZARD_LOG_FILE"
)

var envVarPattern = regexp.MustCompile(`\$\{(\w+)\}`)

// ApplyEnv overrides config fields from OVERLAY_WIZARD_* variables.
func ApplyEnv(c *Config, getenv func(string) string) {
	if v := getenv(EnvHostMode); v != "" {
		c.Host.Mode = v
	}
	if v := getenv(EnvStatePath); v != "" {
		c.Host.StatePath = v
	}
	if v := getenv(EnvAssetPath); v != "" {
		c.AssetPath = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := getenv(EnvLogFile); v != "" {
		c.LogFile = v
	}
}

// ResolveEnvVars expands ${VAR} patterns in path and command fields.
func ResolveEnvVars(c *Config) {
	c.Host.StatePath = expandEnv(c.Host.StatePath)
	c.Host.Command = expandEnv(c.Host.Command)
	for i, a := range c.Host.Args {
		c.Host.Args[i] = expandEnv(a)
	}
	c.AssetPath = expandEnv(c.AssetPath)
	c.ExportDir = expandEnv(c.ExportDir)
	c.LogFile = expandEnv(c.LogFile)
}

// expandEnv replaces ${VAR} with os.Getenv(VAR). Unset vars become "".
func expandEnv(s string) string {
	if s == "" {
		return s
	}
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}
