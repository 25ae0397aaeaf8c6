// ABOUTME: Wizard configuration loading with global + project YAML merge
// ABOUTME: Defaults fill unset fields after env overrides so every consumer sees concrete values

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Host modes.
const (
	HostFile = "file"
	HostRPC  = "rpc"
)

// Config holds the merged configuration.
type Config struct {
	Host        HostConfig    `yaml:"host"`
	AssetPath   string        `yaml:"asset_path,omitempty"`
	WatchAsset  *bool         `yaml:"watch_asset,omitempty"`
	Retry       RetryConfig   `yaml:"retry"`
	SettleDelay time.Duration `yaml:"settle_delay,omitempty"`
	ExportDir   string        `yaml:"export_dir,omitempty"`
	LogLevel    string        `yaml:"log_level,omitempty"`
	LogFile     string        `yaml:"log_file,omitempty"`
}

// HostConfig selects and parameterizes the host bridge transport.
type HostConfig struct {
	Mode      string   `yaml:"mode,omitempty"`
	StatePath string   `yaml:"state_path,omitempty"`
	Command   string   `yaml:"command,omitempty"`
	Args      []string `yaml:"args,omitempty"`
}

// RetryConfig configures render-instance recovery after a binding error.
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts,omitempty"`
	Delay       time.Duration `yaml:"delay,omitempty"`
	Backoff     float64       `yaml:"backoff,omitempty"`
}

// IsWatchEnabled reports whether the engine asset should be hot-reloaded.
// Defaults to true when unset.
func (c *Config) IsWatchEnabled() bool {
	return c.WatchAsset == nil || *c.WatchAsset
}

// Load reads and merges global and project-local config, applies
// environment overrides, then fills defaults.
func Load(projectRoot string) (*Config, error) {
	global, err := LoadFile(GlobalConfigFile())
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading global config: %w", err)
	}

	project, err := LoadFile(ProjectConfigFile(projectRoot))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	merged := merge(global, project)
	ApplyEnv(merged, os.Getenv)
	ResolveEnvVars(merged)
	applyDefaults(merged)
	return merged, nil
}

// LoadFile reads a Config from a YAML file. Returns an empty Config and an
// error wrapping os.ErrNotExist when the file is absent.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return &Config{}, err
	}
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &c, nil
}

// merge overlays project values onto global values.
// Non-zero project values win.
func merge(global, project *Config) *Config {
	if global == nil {
		global = &Config{}
	}
	if project == nil {
		return global
	}

	result := *global

	if project.Host.Mode != "" {
		result.Host.Mode = project.Host.Mode
	}
	if project.Host.StatePath != "" {
		result.Host.StatePath = project.Host.StatePath
	}
	if project.Host.Command != "" {
		result.Host.Command = project.Host.Command
		result.Host.Args = project.Host.Args
	}
	if project.AssetPath != "" {
		result.AssetPath = project.AssetPath
	}
	if project.WatchAsset != nil {
		result.WatchAsset = project.WatchAsset
	}
	if project.Retry.MaxAttempts != 0 {
		result.Retry.MaxAttempts = project.Retry.MaxAttempts
	}
	if project.Retry.Delay != 0 {
		result.Retry.Delay = project.Retry.Delay
	}
	if project.Retry.Backoff != 0 {
		result.Retry.Backoff = project.Retry.Backoff
	}
	if project.SettleDelay != 0 {
		result.SettleDelay = project.SettleDelay
	}
	if project.ExportDir != "" {
		result.ExportDir = project.ExportDir
	}
	if project.LogLevel != "" {
		result.LogLevel = project.LogLevel
	}
	if project.LogFile != "" {
		result.LogFile = project.LogFile
	}

	return &result
}

func applyDefaults(c *Config) {
	if c.Host.Mode == "" {
		c.Host.Mode = HostFile
	}
	if c.Host.StatePath == "" {
		c.Host.StatePath = filepath.Join(GlobalDir(), "host.json")
	}
	if c.Retry.MaxAttempts <= 0 {
		c.Retry.MaxAttempts = 1
	}
	if c.Retry.Delay <= 0 {
		c.Retry.Delay = 100 * time.Millisecond
	}
	if c.Retry.Backoff < 1 {
		c.Retry.Backoff = 1
	}
	if c.SettleDelay <= 0 {
		c.SettleDelay = 150 * time.Millisecond
	}
	if c.ExportDir == "" {
		c.ExportDir = "."
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFile == "" {
		c.LogFile = filepath.Join(GlobalDir(), "overlay-wizard.log")
	}
}

// Validate checks fields that have a closed set of values.
func (c *Config) Validate() error {
	switch c.Host.Mode {
	case HostFile:
		if c.Host.StatePath == "" {
			return errors.New("host.state_path is required in file mode")
		}
	case HostRPC:
		if c.Host.Command == "" {
			return errors.New("host.command is required in rpc mode")
		}
	default:
		return fmt.Errorf("unknown host.mode %q", c.Host.Mode)
	}
	return nil
}
