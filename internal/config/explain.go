// ABOUTME: Human-readable rendering of the effective configuration
// ABOUTME: Used by the "config explain" subcommand to show merged settings

package config

import (
	"fmt"
	"strings"
)

// Explain renders a summary of the effective configuration grouped by
// section. Empty values are omitted.
func Explain(c *Config) string {
	if c == nil {
		c = &Config{}
	}

	var b strings.Builder

	b.WriteString("=== Host ===\n")
	writeField(&b, "Mode", c.Host.Mode)
	writeField(&b, "StatePath", c.Host.StatePath)
	if c.Host.Command != "" {
		writeField(&b, "Command", strings.Join(append([]string{c.Host.Command}, c.Host.Args...), " "))
	}
	b.WriteString("\n")

	b.WriteString("=== Render ===\n")
	writeField(&b, "AssetPath", c.AssetPath)
	fmt.Fprintf(&b, "  %-12s %v\n", "WatchAsset:", c.IsWatchEnabled())
	if c.SettleDelay != 0 {
		writeField(&b, "SettleDelay", c.SettleDelay.String())
	}
	writeField(&b, "ExportDir", c.ExportDir)
	b.WriteString("\n")

	b.WriteString("=== Recovery ===\n")
	if c.Retry.MaxAttempts != 0 {
		writeField(&b, "MaxAttempts", fmt.Sprint(c.Retry.MaxAttempts))
	}
	if c.Retry.Delay != 0 {
		writeField(&b, "Delay", c.Retry.Delay.String())
	}
	if c.Retry.Backoff != 0 {
		writeField(&b, "Backoff", fmt.Sprintf("%.2f", c.Retry.Backoff))
	}
	b.WriteString("\n")

	b.WriteString("=== Logging ===\n")
	writeField(&b, "Level", c.LogLevel)
	writeField(&b, "File", c.LogFile)

	return b.String()
}

func writeField(b *strings.Builder, name, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(b, "  %-12s %s\n", name+":", value)
}
