// ABOUTME: Tests for human-readable config explanation rendering
// ABOUTME: Covers empty, full, and partial configurations

package config

import (
	"strings"
	"testing"
	"time"
)

func TestExplain_Empty(t *testing.T) {
	t.Parallel()

	for _, c := range []*Config{nil, {}} {
		result := Explain(c)
		for _, section := range []string{"Host", "Render", "Recovery", "Logging"} {
			if !strings.Contains(result, "=== "+section+" ===") {
				t.Errorf("missing %s section:\n%s", section, result)
			}
		}
		if strings.Contains(result, "StatePath") {
			t.Error("empty config should not list StatePath")
		}
	}
}

func TestExplain_Full(t *testing.T) {
	t.Parallel()

	off := false
	c := &Config{
		Host: HostConfig{
			Mode:    HostRPC,
			Command: "obs-bridge",
			Args:    []string{"--port", "4455"},
		},
		AssetPath:   "/assets/frame.yaml",
		WatchAsset:  &off,
		SettleDelay: 150 * time.Millisecond,
		Retry:       RetryConfig{MaxAttempts: 3, Delay: 100 * time.Millisecond, Backoff: 2},
		LogLevel:    "debug",
	}
	result := Explain(c)

	for _, want := range []string{
		"Mode:        rpc",
		"Command:     obs-bridge --port 4455",
		"AssetPath:   /assets/frame.yaml",
		"WatchAsset:  false",
		"SettleDelay: 150ms",
		"MaxAttempts: 3",
		"Delay:       100ms",
		"Backoff:     2.00",
		"Level:       debug",
	} {
		if !strings.Contains(result, want) {
			t.Errorf("missing %q in:\n%s", want, result)
		}
	}
}

func TestExplain_Partial(t *testing.T) {
	t.Parallel()

	result := Explain(&Config{Host: HostConfig{Mode: HostFile, StatePath: "/tmp/host.json"}})
	if !strings.Contains(result, "StatePath:   /tmp/host.json") {
		t.Errorf("missing state path:\n%s", result)
	}
	if strings.Contains(result, "Command:") {
		t.Error("file mode without command should not list Command")
	}
	if !strings.Contains(result, "WatchAsset:  true") {
		t.Error("unset WatchAsset should default to true")
	}
}
