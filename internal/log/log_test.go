// ABOUTME: Tests for the leveled logging package
// ABOUTME: Validates level filtering, parsing, and output redirection

package log

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSetLevel(t *testing.T) {
	saved := GetLevel()
	defer SetLevel(saved)

	SetLevel(LevelDebug)
	if GetLevel() != LevelDebug {
		t.Errorf("expected LevelDebug, got %v", GetLevel())
	}

	SetLevel(LevelError)
	if GetLevel() != LevelError {
		t.Errorf("expected LevelError, got %v", GetLevel())
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"debug", "DEBUG", true},
		{"INFO", "INFO", true},
		{"", "INFO", true},
		{"warning", "WARN", true},
		{"error", "ERROR", true},
		{"loud", "INFO", false},
	}
	for _, tt := range tests {
		got, ok := ParseLevel(tt.in)
		if got.String() != tt.want || ok != tt.ok {
			t.Errorf("ParseLevel(%q) = %v, %v; want %s, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	saved := GetLevel()
	defer SetLevel(saved)

	var buf bytes.Buffer
	prev := SetOutput(&buf)
	defer SetOutput(prev)

	SetLevel(LevelWarn)
	Debug("hidden debug")
	Info("hidden info")
	Warn("shown %d", 1)

	got := buf.String()
	if strings.Contains(got, "hidden") {
		t.Errorf("suppressed levels leaked: %q", got)
	}
	if !strings.Contains(got, "[WARN] shown 1") {
		t.Errorf("warn line missing: %q", got)
	}
}

func TestErrorAlwaysEmitted(t *testing.T) {
	saved := GetLevel()
	defer SetLevel(saved)

	var buf bytes.Buffer
	prev := SetOutput(&buf)
	defer SetOutput(prev)

	SetLevel(LevelError + 4)
	Error("boom: %s", "x")

	if !strings.Contains(buf.String(), "[ERROR] boom: x") {
		t.Errorf("error line missing: %q", buf.String())
	}
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wizard.log")

	closeFn, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	Error("to file")
	if err := closeFn(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "to file") {
		t.Errorf("log file content = %q", data)
	}
}
