// ABOUTME: Tests for headless mode: mask export and preview rendering without a terminal
// ABOUTME: Also covers alert flattening and the headless flag predicate

package main

import (
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/mauromedda/overlay-wizard/internal/config"
	"github.com/mauromedda/overlay-wizard/internal/engine"
	"github.com/mauromedda/overlay-wizard/internal/lifecycle"
	"github.com/mauromedda/overlay-wizard/internal/render"
	"github.com/mauromedda/overlay-wizard/internal/types"
)

func TestRunHeadless_WritesMaskAndPreview(t *testing.T) {
	dir := t.TempDir()
	preview := filepath.Join(dir, "preview.png")
	args := cliArgs{overlayType: "webcam", exportMask: true, render: preview}
	cfg := &config.Config{ExportDir: dir}

	if err := runHeadless(args, cfg, engine.DefaultAsset(), nil, lifecycle.DefaultRetryPolicy()); err != nil {
		t.Fatalf("runHeadless: %v", err)
	}

	for _, path := range []string{filepath.Join(dir, render.MaskFilename), preview} {
		f, err := os.Open(path)
		if err != nil {
			t.Fatalf("open %s: %v", path, err)
		}
		img, err := png.Decode(f)
		f.Close()
		if err != nil {
			t.Fatalf("decode %s: %v", path, err)
		}
		if b := img.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
			t.Errorf("%s is empty: %v", path, b)
		}
	}
}

func TestRunHeadless_UnknownType(t *testing.T) {
	args := cliArgs{overlayType: "banner", exportMask: true}
	cfg := &config.Config{ExportDir: t.TempDir()}

	if err := runHeadless(args, cfg, engine.DefaultAsset(), nil, lifecycle.DefaultRetryPolicy()); err == nil {
		t.Error("expected error for unknown overlay type")
	}
}

func TestAlertError(t *testing.T) {
	err := alertError(types.NewAlert("Export Error", "Failed to create mask image."))
	if got, want := err.Error(), "Export Error: Failed to create mask image."; got != want {
		t.Errorf("alertError = %q; want %q", got, want)
	}

	plain := errors.New("boom")
	if got := alertError(plain); got != plain {
		t.Errorf("plain error changed: %v", got)
	}
}

func TestCliArgs_Headless(t *testing.T) {
	tests := []struct {
		args cliArgs
		want bool
	}{
		{cliArgs{}, false},
		{cliArgs{exportMask: true}, true},
		{cliArgs{render: "out.png"}, true},
	}
	for _, tt := range tests {
		if got := tt.args.headless(); got != tt.want {
			t.Errorf("%+v.headless() = %v; want %v", tt.args, got, tt.want)
		}
	}
}
