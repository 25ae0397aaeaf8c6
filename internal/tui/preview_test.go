// ABOUTME: Tests for the half-block surface preview
// ABOUTME: Checks scaling, row pairing and backdrop compositing

package tui

import (
	"fmt"
	"image"
	"image/color"
	"strings"
	"testing"

	"golang.org/x/image/draw"
)

func TestRenderHalfBlock_Nil(t *testing.T) {
	t.Parallel()
	if got := renderHalfBlock(nil, 10); got != nil {
		t.Errorf("nil image = %v; want nil", got)
	}
	if got := renderHalfBlock(image.NewRGBA(image.Rect(0, 0, 4, 4)), 0); got != nil {
		t.Errorf("zero cols = %v; want nil", got)
	}
}

func TestRenderHalfBlock_ScalesToColumns(t *testing.T) {
	t.Parallel()
	img := image.NewRGBA(image.Rect(0, 0, 600, 600))

	lines := renderHalfBlock(img, 20)
	if len(lines) != 10 {
		t.Fatalf("lines = %d; want 10", len(lines))
	}
	if got := strings.Count(lines[0], "▄"); got != 20 {
		t.Errorf("cells = %d; want 20", got)
	}
}

func TestRenderHalfBlock_TransparentShowsBackdrop(t *testing.T) {
	t.Parallel()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))

	lines := renderHalfBlock(img, 4)
	bd := previewBackdrop
	want := fmt.Sprintf("48;2;%d;%d;%dm", bd.R, bd.G, bd.B)
	for i, l := range lines {
		if strings.Count(l, want) != 4 {
			t.Errorf("line %d does not show the backdrop: %q", i, l)
		}
	}
}

func TestRenderHalfBlock_OpaqueCoversBackdrop(t *testing.T) {
	t.Parallel()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{R: 255, A: 255}), image.Point{}, draw.Src)

	bd := previewBackdrop
	backdrop := fmt.Sprintf("48;2;%d;%d;%dm", bd.R, bd.G, bd.B)
	for i, l := range renderHalfBlock(img, 4) {
		if strings.Contains(l, backdrop) {
			t.Errorf("line %d shows the backdrop through an opaque image", i)
		}
	}
}
