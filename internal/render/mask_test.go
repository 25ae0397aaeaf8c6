// ABOUTME: Tests for mask geometry and PNG export
// ABOUTME: Aspect ratio mapping must be exact; unknown ratios behave like 16:9

package render

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/mauromedda/overlay-wizard/internal/settings"
)

func TestMask_AspectRatios(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ratio string
		want  func(w float64) float64
	}{
		{"1:1", func(w float64) float64 { return w }},
		{"4:3", func(w float64) float64 { return w * 0.75 }},
		{"16:9", func(w float64) float64 { return w * (9.0 / 16.0) }},
		{"21:9", func(w float64) float64 { return w * (9.0 / 16.0) }},
		{"", func(w float64) float64 { return w * (9.0 / 16.0) }},
	}
	for _, tt := range tests {
		rec := specRecord()
		rec[settings.FieldAspectRatio] = tt.ratio
		g := Mask(rec)
		if g.FrameWidth != MaskSize*0.8 {
			t.Errorf("%q: FrameWidth = %v", tt.ratio, g.FrameWidth)
		}
		if want := tt.want(g.FrameWidth); g.FrameHeight != want {
			t.Errorf("%q: FrameHeight = %v, want %v", tt.ratio, g.FrameHeight, want)
		}
	}
}

func TestMask_Deterministic(t *testing.T) {
	t.Parallel()

	a := Mask(specRecord()).Render()
	b := Mask(specRecord()).Render()
	if !bytes.Equal(a.Pix, b.Pix) {
		t.Error("mask rendering is not deterministic")
	}
}

func TestExportMask_PNG(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := ExportMask(specRecord(), &buf); err != nil {
		t.Fatalf("ExportMask: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != MaskSize || b.Dy() != MaskSize {
		t.Errorf("mask size = %v", b)
	}
	if _, _, _, a := img.At(512, 512).RGBA(); a == 0 {
		t.Error("mask center is transparent")
	}
	if _, _, _, a := img.At(2, 2).RGBA(); a != 0 {
		t.Error("mask corner should be transparent")
	}
}

func TestMask_NoStrokeWhenZero(t *testing.T) {
	t.Parallel()

	rec := specRecord()
	rec[settings.FieldRotation] = 0.0
	rec[settings.FieldStrokeWidth] = 0.0
	rec[settings.FieldBorderRadius] = 0.0
	img := Mask(rec).Render()

	// Frame spans x 102.4..921.6; without stroke x=100 stays clear.
	if a := img.RGBAAt(100, 512).A; a != 0 {
		t.Errorf("alpha outside unstroked frame = %d", a)
	}

	rec[settings.FieldStrokeWidth] = 10.0
	img = Mask(rec).Render()
	if a := img.RGBAAt(100, 512).A; a == 0 {
		t.Error("stroke should extend beyond the fill edge")
	}
}
