// ABOUTME: High-resolution mask export of the frame geometry as PNG
// ABOUTME: Independent of live previews; geometry is a pure function of the settings record

package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/mauromedda/overlay-wizard/internal/raster"
	"github.com/mauromedda/overlay-wizard/internal/settings"
)

// Mask export constants.
const (
	MaskSize     = 1024
	MaskFilename = "webcam-frame-mask.png"
	maskScale    = 0.8
)

// MaskGeometry is the resolved shape of an exported mask.
type MaskGeometry struct {
	Size         int
	FrameWidth   float64
	FrameHeight  float64
	Rotation     float64
	BorderRadius float64
	StrokeWidth  float64
	Color        color.NRGBA
}

// Mask computes mask geometry from rec.
func Mask(rec settings.Record) MaskGeometry {
	w := MaskSize * maskScale
	return MaskGeometry{
		Size:         MaskSize,
		FrameWidth:   w,
		FrameHeight:  w * settings.RatioFactor(rec.String(settings.FieldAspectRatio)),
		Rotation:     rec.Number(settings.FieldRotation),
		BorderRadius: rec.Number(settings.FieldBorderRadius),
		StrokeWidth:  rec.Number(settings.FieldStrokeWidth),
		Color:        ParseColor(rec.FillColor()),
	}
}

// Render draws the mask on a transparent square image.
func (g MaskGeometry) Render() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, g.Size, g.Size))
	m := raster.Identity().
		Translate(float64(g.Size)/2, float64(g.Size)/2).
		Rotate(raster.Radians(g.Rotation))

	x, y := -g.FrameWidth/2, -g.FrameHeight/2
	raster.FillRoundedRect(img, m, x, y, g.FrameWidth, g.FrameHeight, g.BorderRadius, g.Color)
	if g.StrokeWidth > 0 {
		raster.StrokeRoundedRect(img, m, x, y, g.FrameWidth, g.FrameHeight, g.BorderRadius, g.StrokeWidth, g.Color)
	}
	return img
}

// ExportMask renders rec's mask and writes it to w as PNG.
func ExportMask(rec settings.Record, w io.Writer) error {
	if err := png.Encode(w, Mask(rec).Render()); err != nil {
		return fmt.Errorf("encoding mask: %w", err)
	}
	return nil
}
