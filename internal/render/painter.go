// ABOUTME: Direct 2D painter: one rotated rounded square centered on the surface
// ABOUTME: Used for overlay types without an engine asset; aspect ratio does not apply here

package render

import (
	"errors"

	"github.com/mauromedda/overlay-wizard/internal/raster"
	"github.com/mauromedda/overlay-wizard/internal/settings"
)

// BaseSize is the side of the painted square.
const BaseSize = 100

// CanvasPainter draws settings directly onto a surface.
type CanvasPainter struct{}

// Paint fits s to its container, clears it and draws the square.
func (CanvasPainter) Paint(s *Surface, rec settings.Record) error {
	if s == nil {
		return errors.New("paint: nil surface")
	}
	s.FitContainer()

	w, h := s.Size()
	m := raster.Identity().
		Translate(float64(w)/2, float64(h)/2).
		Rotate(raster.Radians(rec.Number(settings.FieldRotation)))

	half := BaseSize / 2.0
	raster.FillRoundedRect(s.Image(), m, -half, -half, BaseSize, BaseSize,
		rec.Number(settings.FieldBorderRadius), ParseColor(rec.FillColor()))
	return nil
}

// CanvasInstance binds the canvas painter to one surface.
type CanvasInstance struct {
	surface *Surface
	painter CanvasPainter
}

// NewCanvasInstance creates a painter instance for s.
func NewCanvasInstance(s *Surface) *CanvasInstance {
	return &CanvasInstance{surface: s}
}

// ApplyProperties repaints the surface from rec.
func (c *CanvasInstance) ApplyProperties(rec settings.Record) error {
	if c.surface == nil {
		return errDisposed
	}
	return c.painter.Paint(c.surface, rec)
}

// Dispose clears the surface and drops the binding.
func (c *CanvasInstance) Dispose() error {
	if c.surface != nil {
		c.surface.Clear()
		c.surface = nil
	}
	return nil
}
