// ABOUTME: Surface is an offscreen raster canvas with a container size
// ABOUTME: Fresh surfaces start at 300x150 like an unsized HTML canvas

package render

import (
	"image"

	"github.com/mauromedda/overlay-wizard/internal/raster"
)

// Default size of a surface that has never been fitted.
const (
	DefaultSurfaceWidth  = 300
	DefaultSurfaceHeight = 150
)

// GroupContainer is the intrinsic size of the preview group that hosts
// wizard canvases.
var GroupContainer = image.Pt(600, 600)

// Surface is a drawable canvas.
type Surface struct {
	id        string
	container image.Point
	img       *image.RGBA
}

// NewSurface creates a surface inside a container of the given size.
func NewSurface(id string, container image.Point) *Surface {
	return &Surface{
		id:        id,
		container: container,
		img:       image.NewRGBA(image.Rect(0, 0, DefaultSurfaceWidth, DefaultSurfaceHeight)),
	}
}

// ID returns the surface name.
func (s *Surface) ID() string { return s.id }

// Container returns the container's intrinsic size.
func (s *Surface) Container() image.Point { return s.container }

// SetContainer changes the container size; the surface keeps its pixels
// until the next FitContainer.
func (s *Surface) SetContainer(p image.Point) { s.container = p }

// Image returns the backing image.
func (s *Surface) Image() *image.RGBA { return s.img }

// Size returns the current width and height.
func (s *Surface) Size() (int, int) {
	b := s.img.Bounds()
	return b.Dx(), b.Dy()
}

// Resize sets the surface size. Like assigning canvas.width, it always
// clears the content.
func (s *Surface) Resize(w, h int) {
	w, h = max(w, 0), max(h, 0)
	if cw, ch := s.Size(); cw == w && ch == h {
		s.Clear()
		return
	}
	s.img = image.NewRGBA(image.Rect(0, 0, w, h))
}

// FitContainer resizes the surface to its container.
func (s *Surface) FitContainer() {
	s.Resize(s.container.X, s.container.Y)
}

// Clear makes every pixel transparent.
func (s *Surface) Clear() {
	raster.Clear(s.img)
}
