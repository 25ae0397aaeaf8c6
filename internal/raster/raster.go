// ABOUTME: Canvas-style affine transforms and anti-aliased rounded rectangles
// ABOUTME: Shapes are flattened to polygons and filled with golang.org/x/image/vector

package raster

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/vector"
)

// cornerSegments is the number of line segments per rounded corner.
const cornerSegments = 12

// Point is a 2D point.
type Point struct {
	X, Y float64
}

// Affine is a 2D affine transform [a b c d e f] mapping
// (x, y) to (a*x + c*y + e, b*x + d*y + f).
type Affine [6]float64

// Identity returns the identity transform.
func Identity() Affine {
	return Affine{1, 0, 0, 1, 0, 0}
}

// Multiply returns m∘n: n is applied first, then m.
func (m Affine) Multiply(n Affine) Affine {
	return Affine{
		m[0]*n[0] + m[2]*n[1],
		m[1]*n[0] + m[3]*n[1],
		m[0]*n[2] + m[2]*n[3],
		m[1]*n[2] + m[3]*n[3],
		m[0]*n[4] + m[2]*n[5] + m[4],
		m[1]*n[4] + m[3]*n[5] + m[5],
	}
}

// Translate post-multiplies a translation, like CanvasRenderingContext2D.translate.
func (m Affine) Translate(x, y float64) Affine {
	return m.Multiply(Affine{1, 0, 0, 1, x, y})
}

// Rotate post-multiplies a rotation by rad radians (clockwise on screen).
func (m Affine) Rotate(rad float64) Affine {
	s, c := math.Sincos(rad)
	return m.Multiply(Affine{c, s, -s, c, 0, 0})
}

// Apply transforms p.
func (m Affine) Apply(p Point) Point {
	return Point{
		X: m[0]*p.X + m[2]*p.Y + m[4],
		Y: m[1]*p.X + m[3]*p.Y + m[5],
	}
}

// Radians converts degrees to radians.
func Radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// ClampRadius limits r to [0, min(w, h)/2].
func ClampRadius(w, h, r float64) float64 {
	limit := math.Min(math.Abs(w), math.Abs(h)) / 2
	if r < 0 || math.IsNaN(r) {
		return 0
	}
	return math.Min(r, limit)
}

// RoundedRect returns the outline of a rounded rectangle, clockwise in
// screen coordinates, starting at the end of the top-left corner.
func RoundedRect(x, y, w, h, r float64) []Point {
	r = ClampRadius(w, h, r)
	if r == 0 {
		return []Point{{x, y}, {x + w, y}, {x + w, y + h}, {x, y + h}}
	}

	pts := make([]Point, 0, 4*(cornerSegments+1))
	corners := []struct {
		cx, cy float64
		start  float64
	}{
		{x + w - r, y + r, -math.Pi / 2},
		{x + w - r, y + h - r, 0},
		{x + r, y + h - r, math.Pi / 2},
		{x + r, y + r, math.Pi},
	}
	for _, c := range corners {
		for i := 0; i <= cornerSegments; i++ {
			a := c.start + (math.Pi/2)*float64(i)/cornerSegments
			s, co := math.Sincos(a)
			pts = append(pts, Point{c.cx + r*co, c.cy + r*s})
		}
	}
	return pts
}

// Reverse returns pts in the opposite winding.
func Reverse(pts []Point) []Point {
	out := make([]Point, len(pts))
	for i, p := range pts {
		out[len(pts)-1-i] = p
	}
	return out
}

// FillPolygons fills the union of polys, transformed by m, onto dst.
// Polygons wound in opposite directions cancel, which cuts holes.
func FillPolygons(dst draw.Image, m Affine, col color.Color, polys ...[]Point) {
	b := dst.Bounds()
	if b.Empty() {
		return
	}
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	for _, poly := range polys {
		if len(poly) < 3 {
			continue
		}
		for i, p := range poly {
			q := m.Apply(p)
			qx, qy := float32(q.X-float64(b.Min.X)), float32(q.Y-float64(b.Min.Y))
			if i == 0 {
				z.MoveTo(qx, qy)
				continue
			}
			z.LineTo(qx, qy)
		}
		z.ClosePath()
	}
	z.Draw(dst, b, image.NewUniform(col), image.Point{})
}

// FillRoundedRect fills a rounded rectangle given in the local space of m.
func FillRoundedRect(dst draw.Image, m Affine, x, y, w, h, r float64, col color.Color) {
	FillPolygons(dst, m, col, RoundedRect(x, y, w, h, r))
}

// StrokeRoundedRect strokes a rounded rectangle outline of the given line
// width, centered on the path like a canvas stroke.
func StrokeRoundedRect(dst draw.Image, m Affine, x, y, w, h, r, lineWidth float64, col color.Color) {
	if lineWidth <= 0 {
		return
	}
	r = ClampRadius(w, h, r)
	half := lineWidth / 2

	outerR := 0.0
	if r > 0 {
		outerR = r + half
	}
	outer := RoundedRect(x-half, y-half, w+lineWidth, h+lineWidth, outerR)

	iw, ih := w-lineWidth, h-lineWidth
	if iw <= 0 || ih <= 0 {
		FillPolygons(dst, m, col, outer)
		return
	}
	inner := Reverse(RoundedRect(x+half, y+half, iw, ih, math.Max(r-half, 0)))
	FillPolygons(dst, m, col, outer, inner)
}

// Clear resets every pixel of dst to transparent.
func Clear(dst draw.Image) {
	draw.Draw(dst, dst.Bounds(), image.Transparent, image.Point{}, draw.Src)
}
