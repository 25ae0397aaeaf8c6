// ABOUTME: Engine instance: one loaded asset bound to one canvas
// ABOUTME: Render draws the artboard's frame from current view-model values

package engine

import (
	"errors"
	"image/color"
	"image/draw"
	"strconv"
	"strings"

	"github.com/mauromedda/overlay-wizard/internal/raster"
)

// ErrDisposed is returned by an instance used after Dispose.
var ErrDisposed = errors.New("engine instance disposed")

// frameScale is the frame width as a share of the canvas width.
const frameScale = 0.8

// Instance is a live asset bound to a canvas.
type Instance struct {
	asset  *Asset
	vm     *ViewModel
	canvas draw.Image
	frames int
}

// Load instantiates asset on canvas.
func Load(asset *Asset, canvas draw.Image) (*Instance, error) {
	if asset == nil {
		return nil, errors.New("engine: nil asset")
	}
	if canvas == nil {
		return nil, errors.New("engine: nil canvas")
	}
	return &Instance{
		asset:  asset,
		vm:     newViewModel(asset),
		canvas: canvas,
	}, nil
}

// Artboard returns the asset's artboard name.
func (i *Instance) Artboard() string { return i.asset.Artboard }

// ViewModel returns the bound view model, or nil once disposed.
func (i *Instance) ViewModel() *ViewModel { return i.vm }

// Frames returns how many times the instance has rendered.
func (i *Instance) Frames() int { return i.frames }

// Disposed reports whether Dispose has run.
func (i *Instance) Disposed() bool { return i.canvas == nil }

// Render redraws the canvas from the view model.
func (i *Instance) Render() error {
	if i.Disposed() {
		return ErrDisposed
	}

	b := i.canvas.Bounds()
	raster.Clear(i.canvas)

	w := float64(b.Dx()) * frameScale
	h := w * i.ratio()
	stroke := i.number("strokeWidth", 0)
	radius := i.number("borderRadius", 0)
	argb := i.color("color")

	m := raster.Identity().
		Translate(float64(b.Min.X)+float64(b.Dx())/2, float64(b.Min.Y)+float64(b.Dy())/2).
		Rotate(raster.Radians(i.number("rotation", 0)))

	if glow := i.number("glow", 0); glow > 0 {
		halo := unpack(argb)
		halo.A /= 3
		raster.StrokeRoundedRect(i.canvas, m, -w/2, -h/2, w, h, radius, stroke+2*glow, halo)
	}
	raster.StrokeRoundedRect(i.canvas, m, -w/2, -h/2, w, h, radius, stroke, unpack(argb))

	i.frames++
	return nil
}

// Dispose releases the canvas binding and view model.
// Disposing twice is a no-op.
func (i *Instance) Dispose() error {
	i.canvas = nil
	i.vm = nil
	return nil
}

func (i *Instance) number(name string, fallback float64) float64 {
	if p, ok := i.vm.Number(name); ok {
		return p.Value()
	}
	return fallback
}

func (i *Instance) color(name string) uint32 {
	if p, ok := i.vm.Color(name); ok {
		return p.Value()
	}
	return 0xFFFFFFFF
}

// ratio derives height/width from an "aspectRatio" enum value "W:H".
func (i *Instance) ratio() float64 {
	const fallback = 9.0 / 16.0
	p, ok := i.vm.Enum("aspectRatio")
	if !ok {
		return fallback
	}
	ws, hs, ok := strings.Cut(p.Value(), ":")
	if !ok {
		return fallback
	}
	w, err1 := strconv.ParseFloat(ws, 64)
	h, err2 := strconv.ParseFloat(hs, 64)
	if err1 != nil || err2 != nil || w <= 0 || h <= 0 {
		return fallback
	}
	return h / w
}

func unpack(argb uint32) color.NRGBA {
	return color.NRGBA{
		A: uint8(argb >> 24),
		R: uint8(argb >> 16),
		G: uint8(argb >> 8),
		B: uint8(argb),
	}
}
