// ABOUTME: Half-block terminal preview of a render surface
// ABOUTME: Composites the surface onto a backdrop, scales with CatmullRom, emits ▄ cells

package tui

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"golang.org/x/image/draw"
)

// previewBackdrop stands in for the stream behind the overlay.
var previewBackdrop = color.RGBA{R: 0x1e, G: 0x1e, B: 0x24, A: 0xff}

// renderHalfBlock converts img to ANSI art using the lower-half block. Each
// cell shows two pixel rows: background is the top pixel, foreground the
// bottom one. The image is scaled to maxCols columns preserving aspect.
func renderHalfBlock(img image.Image, maxCols int) []string {
	if img == nil || maxCols <= 0 {
		return nil
	}
	bounds := img.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()
	if srcW == 0 || srcH == 0 {
		return nil
	}

	targetW, targetH := srcW, srcH
	if targetW > maxCols {
		targetH = targetH * maxCols / targetW
		targetW = maxCols
	}
	targetW, targetH = max(targetW, 1), max(targetH, 1)

	dst := image.NewRGBA(image.Rect(0, 0, targetW, targetH))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(previewBackdrop), image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	lines := make([]string, 0, (targetH+1)/2)
	for y := 0; y < targetH; y += 2 {
		var b strings.Builder
		for x := range targetW {
			top := dst.RGBAAt(x, y)
			bot := previewBackdrop
			if y+1 < targetH {
				bot = dst.RGBAAt(x, y+1)
			}
			fmt.Fprintf(&b, "\x1b[48;2;%d;%d;%dm\x1b[38;2;%d;%d;%dm▄",
				top.R, top.G, top.B, bot.R, bot.G, bot.B)
		}
		b.WriteString("\x1b[0m")
		lines = append(lines, b.String())
	}
	return lines
}
