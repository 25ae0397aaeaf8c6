// ABOUTME: Hex color parsing and packing into 32-bit ARGB for engine color inputs
// ABOUTME: Accepts 3, 6 or 8 hex digits with optional '#'; anything else is opaque white

package render

import (
	"image/color"
	"strconv"
	"strings"
)

// OpaqueWhite is the fallback for unparseable colors.
const OpaqueWhite uint32 = 0xFFFFFFFF

// HexToARGB packs a hex color as (A<<24)|(R<<16)|(G<<8)|B.
// "#rgb" duplicates each nibble, "#rrggbb" is opaque, "#rrggbbaa" takes
// alpha from the last byte.
func HexToARGB(s string) uint32 {
	h := strings.TrimPrefix(s, "#")

	switch len(h) {
	case 3:
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]}) + "ff"
	case 6:
		h += "ff"
	case 8:
	default:
		return OpaqueWhite
	}

	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return OpaqueWhite
	}
	rgba := uint32(v)
	return rgba>>8 | rgba<<24
}

// UnpackARGB splits a packed color into channels.
func UnpackARGB(argb uint32) (a, r, g, b uint8) {
	return uint8(argb >> 24), uint8(argb >> 16), uint8(argb >> 8), uint8(argb)
}

// ParseColor converts a hex string to a non-premultiplied color.
func ParseColor(s string) color.NRGBA {
	a, r, g, b := UnpackARGB(HexToARGB(s))
	return color.NRGBA{R: r, G: g, B: b, A: a}
}
