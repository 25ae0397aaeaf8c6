// ABOUTME: Tests for hex color packing
// ABOUTME: Covers nibble duplication, alpha placement, round-trip and white fallback

package render

import (
	"fmt"
	"image/color"
	"testing"
)

func TestHexToARGB(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want uint32
	}{
		{"#f0a", 0xFFFF00AA},
		{"f0a", 0xFFFF00AA},
		{"#77b0f2", 0xFF77B0F2},
		{"77B0F2", 0xFF77B0F2},
		{"#77b0f280", 0x8077B0F2},
		{"#00000000", 0x00000000},
		{"#ffffff", 0xFFFFFFFF},
	}
	for _, tt := range tests {
		if got := HexToARGB(tt.in); got != tt.want {
			t.Errorf("HexToARGB(%q) = %#08x, want %#08x", tt.in, got, tt.want)
		}
	}
}

func TestHexToARGB_Malformed(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "#", "#ff", "#ffff", "#fffff", "#1234567", "#123456789", "#ggg", "#12345z", "##123456", "#-12345", "+123456"} {
		if got := HexToARGB(in); got != OpaqueWhite {
			t.Errorf("HexToARGB(%q) = %#08x, want opaque white", in, got)
		}
	}
}

func TestHexToARGB_RoundTrip(t *testing.T) {
	t.Parallel()

	for _, rgb := range [][3]uint8{{0, 0, 0}, {255, 255, 255}, {0x12, 0xab, 0x7f}, {1, 2, 3}, {0xfe, 0x80, 0x00}} {
		for _, prefix := range []string{"", "#"} {
			s := fmt.Sprintf("%s%02x%02x%02x", prefix, rgb[0], rgb[1], rgb[2])
			a, r, g, b := UnpackARGB(HexToARGB(s))
			if r != rgb[0] || g != rgb[1] || b != rgb[2] || a != 0xFF {
				t.Errorf("%s unpacked to a=%d r=%d g=%d b=%d", s, a, r, g, b)
			}

			s8 := s + "7f"
			a, r, g, b = UnpackARGB(HexToARGB(s8))
			if r != rgb[0] || g != rgb[1] || b != rgb[2] || a != 0x7f {
				t.Errorf("%s unpacked to a=%d r=%d g=%d b=%d", s8, a, r, g, b)
			}
		}
	}
}

func TestHexToARGB_ShortForm(t *testing.T) {
	t.Parallel()

	a, r, g, b := UnpackARGB(HexToARGB("#f0a"))
	if r != 0xFF || g != 0x00 || b != 0xAA || a != 0xFF {
		t.Errorf("#f0a unpacked to a=%#x r=%#x g=%#x b=%#x", a, r, g, b)
	}
}

func TestParseColor(t *testing.T) {
	t.Parallel()

	want := color.NRGBA{R: 0x77, G: 0xb0, B: 0xf2, A: 0x40}
	if got := ParseColor("#77b0f240"); got != want {
		t.Errorf("ParseColor = %+v, want %+v", got, want)
	}
}
