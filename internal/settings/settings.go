// ABOUTME: Overlay types, settings records, and per-type defaults
// ABOUTME: A Record is a flat field map; Get always returns every field an adapter reads

package settings

import (
	"fmt"
	"maps"
	"strconv"
)

// Type identifies the overlay being configured.
type Type string

const (
	Webcam   Type = "webcam"
	Keyboard Type = "keyboard"
)

// Types lists overlay types in display order.
var Types = []Type{Webcam, Keyboard}

// ParseType validates s as an overlay type.
func ParseType(s string) (Type, error) {
	switch Type(s) {
	case Webcam, Keyboard:
		return Type(s), nil
	default:
		return "", fmt.Errorf("unknown overlay type %q", s)
	}
}

// DisplayName returns the host-facing source name for the type.
func (t Type) DisplayName() string {
	switch t {
	case Keyboard:
		return "Keyboard Overlay"
	default:
		return "Webcam Frame"
	}
}

// Field names.
const (
	FieldRotation       = "rotation"
	FieldBorderRadius   = "borderRadius"
	FieldStrokeWidth    = "strokeWidth"
	FieldColor          = "color"
	FieldAspectRatio    = "aspectRatio"
	FieldCustomImageURL = "customImageUrl"

	// FieldLegacyColor is the fill key written by early versions of the widget.
	FieldLegacyColor = "color1"
)

// Aspect ratios offered by the editor.
const (
	Ratio16x9 = "16:9"
	Ratio4x3  = "4:3"
	Ratio1x1  = "1:1"
)

// AspectRatios lists the selectable ratios in display order.
var AspectRatios = []string{Ratio16x9, Ratio4x3, Ratio1x1}

// Record is a flat mapping from field name to value.
type Record map[string]any

// Clone returns a shallow copy.
func (r Record) Clone() Record {
	if r == nil {
		return Record{}
	}
	return maps.Clone(r)
}

// Number returns the numeric value of key, or 0 if absent or non-numeric.
func (r Record) Number(key string) float64 {
	f, _ := toFloat(r[key])
	return f
}

// String returns the string value of key, or "" if absent or not a string.
func (r Record) String(key string) string {
	s, _ := r[key].(string)
	return s
}

// FillColor returns color, falling back to the legacy color1 key.
func (r Record) FillColor() string {
	if c := r.String(FieldColor); c != "" {
		return c
	}
	return r.String(FieldLegacyColor)
}

// Defaults returns a fresh default record for t.
func Defaults(t Type) Record {
	switch t {
	case Keyboard:
		return Record{
			FieldRotation:     0.0,
			FieldBorderRadius: 10.0,
			FieldColor:        "#77b0f2",
			FieldAspectRatio:  Ratio16x9,
		}
	default:
		return Record{
			FieldRotation:       0.0,
			FieldBorderRadius:   10.0,
			FieldStrokeWidth:    5.0,
			FieldColor:          "#77b0f2",
			FieldAspectRatio:    Ratio16x9,
			FieldCustomImageURL: "",
		}
	}
}

// Fields returns the field names the editor exposes for t, in display order.
func Fields(t Type) []string {
	if t == Keyboard {
		return []string{FieldRotation, FieldBorderRadius, FieldColor, FieldAspectRatio}
	}
	return []string{FieldRotation, FieldBorderRadius, FieldStrokeWidth, FieldColor, FieldAspectRatio, FieldCustomImageURL}
}

// IsNumeric reports whether field holds a number.
func IsNumeric(field string) bool {
	switch field {
	case FieldRotation, FieldBorderRadius, FieldStrokeWidth:
		return true
	}
	return false
}

// FormatValue renders a field value for display.
func FormatValue(v any) string {
	switch x := v.(type) {
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case string:
		return x
	case nil:
		return ""
	default:
		return fmt.Sprint(x)
	}
}

// RatioFactor returns frame height as a share of frame width for an aspect
// ratio. Unrecognized ratios use 16:9.
func RatioFactor(ratio string) float64 {
	switch ratio {
	case Ratio4x3:
		return 3.0 / 4.0
	case Ratio1x1:
		return 1
	default:
		return 9.0 / 16.0
	}
}
