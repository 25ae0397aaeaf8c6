// ABOUTME: Tests for persisted settings encoding and query-string seeding
// ABOUTME: Bad query payloads must yield pure defaults, never an error

package settings

import (
	"maps"
	"testing"
)

func TestFromQuery_SeedsOverDefaults(t *testing.T) {
	t.Parallel()

	rec := FromQuery("settings=%7B%22rotation%22%3A90%7D", Webcam)

	want := Defaults(Webcam)
	want[FieldRotation] = 90.0
	if !maps.Equal(rec, want) {
		t.Errorf("FromQuery = %v, want %v", rec, want)
	}
}

func TestFromQuery_LeadingQuestionMark(t *testing.T) {
	t.Parallel()

	rec := FromQuery("?foo=1&settings=%7B%22borderRadius%22%3A4%7D", Keyboard)
	if rec.Number(FieldBorderRadius) != 4 {
		t.Errorf("borderRadius = %v, want 4", rec[FieldBorderRadius])
	}
}

func TestFromQuery_InvalidPayloadYieldsDefaults(t *testing.T) {
	t.Parallel()

	for _, q := range []string{
		"settings=%7Bnot-json",
		"settings=%5B1%2C2%5D",
		"settings=null",
		"settings=%zz",
	} {
		rec := FromQuery(q, Webcam)
		if !maps.Equal(rec, Defaults(Webcam)) {
			t.Errorf("FromQuery(%q) = %v, want defaults", q, rec)
		}
	}
}

func TestFromQuery_Absent(t *testing.T) {
	t.Parallel()

	if rec := FromQuery("", Webcam); !maps.Equal(rec, Defaults(Webcam)) {
		t.Errorf("FromQuery(\"\") = %v", rec)
	}
}

func TestFromQuery_BadFieldKeepsDefault(t *testing.T) {
	t.Parallel()

	rec := FromQuery("settings=%7B%22rotation%22%3A%22x%22%2C%22color%22%3A%22%23000%22%7D", Webcam)
	if rec.Number(FieldRotation) != 0 {
		t.Errorf("rotation = %v, want default", rec[FieldRotation])
	}
	if rec.String(FieldColor) != "#000" {
		t.Errorf("color = %v, want #000", rec[FieldColor])
	}
}

func TestEncodeDecode(t *testing.T) {
	t.Parallel()

	s := NewStore()
	_ = s.Update(Keyboard, Record{FieldRotation: 12})

	data, err := Encode(Keyboard, s.Get(Keyboard))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	typ, rec, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if typ != Keyboard {
		t.Errorf("type = %s, want keyboard", typ)
	}
	if _, ok := rec[KeyOverlayType]; ok {
		t.Error("discriminator not stripped")
	}

	s2 := NewStore()
	if err := s2.Replace(typ, rec); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if s2.Get(Keyboard).Number(FieldRotation) != 12 {
		t.Errorf("rotation lost: %v", s2.Get(Keyboard))
	}
}

func TestDecode_LegacyIsWebcam(t *testing.T) {
	t.Parallel()

	typ, rec, err := Decode(`{"factor":1,"aspectRatio":"16x9","rotation":0,"borderRadius":10,"color1":"#77b0f2ff"}`)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if typ != Webcam {
		t.Errorf("type = %s, want webcam", typ)
	}
	if rec.FillColor() != "#77b0f2ff" {
		t.Errorf("FillColor = %q", rec.FillColor())
	}
}

func TestDecode_Errors(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "[]", `{"overlayType":"mouse"}`, "null"} {
		if _, _, err := Decode(in); err == nil {
			t.Errorf("Decode(%q) should fail", in)
		}
	}
}
