// ABOUTME: Persisted settings layout and query-string seeding
// ABOUTME: One JSON object per source; overlayType discriminates, absent means webcam

package settings

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/mauromedda/overlay-wizard/internal/log"
)

// KeyOverlayType is the discriminator key in persisted settings.
const KeyOverlayType = "overlayType"

// QueryParam is the query-string parameter that seeds the initial record.
const QueryParam = "settings"

// Encode serializes rec for persistence through the host.
func Encode(t Type, rec Record) (string, error) {
	out := rec.Clone()
	out[KeyOverlayType] = string(t)
	data, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("encoding settings: %w", err)
	}
	return string(data), nil
}

// Decode parses persisted settings. The discriminator is stripped from the
// returned record.
func Decode(s string) (Type, Record, error) {
	rec, err := decodeObject([]byte(s))
	if err != nil {
		return "", nil, err
	}

	t := Webcam
	if raw, ok := rec[KeyOverlayType]; ok {
		name, _ := raw.(string)
		parsed, err := ParseType(name)
		if err != nil {
			return "", nil, err
		}
		t = parsed
		delete(rec, KeyOverlayType)
	}
	return t, rec, nil
}

func decodeObject(data []byte) (Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var rec Record
	if err := dec.Decode(&rec); err != nil {
		return nil, fmt.Errorf("decoding settings: %w", err)
	}
	if rec == nil {
		return nil, errors.New("decoding settings: not a JSON object")
	}
	return rec, nil
}

// FromQuery builds the initial record for t from a raw query string such as
// "settings=%7B%22rotation%22%3A90%7D". Any failure yields pure defaults.
func FromQuery(rawQuery string, t Type) Record {
	rec, err := parseQuery(rawQuery, t)
	if err != nil {
		log.Error("failed to parse settings from query string: %v", err)
		return Defaults(t)
	}
	return rec
}

func parseQuery(rawQuery string, t Type) (Record, error) {
	values, err := url.ParseQuery(strings.TrimPrefix(rawQuery, "?"))
	if err != nil {
		return nil, err
	}
	raw := values.Get(QueryParam)
	if raw == "" {
		return Defaults(t), nil
	}

	seed, err := decodeObject([]byte(raw))
	if err != nil {
		return nil, err
	}
	delete(seed, KeyOverlayType)

	s := NewStore()
	if err := s.Update(t, seed); err != nil {
		log.Warn("ignoring seeded fields: %v", err)
	}
	return s.Get(t), nil
}
