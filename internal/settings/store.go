// ABOUTME: In-memory settings store keyed by overlay type with coercing shallow merge
// ABOUTME: Invalid numeric input is rejected per field and the prior value kept

package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// InvalidFieldError reports a rejected field value.
type InvalidFieldError struct {
	Field string
	Value any
	Want  string
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("invalid %s for %s: %v", e.Want, e.Field, e.Value)
}

// Store holds the current record per overlay type.
// It is not safe for concurrent use; callers serialize access on the event loop.
type Store struct {
	records map[Type]Record
}

// NewStore creates a store holding defaults for every type.
func NewStore() *Store {
	s := &Store{records: make(map[Type]Record, len(Types))}
	for _, t := range Types {
		s.records[t] = Defaults(t)
	}
	return s
}

// Get returns a copy of the record for t with unset fields defaulted.
func (s *Store) Get(t Type) Record {
	out := Defaults(t)
	for k, v := range s.records[t] {
		if v == nil {
			continue
		}
		out[k] = v
	}
	return out
}

// Update merges partial into the record for t. Fields that fail coercion are
// skipped and reported; the others are applied.
func (s *Store) Update(t Type, partial Record) error {
	rec, ok := s.records[t]
	if !ok {
		rec = Defaults(t)
		s.records[t] = rec
	}

	var errs []error
	for k, v := range partial {
		cv, err := coerce(k, v)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		rec[k] = cv
	}
	return errors.Join(errs...)
}

// Replace swaps the record for t wholesale. Values are coerced; fields that
// fail fall back to defaults.
func (s *Store) Replace(t Type, rec Record) error {
	s.records[t] = Defaults(t)
	return s.Update(t, rec)
}

// coerce normalizes a field value. Numeric fields become float64; string
// fields must be strings; unknown fields pass through untouched.
func coerce(field string, v any) (any, error) {
	switch {
	case IsNumeric(field):
		f, ok := toFloat(v)
		if !ok {
			return nil, &InvalidFieldError{Field: field, Value: v, Want: "number"}
		}
		return f, nil
	case field == FieldColor || field == FieldAspectRatio || field == FieldCustomImageURL:
		str, ok := v.(string)
		if !ok {
			return nil, &InvalidFieldError{Field: field, Value: v, Want: "string"}
		}
		if field == FieldAspectRatio && str == "" {
			return nil, &InvalidFieldError{Field: field, Value: v, Want: "aspect ratio"}
		}
		return str, nil
	default:
		return v, nil
	}
}

func toFloat(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int32:
		f = float64(x)
	case int64:
		f = float64(x)
	case uint:
		f = float64(x)
	case uint32:
		f = float64(x)
	case uint64:
		f = float64(x)
	case json.Number:
		p, err := x.Float64()
		if err != nil {
			return 0, false
		}
		f = p
	case string:
		p, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		f = p
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// NormalizeHex applies the color text-input rules: a missing '#' is added
// and only #RRGGBB is accepted.
func NormalizeHex(input string) (string, bool) {
	s := strings.TrimSpace(input)
	if s == "" {
		return "", false
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	if len(s) != 7 {
		return "", false
	}
	for _, c := range s[1:] {
		if !isHexDigit(c) {
			return "", false
		}
	}
	return s, true
}

func isHexDigit(c rune) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
