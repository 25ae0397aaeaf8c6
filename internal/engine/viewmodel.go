// ABOUTME: View-model runtime: named, typed properties with typed setters
// ABOUTME: Number, color (packed 32-bit ARGB) and enum-by-name properties

package engine

import (
	"errors"
	"fmt"
	"slices"
)

// ErrUnknownEnumValue is returned when an enum is set to an undeclared value.
var ErrUnknownEnumValue = errors.New("unknown enum value")

type property struct {
	def    PropertyDef
	number float64
	color  uint32
	enum   string
}

// ViewModel is an instantiated view model.
type ViewModel struct {
	name   string
	props  []*property
	byName map[string]*property
}

func newViewModel(a *Asset) *ViewModel {
	vm := &ViewModel{
		name:   a.ViewModel,
		byName: make(map[string]*property, len(a.Properties)),
	}
	for _, def := range a.Properties {
		p := &property{def: def}
		switch def.Kind {
		case KindNumber:
			p.number = numberDefault(def.Default)
		case KindColor:
			p.color = colorDefault(def.Default)
		case KindEnum:
			p.enum = def.Values[0]
			if d, ok := def.Default.(string); ok {
				p.enum = d
			}
		}
		vm.props = append(vm.props, p)
		vm.byName[def.Name] = p
	}
	return vm
}

func numberDefault(v any) float64 {
	switch x := v.(type) {
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case uint64:
		return float64(x)
	case float64:
		return x
	}
	return 0
}

func colorDefault(v any) uint32 {
	switch x := v.(type) {
	case int:
		return uint32(x)
	case int64:
		return uint32(x)
	case uint64:
		return uint32(x)
	}
	return 0xFFFFFFFF
}

// Name returns the view model's declared name.
func (vm *ViewModel) Name() string { return vm.name }

// Properties lists the declared properties in asset order.
func (vm *ViewModel) Properties() []PropertyDef {
	out := make([]PropertyDef, len(vm.props))
	for i, p := range vm.props {
		out[i] = p.def
	}
	return out
}

func (vm *ViewModel) lookup(name string, kind Kind) (*property, bool) {
	p, ok := vm.byName[name]
	if !ok || p.def.Kind != kind {
		return nil, false
	}
	return p, true
}

// Number returns the number property called name.
func (vm *ViewModel) Number(name string) (NumberProperty, bool) {
	p, ok := vm.lookup(name, KindNumber)
	return NumberProperty{p}, ok
}

// Color returns the color property called name.
func (vm *ViewModel) Color(name string) (ColorProperty, bool) {
	p, ok := vm.lookup(name, KindColor)
	return ColorProperty{p}, ok
}

// Enum returns the enum property called name.
func (vm *ViewModel) Enum(name string) (EnumProperty, bool) {
	p, ok := vm.lookup(name, KindEnum)
	return EnumProperty{p}, ok
}

// NumberProperty is a numeric view-model input.
type NumberProperty struct{ p *property }

func (n NumberProperty) Value() float64 { return n.p.number }
func (n NumberProperty) Set(v float64)  { n.p.number = v }

// ColorProperty is a packed 0xAARRGGBB view-model input.
type ColorProperty struct{ p *property }

func (c ColorProperty) Value() uint32   { return c.p.color }
func (c ColorProperty) Set(argb uint32) { c.p.color = argb }

// EnumProperty is an enum view-model input set by value name.
type EnumProperty struct{ p *property }

func (e EnumProperty) Value() string    { return e.p.enum }
func (e EnumProperty) Values() []string { return slices.Clone(e.p.def.Values) }

// Has reports whether v is a declared value.
func (e EnumProperty) Has(v string) bool { return slices.Contains(e.p.def.Values, v) }

// Set selects the value called v.
func (e EnumProperty) Set(v string) error {
	if !e.Has(v) {
		return fmt.Errorf("%s: %w %q", e.p.def.Name, ErrUnknownEnumValue, v)
	}
	e.p.enum = v
	return nil
}
