// ABOUTME: Static settings-to-view-model schema, validated once per loaded asset
// ABOUTME: Bind reports unsupported fields; Apply pushes values with typed setters

package render

import (
	"errors"
	"fmt"

	"github.com/mauromedda/overlay-wizard/internal/engine"
	"github.com/mauromedda/overlay-wizard/internal/log"
	"github.com/mauromedda/overlay-wizard/internal/settings"
)

// SchemaField maps a settings field to the view-model setter kind it needs.
type SchemaField struct {
	Field string
	Kind  engine.Kind
}

// Schema is the fixed mapping from settings fields to view-model inputs.
var Schema = []SchemaField{
	{settings.FieldRotation, engine.KindNumber},
	{settings.FieldBorderRadius, engine.KindNumber},
	{settings.FieldStrokeWidth, engine.KindNumber},
	{settings.FieldColor, engine.KindColor},
	{settings.FieldAspectRatio, engine.KindEnum},
}

// Diagnostic describes a schema field the loaded asset cannot take.
type Diagnostic struct {
	Field  string
	Reason string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("unsupported field %q: %s", d.Field, d.Reason)
}

type boundField struct {
	field  string
	kind   engine.Kind
	number engine.NumberProperty
	color  engine.ColorProperty
	enum   engine.EnumProperty
}

// Binding is a validated schema bound to one view model.
type Binding struct {
	fields []boundField
}

// Bind validates Schema against vm's declared properties. Asset properties
// outside the schema are left alone.
func Bind(vm *engine.ViewModel) (*Binding, []Diagnostic) {
	declared := make(map[string]engine.Kind)
	for _, p := range vm.Properties() {
		declared[p.Name] = p.Kind
	}

	b := &Binding{}
	var diags []Diagnostic
	for _, sf := range Schema {
		kind, ok := declared[sf.Field]
		if !ok {
			diags = append(diags, Diagnostic{sf.Field, fmt.Sprintf("view model %s does not declare it", vm.Name())})
			continue
		}
		if kind != sf.Kind {
			diags = append(diags, Diagnostic{sf.Field, fmt.Sprintf("declared as %s, need %s", kind, sf.Kind)})
			continue
		}

		bf := boundField{field: sf.Field, kind: sf.Kind}
		switch sf.Kind {
		case engine.KindNumber:
			bf.number, _ = vm.Number(sf.Field)
		case engine.KindColor:
			bf.color, _ = vm.Color(sf.Field)
		case engine.KindEnum:
			bf.enum, _ = vm.Enum(sf.Field)
		}
		b.fields = append(b.fields, bf)
	}
	return b, diags
}

// Fields returns the bound field names in schema order.
func (b *Binding) Fields() []string {
	out := make([]string, len(b.fields))
	for i, f := range b.fields {
		out[i] = f.field
	}
	return out
}

// Apply pushes rec into the bound properties. Fields absent from rec are
// skipped; enum values the asset does not declare are skipped with a warning.
func (b *Binding) Apply(rec settings.Record) error {
	var errs []error
	for _, f := range b.fields {
		v, ok := rec[f.field]
		if !ok {
			continue
		}
		switch f.kind {
		case engine.KindNumber:
			if _, isNum := v.(float64); !isNum {
				errs = append(errs, fmt.Errorf("%s: %T is not a number", f.field, v))
				continue
			}
			f.number.Set(rec.Number(f.field))
		case engine.KindColor:
			f.color.Set(HexToARGB(rec.FillColor()))
		case engine.KindEnum:
			name, _ := v.(string)
			if !f.enum.Has(name) {
				log.Warn("skipping %s=%q: not one of %v", f.field, name, f.enum.Values())
				continue
			}
			if err := f.enum.Set(name); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
