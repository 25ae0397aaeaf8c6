// ABOUTME: Engine asset format: an artboard plus a view model of typed properties
// ABOUTME: Assets are YAML; a default webcam-frame asset is embedded in the binary

package engine

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

//go:embed assets/webcam-frame.yaml
var defaultAsset []byte

// Kind is a view-model property type.
type Kind string

const (
	KindNumber Kind = "number"
	KindColor  Kind = "color"
	KindEnum   Kind = "enum"
)

// PropertyDef declares one view-model property.
type PropertyDef struct {
	Name    string   `yaml:"name"`
	Kind    Kind     `yaml:"kind"`
	Values  []string `yaml:"values,omitempty"`
	Default any      `yaml:"default,omitempty"`
}

// Asset is a parsed engine file.
type Asset struct {
	Artboard   string        `yaml:"artboard"`
	ViewModel  string        `yaml:"view_model"`
	Width      int           `yaml:"width"`
	Height     int           `yaml:"height"`
	Properties []PropertyDef `yaml:"properties"`
}

// DefaultAsset returns the embedded webcam-frame asset.
func DefaultAsset() *Asset {
	a, err := Parse(defaultAsset)
	if err != nil {
		panic(fmt.Sprintf("engine: embedded asset invalid: %v", err))
	}
	return a
}

// LoadFile reads and parses an asset from disk.
func LoadFile(path string) (*Asset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading asset: %w", err)
	}
	a, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return a, nil
}

// Parse decodes and validates an asset.
func Parse(data []byte) (*Asset, error) {
	var a Asset
	if err := yaml.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("parsing asset: %w", err)
	}
	if err := a.validate(); err != nil {
		return nil, err
	}
	return &a, nil
}

func (a *Asset) validate() error {
	if a.ViewModel == "" {
		return errors.New("asset has no view_model")
	}
	if a.Width <= 0 || a.Height <= 0 {
		a.Width, a.Height = 600, 600
	}
	seen := make(map[string]bool, len(a.Properties))
	for _, p := range a.Properties {
		if p.Name == "" {
			return errors.New("property without a name")
		}
		if seen[p.Name] {
			return fmt.Errorf("duplicate property %q", p.Name)
		}
		seen[p.Name] = true
		switch p.Kind {
		case KindNumber, KindColor:
		case KindEnum:
			if len(p.Values) == 0 {
				return fmt.Errorf("enum property %q declares no values", p.Name)
			}
			if d, ok := p.Default.(string); ok && !slices.Contains(p.Values, d) {
				return fmt.Errorf("enum property %q default %q not in values", p.Name, d)
			}
		default:
			return fmt.Errorf("property %q has unknown kind %q", p.Name, p.Kind)
		}
	}
	return nil
}
