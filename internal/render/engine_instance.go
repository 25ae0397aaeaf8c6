// ABOUTME: Engine-bound render instance: asset loaded on a surface plus its schema binding
// ABOUTME: Satisfies the lifecycle capability interface with a shape check before pushes

package render

import (
	"errors"
	"fmt"

	"github.com/mauromedda/overlay-wizard/internal/engine"
	"github.com/mauromedda/overlay-wizard/internal/log"
	"github.com/mauromedda/overlay-wizard/internal/settings"
)

var (
	errDisposed = errors.New("render instance disposed")

	// ErrNoViewModel means the engine instance lost its view model.
	ErrNoViewModel = errors.New("render instance has no view model")
	// ErrNoProperties means the view model declares nothing to bind.
	ErrNoProperties = errors.New("view model has no properties")
)

// EngineInstance renders a surface through the animation engine.
type EngineInstance struct {
	surface     *Surface
	inst        *engine.Instance
	binding     *Binding
	diagnostics []Diagnostic
}

// LoadEngine loads asset on s and binds the settings schema.
// Schema diagnostics are logged and kept on the instance.
func LoadEngine(asset *engine.Asset, s *Surface) (*EngineInstance, error) {
	if s == nil {
		return nil, errors.New("load engine: nil surface")
	}
	s.FitContainer()

	inst, err := engine.Load(asset, s.Image())
	if err != nil {
		return nil, fmt.Errorf("load engine on %s: %w", s.ID(), err)
	}

	binding, diags := Bind(inst.ViewModel())
	for _, d := range diags {
		log.Warn("%s (%s): %s", asset.Artboard, s.ID(), d)
	}
	return &EngineInstance{
		surface:     s,
		inst:        inst,
		binding:     binding,
		diagnostics: diags,
	}, nil
}

// Diagnostics returns the schema problems found at load time.
func (e *EngineInstance) Diagnostics() []Diagnostic { return e.diagnostics }

// Engine exposes the underlying engine instance.
func (e *EngineInstance) Engine() *engine.Instance { return e.inst }

// Validate checks the instance shape: a live view model with properties.
func (e *EngineInstance) Validate() error {
	vm := e.inst.ViewModel()
	if vm == nil {
		return ErrNoViewModel
	}
	if len(vm.Properties()) == 0 {
		return ErrNoProperties
	}
	return nil
}

// ApplyProperties pushes rec into the view model and redraws.
func (e *EngineInstance) ApplyProperties(rec settings.Record) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if err := e.binding.Apply(rec); err != nil {
		return fmt.Errorf("apply properties: %w", err)
	}
	return e.inst.Render()
}

// Dispose releases the engine instance.
func (e *EngineInstance) Dispose() error {
	return e.inst.Dispose()
}
