// ABOUTME: Keybindings format and loader for the wizard's key actions
// ABOUTME: YAML files map action names to key lists; unknown actions are ignored

package config

import (
	"maps"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"
)

// KeyAction represents an action that can be bound to keys.
type KeyAction string

const (
	ActionUp         KeyAction = "up"
	ActionDown       KeyAction = "down"
	ActionLeft       KeyAction = "left"
	ActionRight      KeyAction = "right"
	ActionAccept     KeyAction = "accept"
	ActionCancel     KeyAction = "cancel"
	ActionNext       KeyAction = "next"
	ActionBack       KeyAction = "back"
	ActionSave       KeyAction = "saveExisting"
	ActionAddNew     KeyAction = "addNew"
	ActionExportMask KeyAction = "exportMask"
	ActionHelp       KeyAction = "help"
	ActionQuit       KeyAction = "quit"
)

const keybindingsName = "keybindings.yaml"

// Keybindings maps each action to the keys that trigger it. Keys use
// Bubble Tea's key names ("ctrl+c", "shift+tab", "esc", "a").
type Keybindings struct {
	Bindings map[KeyAction][]string
}

// NewKeybindings returns the default bindings.
func NewKeybindings() *Keybindings {
	kb := &Keybindings{Bindings: make(map[KeyAction][]string)}
	kb.setDefaultBindings()
	return kb
}

func (kb *Keybindings) setDefaultBindings() {
	kb.Bindings[ActionUp] = []string{"up"}
	kb.Bindings[ActionDown] = []string{"down"}
	kb.Bindings[ActionLeft] = []string{"left"}
	kb.Bindings[ActionRight] = []string{"right"}
	kb.Bindings[ActionAccept] = []string{"enter"}
	kb.Bindings[ActionCancel] = []string{"esc"}
	kb.Bindings[ActionNext] = []string{"tab"}
	kb.Bindings[ActionBack] = []string{"shift+tab"}
	kb.Bindings[ActionSave] = []string{"s"}
	kb.Bindings[ActionAddNew] = []string{"a"}
	kb.Bindings[ActionExportMask] = []string{"m"}
	kb.Bindings[ActionHelp] = []string{"?"}
	kb.Bindings[ActionQuit] = []string{"ctrl+c"}
}

// Actions lists every known action in display order.
func Actions() []KeyAction {
	return []KeyAction{
		ActionUp, ActionDown, ActionLeft, ActionRight,
		ActionAccept, ActionCancel, ActionNext, ActionBack,
		ActionSave, ActionAddNew, ActionExportMask,
		ActionHelp, ActionQuit,
	}
}

// LoadKeybindings reads overrides from a YAML file on top of the defaults.
func LoadKeybindings(path string) (*Keybindings, error) {
	overrides, err := LoadKeybindingOverrides(path)
	if err != nil {
		return nil, err
	}
	kb := NewKeybindings()
	maps.Copy(kb.Bindings, overrides.Bindings)
	return kb, nil
}

// LoadKeybindingOverrides reads only the actions present in a YAML file.
// Unknown action names are ignored.
func LoadKeybindingOverrides(path string) (*Keybindings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw map[string][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	kb := &Keybindings{Bindings: make(map[KeyAction][]string, len(raw))}
	for name, keys := range raw {
		action := KeyAction(name)
		if slices.Contains(Actions(), action) {
			kb.Bindings[action] = keys
		}
	}
	return kb, nil
}

// SaveKeybindings writes every binding to path as YAML.
func (kb *Keybindings) SaveKeybindings(path string) error {
	raw := make(map[string][]string, len(kb.Bindings))
	for action, keys := range kb.Bindings {
		raw[string(action)] = keys
	}
	data, err := yaml.Marshal(raw)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// GetBindings returns the keys bound to action.
func (kb *Keybindings) GetBindings(action KeyAction) []string {
	if kb == nil {
		return nil
	}
	return slices.Clone(kb.Bindings[action])
}

// GlobalKeybindingsFile returns the user-global keybindings path.
func GlobalKeybindingsFile() string {
	return filepath.Join(GlobalDir(), keybindingsName)
}

// LocalKeybindingsFile returns the project-local keybindings path.
func LocalKeybindingsFile(projectRoot string) string {
	return filepath.Join(projectRoot, ".overlay-wizard", keybindingsName)
}
