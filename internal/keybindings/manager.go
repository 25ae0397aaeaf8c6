// ABOUTME: Keybindings manager with O(1) key-to-action lookup for the wizard TUI
// ABOUTME: Merges global and local configs, detects conflicts, renders the help table

package keybindings

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mauromedda/overlay-wizard/internal/config"
	"github.com/mauromedda/overlay-wizard/internal/log"
)

// ConflictInfo describes a binding conflict where multiple actions share a key.
type ConflictInfo struct {
	Key     string
	Actions []config.KeyAction
}

// Manager provides O(1) key-to-action lookup from merged keybindings.
type Manager struct {
	bindings *config.Keybindings
	lookup   map[string]config.KeyAction // "ctrl+c" → ActionQuit
}

// New creates a Manager from global and local keybinding files.
// Local bindings override global ones. Missing files are ignored.
func New(globalPath, localPath string) *Manager {
	m := &Manager{}
	m.Reload(globalPath, localPath)
	return m
}

// NewFromBindings creates a Manager from an existing Keybindings instance.
func NewFromBindings(kb *config.Keybindings) *Manager {
	m := &Manager{bindings: kb}
	m.buildLookup()
	return m
}

// Default returns a Manager with the built-in bindings.
func Default() *Manager {
	return NewFromBindings(config.NewKeybindings())
}

// ActionForKey returns the action bound to msg, or "" if unbound.
func (m *Manager) ActionForKey(msg tea.KeyMsg) config.KeyAction {
	return m.lookup[msg.String()]
}

// Keys returns the keys bound to action.
func (m *Manager) Keys(action config.KeyAction) []string {
	return m.bindings.GetBindings(action)
}

// Conflicts detects keys bound to multiple actions, sorted by key.
func (m *Manager) Conflicts() []ConflictInfo {
	keyActions := make(map[string][]config.KeyAction)
	for action, keys := range m.bindings.Bindings {
		for _, k := range keys {
			keyActions[k] = append(keyActions[k], action)
		}
	}

	var conflicts []ConflictInfo
	for _, k := range slices.Sorted(maps.Keys(keyActions)) {
		if actions := keyActions[k]; len(actions) > 1 {
			slices.Sort(actions)
			conflicts = append(conflicts, ConflictInfo{Key: k, Actions: actions})
		}
	}
	return conflicts
}

// Reload re-reads keybinding files and rebuilds the lookup table.
func (m *Manager) Reload(globalPath, localPath string) {
	kb := config.NewKeybindings()
	for _, path := range []string{globalPath, localPath} {
		if path == "" {
			continue
		}
		loaded, err := config.LoadKeybindingOverrides(path)
		if err != nil {
			log.Debug("keybindings %s: %v", path, err)
			continue
		}
		mergeBindings(kb, loaded)
	}

	m.bindings = kb
	m.buildLookup()
	for _, c := range m.Conflicts() {
		log.Warn("key %q is bound to %v; the last one wins", c.Key, c.Actions)
	}
}

// FormatAll returns a markdown table of all keybindings for the help screen.
func (m *Manager) FormatAll() string {
	categories := []struct {
		name    string
		actions []config.KeyAction
	}{
		{"Navigation", []config.KeyAction{
			config.ActionUp, config.ActionDown,
			config.ActionLeft, config.ActionRight,
			config.ActionAccept, config.ActionCancel,
		}},
		{"Steps", []config.KeyAction{config.ActionNext, config.ActionBack}},
		{"Review", []config.KeyAction{
			config.ActionSave, config.ActionAddNew, config.ActionExportMask,
		}},
		{"General", []config.KeyAction{config.ActionHelp, config.ActionQuit}},
	}

	var b strings.Builder
	b.WriteString("| Keys | Action |\n|---|---|\n")
	for _, cat := range categories {
		fmt.Fprintf(&b, "| **%s** | |\n", cat.name)
		for _, action := range cat.actions {
			keys := m.bindings.GetBindings(action)
			if len(keys) == 0 {
				continue
			}
			fmt.Fprintf(&b, "| %s | %s |\n", strings.Join(keys, ", "), action)
		}
	}
	return b.String()
}

func (m *Manager) buildLookup() {
	m.lookup = make(map[string]config.KeyAction, len(m.bindings.Bindings)*2)
	// Sorted so that a conflicting key resolves the same way every run.
	for _, action := range slices.Sorted(maps.Keys(m.bindings.Bindings)) {
		for _, k := range m.bindings.Bindings[action] {
			m.lookup[k] = action
		}
	}
}

// mergeBindings overrides base bindings with overrides where present.
func mergeBindings(base, overrides *config.Keybindings) {
	maps.Copy(base.Bindings, overrides.Bindings)
}
