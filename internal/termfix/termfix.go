// ABOUTME: Fixes the lipgloss background to dark before bubbletea initializes
// ABOUTME: Imported blank from main so the wizard never emits OSC 10/11 color queries

package termfix

import "github.com/charmbracelet/lipgloss"

// With an explicit background, bubbletea's init skips the terminal query
// whose late reply would otherwise arrive as stray key input. This package
// must not import bubbletea.
func init() {
	lipgloss.SetHasDarkBackground(true)
}
