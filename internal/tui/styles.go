// ABOUTME: Lipgloss palette for the wizard views
// ABOUTME: Built once; Styles() returns the shared immutable set

package tui

import (
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// ThemeStyles holds the styles used across views.
type ThemeStyles struct {
	Title    lipgloss.Style
	Step     lipgloss.Style
	StepDone lipgloss.Style
	Label    lipgloss.Style
	Value    lipgloss.Style
	Selected lipgloss.Style
	Muted    lipgloss.Style
	Match    lipgloss.Style
	Button   lipgloss.Style
	Disabled lipgloss.Style
	Error    lipgloss.Style
	Status   lipgloss.Style
	Box      lipgloss.Style
	AlertBox lipgloss.Style
}

var styles = sync.OnceValue(func() ThemeStyles {
	accent := lipgloss.Color("#77b0f2")
	muted := lipgloss.Color("244")
	red := lipgloss.Color("203")
	return ThemeStyles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(accent),
		Step:     lipgloss.NewStyle().Foreground(muted),
		StepDone: lipgloss.NewStyle().Bold(true).Foreground(accent),
		Label:    lipgloss.NewStyle().Width(16),
		Value:    lipgloss.NewStyle().Bold(true),
		Selected: lipgloss.NewStyle().Reverse(true),
		Muted:    lipgloss.NewStyle().Foreground(muted),
		Match:    lipgloss.NewStyle().Underline(true).Foreground(accent),
		Button:   lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.RoundedBorder()).BorderForeground(accent),
		Disabled: lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.RoundedBorder()).Foreground(muted).BorderForeground(muted),
		Error:    lipgloss.NewStyle().Foreground(red),
		Status:   lipgloss.NewStyle().Foreground(muted).Italic(true),
		Box:      lipgloss.NewStyle().Padding(1, 2).Border(lipgloss.RoundedBorder()).BorderForeground(accent),
		AlertBox: lipgloss.NewStyle().Padding(1, 2).Border(lipgloss.DoubleBorder()).BorderForeground(red),
	}
})

// Styles returns the shared palette.
func Styles() ThemeStyles { return styles() }
