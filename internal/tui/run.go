// ABOUTME: Entry point for the wizard TUI
// ABOUTME: Creates the tea.Program, injects the program reference, and blocks until exit

package tui

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mauromedda/overlay-wizard/internal/log"
)

// Run starts the wizard TUI. Blocks until the user exits.
func Run(deps Deps) error {
	m := NewAppModel(deps)
	defer m.shutdown()

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithOutput(os.Stderr),
	)

	// NewProgram copies the model value but shares the sh pointer.
	m.sh.program = p

	if w := deps.Watcher; w != nil {
		go func() {
			for err := range w.Errors() {
				log.Warn("asset watcher: %v", err)
			}
		}()
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("bubble tea: %w", err)
	}
	return nil
}
