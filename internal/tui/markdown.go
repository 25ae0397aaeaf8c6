// ABOUTME: Help screen rendered from markdown with glamour
// ABOUTME: Caches the rendering per width; falls back to raw text on renderer errors

package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/mauromedda/overlay-wizard/internal/keybindings"
)

const helpIntro = `# Overlay wizard

Configure a **webcam frame** or **keyboard overlay** source in three steps.

`

const helpFooter = `
Colors are entered as ` + "`#RRGGBB`" + `. Custom images must be JPG or PNG
files under 10 MB.
`

// helpMarkdown builds the help page from the active key bindings.
func helpMarkdown(keys *keybindings.Manager) string {
	return helpIntro + keys.FormatAll() + helpFooter
}

// markdownRenderer renders markdown for a terminal width with caching.
type markdownRenderer struct {
	source string
	cache  map[int]string
}

func newMarkdownRenderer(source string) *markdownRenderer {
	return &markdownRenderer{source: source, cache: make(map[int]string)}
}

// Render returns the source styled for width columns.
func (r *markdownRenderer) Render(width int) string {
	if cached, ok := r.cache[width]; ok {
		return cached
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return r.source
	}
	rendered, err := renderer.Render(r.source)
	if err != nil {
		return r.source
	}
	rendered = strings.TrimRight(rendered, "\n ")
	r.cache[width] = rendered
	return rendered
}
