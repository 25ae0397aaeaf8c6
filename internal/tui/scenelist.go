// ABOUTME: SceneListModel is a Bubble Tea leaf for the filterable scene picker
// ABOUTME: Selection and filter live in scenes.Modal; the model keeps only the viewport

package tui

import (
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mauromedda/overlay-wizard/internal/log"
	"github.com/mauromedda/overlay-wizard/internal/scenes"
	"github.com/rivo/uniseg"
)

const defaultListHeight = 8

// SceneListModel renders and drives a scenes.Modal.
type SceneListModel struct {
	modal     *scenes.Modal
	filter    string
	scrollOff int
	maxHeight int
}

// NewSceneListModel returns a list bound to modal.
func NewSceneListModel(modal *scenes.Modal) SceneListModel {
	return SceneListModel{modal: modal, maxHeight: defaultListHeight}
}

// Init returns nil; no commands needed at startup.
func (m SceneListModel) Init() tea.Cmd { return nil }

// Update handles navigation and filter keys.
func (m SceneListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok || !m.modal.IsOpen() {
		return m, nil
	}
	switch key.Type {
	case tea.KeyUp:
		m.move(-1)
	case tea.KeyDown:
		m.move(1)
	case tea.KeyBackspace:
		if r := []rune(m.filter); len(r) > 0 {
			m.setFilter(string(r[:len(r)-1]))
		}
	case tea.KeyRunes, tea.KeySpace:
		m.setFilter(m.filter + string(key.Runes))
	}
	return m, nil
}

// Filter returns the current filter text.
func (m SceneListModel) Filter() string { return m.filter }

// Reset clears filter and scroll, e.g. when the modal reopens.
func (m SceneListModel) Reset() SceneListModel {
	m.filter = ""
	m.scrollOff = 0
	m.modal.SetFilter("")
	return m
}

func (m *SceneListModel) setFilter(q string) {
	m.filter = q
	m.scrollOff = 0
	m.modal.SetFilter(q)

	entries := m.modal.Entries()
	if len(entries) == 0 {
		return
	}
	if !slices.ContainsFunc(entries, func(e scenes.Entry) bool { return e.Selected }) {
		m.selectEntry(entries[0])
	}
}

func (m *SceneListModel) move(delta int) {
	entries := m.modal.Entries()
	if len(entries) == 0 {
		return
	}
	cur := slices.IndexFunc(entries, func(e scenes.Entry) bool { return e.Selected })
	next := cur + delta
	if cur < 0 {
		next = 0
	}
	next = max(0, min(next, len(entries)-1))
	m.selectEntry(entries[next])

	if next < m.scrollOff {
		m.scrollOff = next
	}
	if next >= m.scrollOff+m.maxHeight {
		m.scrollOff = next - m.maxHeight + 1
	}
}

func (m *SceneListModel) selectEntry(e scenes.Entry) {
	if err := m.modal.Select(e.Scene.ID); err != nil {
		log.Warn("scene list: %v", err)
	}
}

// View renders the visible rows of the list.
func (m SceneListModel) View() string {
	s := Styles()
	if m.modal.Loading() {
		return s.Muted.Render("Loading scenes...")
	}

	entries := m.modal.Entries()
	var b strings.Builder
	b.WriteString(s.Muted.Render("filter: "))
	b.WriteString(m.filter)
	b.WriteByte('\n')
	if len(entries) == 0 {
		b.WriteString(s.Muted.Render("No scenes."))
		return b.String()
	}

	end := min(m.scrollOff+m.maxHeight, len(entries))
	for i := m.scrollOff; i < end; i++ {
		if i > m.scrollOff {
			b.WriteByte('\n')
		}
		b.WriteString(formatSceneEntry(s, entries[i]))
	}
	if end < len(entries) {
		b.WriteString("\n" + s.Muted.Render("…"))
	}
	return b.String()
}

// maxSceneNameWidth caps a scene name in cells, ellipsis included.
const maxSceneNameWidth = 40

func formatSceneEntry(s ThemeStyles, e scenes.Entry) string {
	marker := "  "
	if e.Selected {
		marker = "❯ "
	}

	line := marker + formatSceneName(s, e.Scene.Name, e.Matched)
	if e.Active {
		line += " " + s.Muted.Render("(active)")
	}
	if e.Selected {
		return s.Value.Render(line)
	}
	return line
}

// formatSceneName highlights matched clusters and cuts the name on a
// grapheme boundary so emoji and combining marks are never split.
func formatSceneName(s ThemeStyles, name string, matched []int) string {
	limit := maxSceneNameWidth
	truncated := uniseg.StringWidth(name) > limit
	if truncated {
		limit--
	}

	var b strings.Builder
	rest, state, offset, w := name, -1, 0, 0
	for len(rest) > 0 {
		var cluster string
		var cw int
		cluster, rest, cw, state = uniseg.FirstGraphemeClusterInString(rest, state)
		if w+cw > limit {
			break
		}
		w += cw
		if slices.Contains(matched, offset) {
			b.WriteString(s.Match.Render(cluster))
		} else {
			b.WriteString(cluster)
		}
		offset += len(cluster)
	}
	if truncated {
		b.WriteString("…")
	}
	return b.String()
}
