// ABOUTME: Scene-selection modal state: open, populate, select, confirm, close
// ABOUTME: Publishing creates the source, stores settings, attaches it and returns to the editor

package scenes

import (
	"context"
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/mauromedda/overlay-wizard/internal/host"
	"github.com/mauromedda/overlay-wizard/internal/log"
	"github.com/mauromedda/overlay-wizard/internal/settings"
	"github.com/mauromedda/overlay-wizard/internal/types"
)

// Alert texts.
const (
	alertTitle       = "Error"
	msgLoadFailed    = "Failed to load scenes data."
	msgPublishFailed = "Failed to add source to scene."
)

// Entry is one row of the scene list.
type Entry struct {
	Scene    host.Scene
	Active   bool
	Selected bool
	// Matched holds the byte offsets matched by the current filter.
	Matched []int
}

// Request is everything Publish needs; it is built on the event loop so
// the publish job never reads live state.
type Request struct {
	Type     settings.Type
	SceneID  string
	Settings string
}

// Modal holds scene-selection state. Not safe for concurrent use.
type Modal struct {
	open     bool
	loading  bool
	typ      settings.Type
	listing  Listing
	selected string
	query    string
}

// NewModal returns a closed modal.
func NewModal() *Modal { return &Modal{} }

// Open shows the modal for an overlay type and clears any selection.
// The caller loads the listing and hands it to Populate.
func (m *Modal) Open(t settings.Type) {
	m.open = true
	m.loading = true
	m.typ = t
	m.selected = ""
	m.query = ""
}

// IsOpen reports whether the modal is shown.
func (m *Modal) IsOpen() bool { return m.open }

// Loading reports whether the listing is still being fetched.
func (m *Modal) Loading() bool { return m.loading }

// Type returns the overlay type being published.
func (m *Modal) Type() settings.Type { return m.typ }

// Title is the confirm button text.
func (m *Modal) Title() string {
	return "Add " + m.typ.DisplayName()
}

// Subtitle names the source type in lower case.
func (m *Modal) Subtitle() string {
	return fmt.Sprintf("Choose the scene for your new %s.", strings.ToLower(m.typ.DisplayName()))
}

// Populate installs a fresh listing. When the modal is open and the active
// scene is listed, it becomes the selection.
func (m *Modal) Populate(l Listing) {
	m.listing = l
	m.loading = false
	if m.selected != "" && !l.Has(m.selected) {
		m.selected = ""
	}
	if m.open && m.selected == "" && l.ActiveID != "" && l.Has(l.ActiveID) {
		m.selected = l.ActiveID
	}
}

// LoadFailed records a failed listing fetch. It returns an alert only while
// the modal is open.
func (m *Modal) LoadFailed(err error) *types.Alert {
	m.loading = false
	log.Error("loading scenes: %v", err)
	if !m.open {
		return nil
	}
	return types.NewAlert(alertTitle, msgLoadFailed)
}

// Listing returns the current listing.
func (m *Modal) Listing() Listing { return m.listing }

// Select marks exactly one scene selected.
func (m *Modal) Select(id string) error {
	if !m.open {
		return fmt.Errorf("select %q: modal closed", id)
	}
	if !m.listing.Has(id) {
		return fmt.Errorf("select %q: %w", id, host.ErrNotFound)
	}
	m.selected = id
	return nil
}

// Selected returns the selected scene id.
func (m *Modal) Selected() string { return m.selected }

// CanConfirm reports whether confirm is actionable.
func (m *Modal) CanConfirm() bool {
	return m.open && m.selected != ""
}

// Confirmation builds the publish request for the current selection and the
// encoded settings. ok is false when confirm is not actionable.
func (m *Modal) Confirmation(encoded string) (Request, bool) {
	if !m.CanConfirm() {
		return Request{}, false
	}
	return Request{Type: m.typ, SceneID: m.selected, Settings: encoded}, true
}

// ConfirmDone applies a publish result: success closes the modal, failure
// keeps it open and returns an alert.
func (m *Modal) ConfirmDone(err error) *types.Alert {
	if err != nil {
		log.Error("adding source to scene: %v", err)
		return types.NewAlert(alertTitle, msgPublishFailed)
	}
	m.Close()
	return nil
}

// Close hides the modal and clears selection.
func (m *Modal) Close() {
	m.open = false
	m.loading = false
	m.selected = ""
	m.query = ""
}

// SetFilter sets the list filter query.
func (m *Modal) SetFilter(q string) { m.query = q }

// Filter returns the entries whose names fuzzy-match query, best first.
// An empty query returns every entry in host order.
func (m *Modal) Filter(query string) []Entry {
	if query == "" {
		entries := make([]Entry, len(m.listing.Scenes))
		for i, s := range m.listing.Scenes {
			entries[i] = m.entry(s, nil)
		}
		return entries
	}
	matches := fuzzy.FindFrom(query, sceneNames(m.listing.Scenes))
	entries := make([]Entry, len(matches))
	for i, match := range matches {
		entries[i] = m.entry(m.listing.Scenes[match.Index], match.MatchedIndexes)
	}
	return entries
}

// Entries returns the list filtered by the current query.
func (m *Modal) Entries() []Entry { return m.Filter(m.query) }

func (m *Modal) entry(s host.Scene, matched []int) Entry {
	return Entry{
		Scene:    s,
		Active:   s.ID == m.listing.ActiveID,
		Selected: s.ID == m.selected,
		Matched:  matched,
	}
}

type sceneNames []host.Scene

func (s sceneNames) String(i int) string { return s[i].Name }
func (s sceneNames) Len() int            { return len(s) }

// Publish creates the source, writes its settings, attaches it to the scene
// and navigates the host to the editor. It runs off the event loop.
func Publish(ctx context.Context, b host.Bridge, req Request) (host.Source, error) {
	src, err := b.CreateSource(ctx, req.Type.DisplayName(), host.TemplateSourceBuilder)
	if err != nil {
		return host.Source{}, fmt.Errorf("create source: %w", err)
	}
	if err := b.SetSourceSettings(ctx, src.ID, req.Settings); err != nil {
		return src, fmt.Errorf("store settings on %s: %w", src.ID, err)
	}
	if err := b.CreateSceneItem(ctx, req.SceneID, src.ID); err != nil {
		return src, fmt.Errorf("attach %s to %s: %w", src.ID, req.SceneID, err)
	}
	if err := b.Navigate(ctx, host.TargetEditor); err != nil {
		return src, fmt.Errorf("navigate: %w", err)
	}
	return src, nil
}
