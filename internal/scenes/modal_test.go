// ABOUTME: Tests for the scene modal: loading, preselection, confirm and failure handling
// ABOUTME: The bridge is a scripted fake so failures can be injected per call

package scenes

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"

	"github.com/mauromedda/overlay-wizard/internal/host"
	"github.com/mauromedda/overlay-wizard/internal/settings"
)

type fakeBridge struct {
	mu        sync.Mutex
	scenes    []host.Scene
	active    host.Scene
	failOn    string
	calls     []string
	settings  map[string]string
	items     []string
	navigated string
}

var _ host.Bridge = (*fakeBridge)(nil)

func newFakeBridge() *fakeBridge {
	return &fakeBridge{
		scenes:   []host.Scene{{ID: "s1", Name: "Gameplay"}, {ID: "s2", Name: "Just Chatting"}, {ID: "s3", Name: "BRB"}},
		active:   host.Scene{ID: "s2", Name: "Just Chatting"},
		settings: map[string]string{},
	}
}

func (f *fakeBridge) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	if f.failOn == call {
		return errors.New(call + " failed")
	}
	return nil
}

func (f *fakeBridge) Init(context.Context) error                { return f.record("init") }
func (f *fakeBridge) OnNavigation(func(host.Navigation)) func() { return func() {} }
func (f *fakeBridge) GetSourceSettings(_ context.Context, id string) (string, bool, error) {
	s, ok := f.settings[id]
	return s, ok, f.record("getSourceSettings")
}
func (f *fakeBridge) SetSourceSettings(_ context.Context, id, s string) error {
	if err := f.record("setSourceSettings"); err != nil {
		return err
	}
	f.settings[id] = s
	return nil
}
func (f *fakeBridge) CreateSource(_ context.Context, name, template string) (host.Source, error) {
	if err := f.record("createSource"); err != nil {
		return host.Source{}, err
	}
	return host.Source{ID: "src-" + name, Name: name}, nil
}
func (f *fakeBridge) GetScenes(context.Context) ([]host.Scene, error) {
	return slices.Clone(f.scenes), f.record("getScenes")
}
func (f *fakeBridge) GetActiveScene(context.Context) (host.Scene, error) {
	return f.active, f.record("getActiveScene")
}
func (f *fakeBridge) CreateSceneItem(_ context.Context, sceneID, sourceID string) error {
	if err := f.record("createSceneItem"); err != nil {
		return err
	}
	f.items = append(f.items, sceneID+"/"+sourceID)
	return nil
}
func (f *fakeBridge) Navigate(_ context.Context, target string) error {
	if err := f.record("navigate"); err != nil {
		return err
	}
	f.navigated = target
	return nil
}
func (f *fakeBridge) UploadAsset(context.Context, host.FileDescriptor) (map[string]string, error) {
	return nil, f.record("uploadAsset")
}

func openLoaded(t *testing.T, b host.Bridge, typ settings.Type) *Modal {
	t.Helper()
	m := NewModal()
	m.Open(typ)
	l, err := Load(context.Background(), b)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	m.Populate(l)
	return m
}

func TestLoad_Parallel(t *testing.T) {
	t.Parallel()
	b := newFakeBridge()

	l, err := Load(context.Background(), b)
	if err != nil {
		t.Fatal(err)
	}
	if len(l.Scenes) != 3 || l.ActiveID != "s2" {
		t.Errorf("Listing = %+v", l)
	}

	b.failOn = "getActiveScene"
	if _, err := Load(context.Background(), b); err == nil {
		t.Error("Load should fail when the active scene fetch fails")
	}
}

func TestModal_PreselectsActive(t *testing.T) {
	t.Parallel()
	m := openLoaded(t, newFakeBridge(), settings.Webcam)

	if m.Selected() != "s2" || !m.CanConfirm() {
		t.Errorf("Selected = %q, CanConfirm = %v", m.Selected(), m.CanConfirm())
	}
	entries := m.Entries()
	if len(entries) != 3 {
		t.Fatalf("entries = %+v", entries)
	}
	if !entries[1].Active || !entries[1].Selected || entries[0].Selected {
		t.Errorf("entries = %+v", entries)
	}
}

func TestModal_NoActiveScene(t *testing.T) {
	t.Parallel()
	b := newFakeBridge()
	b.active = host.Scene{ID: "gone"}
	m := openLoaded(t, b, settings.Webcam)

	if m.CanConfirm() {
		t.Error("confirm should be disabled without a selection")
	}
	if _, ok := m.Confirmation("{}"); ok {
		t.Error("Confirmation without selection should not be actionable")
	}
	if err := m.Select("s3"); err != nil {
		t.Fatal(err)
	}
	if !m.CanConfirm() {
		t.Error("selecting a scene should enable confirm")
	}
}

func TestModal_SelectExactlyOne(t *testing.T) {
	t.Parallel()
	m := openLoaded(t, newFakeBridge(), settings.Keyboard)

	if err := m.Select("s1"); err != nil {
		t.Fatal(err)
	}
	n := 0
	for _, e := range m.Entries() {
		if e.Selected {
			n++
		}
	}
	if n != 1 {
		t.Errorf("%d entries selected; want 1", n)
	}
	if err := m.Select("nope"); !errors.Is(err, host.ErrNotFound) {
		t.Errorf("Select unknown = %v", err)
	}
	if m.Selected() != "s1" {
		t.Errorf("failed Select changed selection to %q", m.Selected())
	}
}

func TestModal_ConfirmSuccess(t *testing.T) {
	t.Parallel()
	b := newFakeBridge()
	m := openLoaded(t, b, settings.Keyboard)

	req, ok := m.Confirmation(`{"overlayType":"keyboard"}`)
	if !ok {
		t.Fatal("Confirmation not actionable")
	}
	src, err := Publish(context.Background(), b, req)
	if err != nil {
		t.Fatal(err)
	}
	if alert := m.ConfirmDone(err); alert != nil {
		t.Errorf("alert = %v", alert)
	}

	if src.Name != "Keyboard Overlay" {
		t.Errorf("source name = %q", src.Name)
	}
	want := []string{"getScenes", "getActiveScene", "createSource", "setSourceSettings", "createSceneItem", "navigate"}
	got := slices.Clone(b.calls)
	// The two listing calls race; compare them as a set.
	slices.Sort(got[:2])
	slices.Sort(want[:2])
	if !slices.Equal(got, want) {
		t.Errorf("calls = %v; want %v", got, want)
	}
	if b.settings[src.ID] != `{"overlayType":"keyboard"}` {
		t.Errorf("stored settings = %q", b.settings[src.ID])
	}
	if !slices.Equal(b.items, []string{"s2/" + src.ID}) || b.navigated != host.TargetEditor {
		t.Errorf("items = %v navigated = %q", b.items, b.navigated)
	}
	if m.IsOpen() || m.Selected() != "" {
		t.Error("modal should close and clear selection on success")
	}
}

func TestModal_ConfirmFailureKeepsOpen(t *testing.T) {
	t.Parallel()

	for _, step := range []string{"createSource", "setSourceSettings", "createSceneItem"} {
		b := newFakeBridge()
		m := openLoaded(t, b, settings.Webcam)
		b.failOn = step

		req, _ := m.Confirmation("{}")
		_, err := Publish(context.Background(), b, req)
		if err == nil {
			t.Fatalf("%s: Publish should fail", step)
		}
		alert := m.ConfirmDone(err)
		if alert == nil || alert.Title != "Error" || alert.Message != "Failed to add source to scene." {
			t.Errorf("%s: alert = %+v", step, alert)
		}
		if !m.IsOpen() || !m.CanConfirm() {
			t.Errorf("%s: modal should stay open for retry", step)
		}
		if b.navigated != "" {
			t.Errorf("%s: navigated after failure", step)
		}
	}
}

func TestModal_LoadFailedAlertsOnlyWhenOpen(t *testing.T) {
	t.Parallel()
	m := NewModal()

	if a := m.LoadFailed(errors.New("offline")); a != nil {
		t.Errorf("closed modal alert = %v", a)
	}
	m.Open(settings.Webcam)
	a := m.LoadFailed(errors.New("offline"))
	if a == nil || a.Message != "Failed to load scenes data." {
		t.Errorf("alert = %+v", a)
	}
	if m.Loading() {
		t.Error("still loading after failure")
	}
}

func TestModal_CloseClears(t *testing.T) {
	t.Parallel()
	m := openLoaded(t, newFakeBridge(), settings.Webcam)
	m.Close()

	if m.IsOpen() || m.Selected() != "" || m.CanConfirm() {
		t.Error("Close should clear state")
	}
	if err := m.Select("s1"); err == nil {
		t.Error("Select on a closed modal should fail")
	}
}

func TestModal_Filter(t *testing.T) {
	t.Parallel()
	m := openLoaded(t, newFakeBridge(), settings.Webcam)

	got := m.Filter("chat")
	if len(got) != 1 || got[0].Scene.ID != "s2" {
		t.Fatalf("Filter(chat) = %+v", got)
	}
	if len(got[0].Matched) != 4 {
		t.Errorf("Matched = %v", got[0].Matched)
	}
	if len(m.Filter("zzz")) != 0 {
		t.Error("Filter(zzz) should match nothing")
	}
	if len(m.Filter("")) != 3 {
		t.Error("empty filter should list every scene")
	}
}
