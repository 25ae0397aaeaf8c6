// ABOUTME: Tests for the file-backed host: init, sources, scenes, assets and navigation
// ABOUTME: Each test uses its own temp state file

package host

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newFileHost(t *testing.T) *FileHost {
	t.Helper()
	h := NewFileHost(filepath.Join(t.TempDir(), "host.json"))
	if err := h.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return h
}

func TestFileHost_NotReady(t *testing.T) {
	t.Parallel()

	h := NewFileHost(filepath.Join(t.TempDir(), "host.json"))
	if _, err := h.GetScenes(context.Background()); !errors.Is(err, ErrNotReady) {
		t.Errorf("GetScenes before Init = %v; want ErrNotReady", err)
	}
}

func TestFileHost_InitCreatesDefaultState(t *testing.T) {
	t.Parallel()
	h := newFileHost(t)
	ctx := context.Background()

	if _, err := os.Stat(h.Path()); err != nil {
		t.Fatalf("state file missing: %v", err)
	}
	scenes, err := h.GetScenes(ctx)
	if err != nil || len(scenes) != 1 {
		t.Fatalf("GetScenes = %v, %v", scenes, err)
	}
	active, err := h.GetActiveScene(ctx)
	if err != nil || active.ID != scenes[0].ID {
		t.Errorf("GetActiveScene = %v, %v", active, err)
	}
}

func TestFileHost_SourceFlow(t *testing.T) {
	t.Parallel()
	h := newFileHost(t)
	ctx := context.Background()

	src, err := h.CreateSource(ctx, "Webcam Frame", TemplateSourceBuilder)
	if err != nil {
		t.Fatal(err)
	}
	if src.ID == "" || src.Name != "Webcam Frame" {
		t.Errorf("CreateSource = %+v", src)
	}

	if _, ok, err := h.GetSourceSettings(ctx, src.ID); err != nil || ok {
		t.Errorf("fresh source settings ok=%v err=%v; want none", ok, err)
	}
	if err := h.SetSourceSettings(ctx, src.ID, `{"rotation":5}`); err != nil {
		t.Fatal(err)
	}
	got, ok, err := h.GetSourceSettings(ctx, src.ID)
	if err != nil || !ok || got != `{"rotation":5}` {
		t.Errorf("GetSourceSettings = %q, %v, %v", got, ok, err)
	}

	if err := h.CreateSceneItem(ctx, "scene_1", src.ID); err != nil {
		t.Fatal(err)
	}
	if err := h.Navigate(ctx, TargetEditor); err != nil {
		t.Fatal(err)
	}

	st, err := h.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	if len(st.SceneItems) != 1 || st.SceneItems[0].SourceID != src.ID {
		t.Errorf("SceneItems = %+v", st.SceneItems)
	}
	if st.LastNavigate != TargetEditor {
		t.Errorf("LastNavigate = %q", st.LastNavigate)
	}
}

func TestFileHost_NotFound(t *testing.T) {
	t.Parallel()
	h := newFileHost(t)
	ctx := context.Background()

	if _, _, err := h.GetSourceSettings(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetSourceSettings = %v", err)
	}
	if err := h.SetSourceSettings(ctx, "nope", "{}"); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetSourceSettings = %v", err)
	}
	src, _ := h.CreateSource(ctx, "x", "t")
	if err := h.CreateSceneItem(ctx, "missing-scene", src.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("CreateSceneItem = %v", err)
	}
}

func TestFileHost_UploadAsset(t *testing.T) {
	t.Parallel()
	h := newFileHost(t)

	f := FileDescriptor{
		Name:    "logo.png",
		MIME:    "image/png",
		Size:    3,
		ModTime: time.UnixMilli(1700000000123),
		Data:    []byte{1, 2, 3},
	}
	urls, err := h.UploadAsset(context.Background(), f)
	if err != nil {
		t.Fatal(err)
	}
	key := "logo.png_1700000000123"
	if f.AssetKey() != key {
		t.Fatalf("AssetKey = %q", f.AssetKey())
	}
	url, ok := urls[key]
	if !ok || !strings.HasPrefix(url, "file://") {
		t.Fatalf("urls = %v", urls)
	}
	data, err := os.ReadFile(strings.TrimPrefix(url, "file://"))
	if err != nil || len(data) != 3 {
		t.Errorf("asset on disk = %v, %v", data, err)
	}
}

func TestFileHost_Launch(t *testing.T) {
	t.Parallel()
	h := newFileHost(t)

	var got []Navigation
	unsub := h.OnNavigation(func(n Navigation) { got = append(got, n) })
	h.Launch("source_7")
	h.Launch("")
	unsub()
	h.Launch("ignored")

	if len(got) != 2 || !got[0].Existing() || got[0].SourceID != "source_7" || got[1].Existing() {
		t.Errorf("navigations = %+v", got)
	}
}
