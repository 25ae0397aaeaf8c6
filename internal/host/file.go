// ABOUTME: File-backed host: sources, scenes and assets persisted in one JSON state file
// ABOUTME: Writes are atomic (temp file + rename); navigation events come from Launch

package host

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"sync"

	"github.com/mauromedda/overlay-wizard/internal/config"
	"github.com/mauromedda/overlay-wizard/internal/eventbus"
	"github.com/mauromedda/overlay-wizard/internal/log"
)

// SourceRecord is a persisted source.
type SourceRecord struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Template string  `json:"template"`
	Settings *string `json:"settings,omitempty"`
}

// SceneItem places a source in a scene.
type SceneItem struct {
	SceneID  string `json:"sceneId"`
	SourceID string `json:"sourceId"`
}

// State is the on-disk host state.
type State struct {
	Scenes       []Scene           `json:"scenes"`
	ActiveScene  string            `json:"activeScene"`
	Sources      []SourceRecord    `json:"sources"`
	SceneItems   []SceneItem       `json:"sceneItems"`
	Assets       map[string]string `json:"assets,omitempty"`
	LastNavigate string            `json:"lastNavigate,omitempty"`
	NextID       int               `json:"nextId"`
}

// DefaultState is written when no state file exists yet.
func DefaultState() *State {
	return &State{
		Scenes:      []Scene{{ID: "scene_1", Name: "Scene"}},
		ActiveScene: "scene_1",
		NextID:      1,
	}
}

func (s *State) source(id string) (*SourceRecord, bool) {
	i := slices.IndexFunc(s.Sources, func(r SourceRecord) bool { return r.ID == id })
	if i < 0 {
		return nil, false
	}
	return &s.Sources[i], true
}

func (s *State) hasScene(id string) bool {
	return slices.ContainsFunc(s.Scenes, func(sc Scene) bool { return sc.ID == id })
}

// FileHost implements Bridge on a local state file. Safe for concurrent use.
type FileHost struct {
	path      string
	assetsDir string

	mu    sync.Mutex
	ready bool
	nav   *eventbus.Bus[Navigation]
}

var _ Bridge = (*FileHost)(nil)

// NewFileHost returns a host persisting to path. Uploaded assets go to the
// assets directory next to it.
func NewFileHost(path string) *FileHost {
	return &FileHost{
		path:      path,
		assetsDir: config.AssetsDir(path),
		nav:       eventbus.New[Navigation](),
	}
}

// Path returns the state file path.
func (h *FileHost) Path() string { return h.path }

// Init creates the state file when missing.
func (h *FileHost) Init(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, err := os.Stat(h.path); os.IsNotExist(err) {
		if err := h.save(DefaultState()); err != nil {
			return err
		}
		log.Info("created host state %s", h.path)
	} else if err != nil {
		return fmt.Errorf("stat host state: %w", err)
	}
	if _, err := h.load(); err != nil {
		return err
	}
	h.ready = true
	return nil
}

// OnNavigation implements Bridge.
func (h *FileHost) OnNavigation(fn func(Navigation)) func() {
	return h.nav.Subscribe(fn)
}

// Launch opens the wizard as the host would: for sourceID, or fresh when
// sourceID is empty.
func (h *FileHost) Launch(sourceID string) {
	h.nav.Publish(Navigation{SourceID: sourceID})
}

// GetSourceSettings implements Bridge.
func (h *FileHost) GetSourceSettings(_ context.Context, sourceID string) (string, bool, error) {
	var out *string
	err := h.view(func(s *State) error {
		rec, ok := s.source(sourceID)
		if !ok {
			return fmt.Errorf("source %q: %w", sourceID, ErrNotFound)
		}
		out = rec.Settings
		return nil
	})
	if err != nil || out == nil {
		return "", false, err
	}
	return *out, true, nil
}

// SetSourceSettings implements Bridge.
func (h *FileHost) SetSourceSettings(_ context.Context, sourceID, settings string) error {
	return h.update(func(s *State) error {
		rec, ok := s.source(sourceID)
		if !ok {
			return fmt.Errorf("source %q: %w", sourceID, ErrNotFound)
		}
		rec.Settings = &settings
		return nil
	})
}

// CreateSource implements Bridge.
func (h *FileHost) CreateSource(_ context.Context, name, template string) (Source, error) {
	var src Source
	err := h.update(func(s *State) error {
		id := "source_" + strconv.Itoa(s.NextID)
		s.NextID++
		s.Sources = append(s.Sources, SourceRecord{ID: id, Name: name, Template: template})
		src = Source{ID: id, Name: name}
		return nil
	})
	return src, err
}

// GetScenes implements Bridge.
func (h *FileHost) GetScenes(_ context.Context) ([]Scene, error) {
	var scenes []Scene
	err := h.view(func(s *State) error {
		scenes = slices.Clone(s.Scenes)
		return nil
	})
	return scenes, err
}

// GetActiveScene implements Bridge.
func (h *FileHost) GetActiveScene(_ context.Context) (Scene, error) {
	var active Scene
	err := h.view(func(s *State) error {
		i := slices.IndexFunc(s.Scenes, func(sc Scene) bool { return sc.ID == s.ActiveScene })
		if i < 0 {
			return fmt.Errorf("active scene %q: %w", s.ActiveScene, ErrNotFound)
		}
		active = s.Scenes[i]
		return nil
	})
	return active, err
}

// CreateSceneItem implements Bridge.
func (h *FileHost) CreateSceneItem(_ context.Context, sceneID, sourceID string) error {
	return h.update(func(s *State) error {
		if !s.hasScene(sceneID) {
			return fmt.Errorf("scene %q: %w", sceneID, ErrNotFound)
		}
		if _, ok := s.source(sourceID); !ok {
			return fmt.Errorf("source %q: %w", sourceID, ErrNotFound)
		}
		s.SceneItems = append(s.SceneItems, SceneItem{SceneID: sceneID, SourceID: sourceID})
		return nil
	})
}

// Navigate implements Bridge.
func (h *FileHost) Navigate(_ context.Context, target string) error {
	return h.update(func(s *State) error {
		s.LastNavigate = target
		return nil
	})
}

// UploadAsset implements Bridge.
func (h *FileHost) UploadAsset(_ context.Context, f FileDescriptor) (map[string]string, error) {
	key := f.AssetKey()
	if err := config.EnsureDir(h.assetsDir); err != nil {
		return nil, fmt.Errorf("creating assets dir: %w", err)
	}
	dst := filepath.Join(h.assetsDir, filepath.Base(key))
	if err := os.WriteFile(dst, f.Data, 0o644); err != nil {
		return nil, fmt.Errorf("writing asset: %w", err)
	}

	url := "file://" + filepath.ToSlash(dst)
	err := h.update(func(s *State) error {
		if s.Assets == nil {
			s.Assets = make(map[string]string)
		}
		s.Assets[key] = url
		return nil
	})
	if err != nil {
		return nil, err
	}
	return map[string]string{key: url}, nil
}

// Snapshot returns the current state.
func (h *FileHost) Snapshot() (*State, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.load()
}

func (h *FileHost) view(fn func(*State) error) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.ready {
		return ErrNotReady
	}
	s, err := h.load()
	if err != nil {
		return err
	}
	return fn(s)
}

func (h *FileHost) update(fn func(*State) error) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.ready {
		return ErrNotReady
	}
	s, err := h.load()
	if err != nil {
		return err
	}
	if err := fn(s); err != nil {
		return err
	}
	return h.save(s)
}

func (h *FileHost) load() (*State, error) {
	data, err := os.ReadFile(h.path)
	if err != nil {
		return nil, fmt.Errorf("reading host state: %w", err)
	}
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing host state: %w", err)
	}
	return &s, nil
}

func (h *FileHost) save(s *State) error {
	if err := config.EnsureDir(filepath.Dir(h.path)); err != nil {
		return fmt.Errorf("creating host state directory: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling host state: %w", err)
	}

	tmpPath := h.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("writing temp host state: %w", err)
	}
	if err := os.Rename(tmpPath, h.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp host state: %w", err)
	}
	return nil
}
