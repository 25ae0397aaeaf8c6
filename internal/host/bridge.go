// ABOUTME: Host Bridge contract: the streaming application's source, scene and asset API
// ABOUTME: Every call may block or fail; callers run them off the UI event loop

package host

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Well-known values the wizard passes to the host.
const (
	TargetEditor          = "Editor"
	TemplateSourceBuilder = "bb-source-builder"
)

var (
	// ErrNotReady is returned by calls made before Init completed.
	ErrNotReady = errors.New("host bridge not ready")
	// ErrNotFound is returned for unknown source or scene ids.
	ErrNotFound = errors.New("not found")
)

// Navigation is delivered when the host opens the wizard. An empty SourceID
// means a fresh session; otherwise the wizard edits that source.
type Navigation struct {
	SourceID string `json:"sourceId,omitempty"`
}

// Existing reports whether the navigation targets an existing source.
func (n Navigation) Existing() bool { return n.SourceID != "" }

// Scene is a destination container for sources.
type Scene struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Source is a created application source.
type Source struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// FileDescriptor is a user-selected file offered for upload.
type FileDescriptor struct {
	Name    string    `json:"name"`
	MIME    string    `json:"mime"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"modTime"`
	Data    []byte    `json:"data"`
}

// AssetKey is the key the host uses for f in the returned URL mapping.
func (f FileDescriptor) AssetKey() string {
	return fmt.Sprintf("%s_%d", f.Name, f.ModTime.UnixMilli())
}

// Bridge is the host application API.
type Bridge interface {
	// Init waits until the host API is ready.
	Init(ctx context.Context) error
	// OnNavigation registers fn for navigation events and returns an
	// unsubscribe function.
	OnNavigation(fn func(Navigation)) func()
	// GetSourceSettings returns the persisted settings string of a source.
	// ok is false when the source has never stored settings.
	GetSourceSettings(ctx context.Context, sourceID string) (settings string, ok bool, err error)
	SetSourceSettings(ctx context.Context, sourceID, settings string) error
	CreateSource(ctx context.Context, name, template string) (Source, error)
	GetScenes(ctx context.Context) ([]Scene, error)
	GetActiveScene(ctx context.Context) (Scene, error)
	CreateSceneItem(ctx context.Context, sceneID, sourceID string) error
	Navigate(ctx context.Context, target string) error
	// UploadAsset stores f and returns a mapping from f.AssetKey() to its URL.
	UploadAsset(ctx context.Context, f FileDescriptor) (map[string]string, error)
}
