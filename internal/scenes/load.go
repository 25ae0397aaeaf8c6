// ABOUTME: Scene listing fetch: scenes and active scene requested in parallel
// ABOUTME: Either call failing fails the whole listing

package scenes

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/mauromedda/overlay-wizard/internal/host"
)

// Listing is the host's scene list and its active scene.
type Listing struct {
	Scenes   []host.Scene
	ActiveID string
}

// Has reports whether id is in the listing.
func (l Listing) Has(id string) bool {
	for _, s := range l.Scenes {
		if s.ID == id {
			return true
		}
	}
	return false
}

// Load fetches the scene list and the active scene concurrently.
func Load(ctx context.Context, b host.Bridge) (Listing, error) {
	var (
		scenes []host.Scene
		active host.Scene
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		scenes, err = b.GetScenes(gctx)
		if err != nil {
			return fmt.Errorf("get scenes: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		active, err = b.GetActiveScene(gctx)
		if err != nil {
			return fmt.Errorf("get active scene: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Listing{}, err
	}
	return Listing{Scenes: scenes, ActiveID: active.ID}, nil
}
