// ABOUTME: Host-facing wizard flows split into off-loop jobs and on-loop apply steps
// ABOUTME: Navigation, save-existing, publish-to-scene, mask export and close

package wizard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mauromedda/overlay-wizard/internal/host"
	"github.com/mauromedda/overlay-wizard/internal/log"
	"github.com/mauromedda/overlay-wizard/internal/render"
	"github.com/mauromedda/overlay-wizard/internal/scenes"
	"github.com/mauromedda/overlay-wizard/internal/settings"
	"github.com/mauromedda/overlay-wizard/internal/types"
)

// Job is host I/O run off the event loop.
type Job[T any] func(ctx context.Context) T

// NavigationResult is the outcome of LoadNavigation's job.
type NavigationResult struct {
	Nav      host.Navigation
	Settings string
	Found    bool
	Err      error
}

// LoadNavigation returns the job that fetches what a navigation needs.
func (s *Session) LoadNavigation(nav host.Navigation) Job[NavigationResult] {
	b := s.bridge
	return func(ctx context.Context) NavigationResult {
		res := NavigationResult{Nav: nav}
		if !nav.Existing() || b == nil {
			return res
		}
		res.Settings, res.Found, res.Err = b.GetSourceSettings(ctx, nav.SourceID)
		return res
	}
}

// ApplyNavigation enters the session the navigation asks for: a fresh
// session starts at step 1, an existing source with stored settings opens
// on step 2 with those settings.
func (s *Session) ApplyNavigation(res NavigationResult) error {
	if !res.Nav.Existing() {
		s.existing = ""
		return s.GoToStep(StepType)
	}

	s.existing = res.Nav.SourceID
	if res.Err != nil {
		log.Error("loading settings of %s: %v", res.Nav.SourceID, res.Err)
		return types.NewAlert("Error", "Failed to load source settings.")
	}
	if !res.Found {
		log.Info("source %s has no stored settings", res.Nav.SourceID)
		return nil
	}

	t, rec, err := settings.Decode(res.Settings)
	if err != nil {
		log.Error("stored settings of %s: %v", res.Nav.SourceID, err)
		return nil
	}
	if err := s.store.Replace(t, rec); err != nil {
		log.Warn("stored settings of %s: %v", res.Nav.SourceID, err)
	}
	// Leave the current step first so the stored type can be selected.
	s.step = StepType
	s.selected = t
	return s.GoToStep(StepEdit)
}

// Encoded returns the active record in its persisted form.
func (s *Session) Encoded() (string, error) {
	return settings.Encode(s.ActiveType(), s.Record())
}

// SaveJob returns the job that writes the record to the existing source and
// returns the host to the editor.
func (s *Session) SaveJob() (Job[error], error) {
	if !s.ready {
		return nil, ErrNotReady
	}
	if s.existing == "" {
		return nil, ErrNoSource
	}
	encoded, err := s.Encoded()
	if err != nil {
		return nil, err
	}
	b, id := s.bridge, s.existing
	return func(ctx context.Context) error {
		if err := b.SetSourceSettings(ctx, id, encoded); err != nil {
			return fmt.Errorf("save %s: %w", id, err)
		}
		return b.Navigate(ctx, host.TargetEditor)
	}, nil
}

// ApplySave finishes a save. The session stops editing the source on success.
func (s *Session) ApplySave(err error) error {
	if err != nil {
		log.Error("saving source: %v", err)
		return types.NewAlert("Error", "Failed to save source settings.")
	}
	s.existing = ""
	return nil
}

// OpenSceneModal opens the scene picker for the active type. The caller
// loads the listing with scenes.Load and hands it to the modal.
func (s *Session) OpenSceneModal() error {
	if !s.ready {
		return ErrNotReady
	}
	s.modal.Open(s.ActiveType())
	return nil
}

// PublishJob returns the job that creates and attaches a new source for the
// modal's current selection.
func (s *Session) PublishJob() (Job[error], error) {
	encoded, err := s.Encoded()
	if err != nil {
		return nil, err
	}
	req, ok := s.modal.Confirmation(encoded)
	if !ok {
		return nil, errors.New("no scene selected")
	}
	b := s.bridge
	return func(ctx context.Context) error {
		_, err := scenes.Publish(ctx, b, req)
		return err
	}, nil
}

// ApplyPublish finishes a publish through the modal.
func (s *Session) ApplyPublish(err error) error {
	if alert := s.modal.ConfirmDone(err); alert != nil {
		return alert
	}
	return nil
}

// ExportMask writes the mask PNG for the active record. Review step only.
func (s *Session) ExportMask(w io.Writer) error {
	if s.step != StepReview {
		return ErrNotReview
	}
	if err := render.ExportMask(s.Record(), w); err != nil {
		log.Error("mask export: %v", err)
		return types.NewAlert("Export Error", "Failed to create mask image.")
	}
	return nil
}

// ExportMaskFile writes the mask into dir and returns the file path.
func (s *Session) ExportMaskFile(dir string) (string, error) {
	if s.step != StepReview {
		return "", ErrNotReview
	}
	path := filepath.Join(dir, render.MaskFilename)
	f, err := os.Create(path)
	if err != nil {
		log.Error("mask export: %v", err)
		return "", types.NewAlert("Export Error", "Failed to create mask image.")
	}
	if err := s.ExportMask(f); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing mask: %w", err)
	}
	return path, nil
}

// CloseJob disposes every instance and returns the job that sends the host
// back to the editor.
func (s *Session) CloseJob() Job[error] {
	s.Shutdown()
	b := s.bridge
	return func(ctx context.Context) error {
		if b == nil {
			return nil
		}
		return b.Navigate(ctx, host.TargetEditor)
	}
}

// Close disposes every instance and sends the host back to the editor.
func (s *Session) Close(ctx context.Context) error {
	return s.CloseJob()(ctx)
}
