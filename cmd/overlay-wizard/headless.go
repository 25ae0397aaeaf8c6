// ABOUTME: Headless mode: drives a wizard session to the review step without a terminal
// ABOUTME: Writes the frame mask and/or the rendered preview as PNG files

package main

import (
	"context"
	"errors"
	"fmt"
	"image/png"
	"os"

	"github.com/mauromedda/overlay-wizard/internal/config"
	"github.com/mauromedda/overlay-wizard/internal/engine"
	"github.com/mauromedda/overlay-wizard/internal/host"
	"github.com/mauromedda/overlay-wizard/internal/lifecycle"
	owlog "github.com/mauromedda/overlay-wizard/internal/log"
	"github.com/mauromedda/overlay-wizard/internal/settings"
	"github.com/mauromedda/overlay-wizard/internal/types"
	"github.com/mauromedda/overlay-wizard/internal/wizard"
)

// runHeadless runs on a single goroutine, so deferred callbacks use a clock
// that is never advanced.
func runHeadless(args cliArgs, cfg *config.Config, asset *engine.Asset, seed settings.Record, policy lifecycle.RetryPolicy) error {
	ctx := context.Background()
	opts := wizard.Options{
		Scheduler: lifecycle.NewManualScheduler(),
		Policy:    policy,
		Asset:     asset,
		Seed:      seed,
	}

	if args.source != "" {
		bridge, _, closeBridge, err := openBridge(ctx, cfg, args.source)
		if err != nil {
			return err
		}
		defer closeBridge()
		if err := bridge.Init(ctx); err != nil {
			return fmt.Errorf("host init: %w", err)
		}
		opts.Bridge = bridge
	}

	s := wizard.New(opts)
	defer s.Shutdown()

	if args.source != "" {
		nav := host.Navigation{SourceID: args.source}
		if err := s.ApplyNavigation(s.LoadNavigation(nav)(ctx)); err != nil {
			return alertError(err)
		}
	}
	if s.Step() == wizard.StepType {
		t, err := settings.ParseType(args.overlayType)
		if err != nil {
			return err
		}
		if err := s.SelectType(t); err != nil {
			return err
		}
	}
	if err := s.GoToStep(wizard.StepReview); err != nil {
		return err
	}

	if args.exportMask {
		path, err := s.ExportMaskFile(cfg.ExportDir)
		if err != nil {
			return alertError(err)
		}
		fmt.Println(path)
	}
	if args.render != "" {
		if err := writePreview(s, args.render); err != nil {
			return err
		}
		fmt.Println(args.render)
	}
	return nil
}

// writePreview encodes the review surface as PNG.
func writePreview(s *wizard.Session, path string) error {
	id := wizard.SurfaceID(s.ActiveType(), wizard.StepReview)
	if _, ok := s.Manager().Instance(id); !ok {
		return fmt.Errorf("render %s: no bound instance", id)
	}
	surface := s.Surface(id)
	if surface == nil {
		return fmt.Errorf("render %s: no surface", id)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := png.Encode(f, surface.Image()); err != nil {
		f.Close()
		return fmt.Errorf("encoding preview: %w", err)
	}
	owlog.Debug("preview written to %s", path)
	return f.Close()
}

// alertError flattens an alert into a one-line CLI error.
func alertError(err error) error {
	var alert *types.Alert
	if errors.As(err, &alert) {
		return errors.New(alert.Title + ": " + alert.Message)
	}
	return err
}
