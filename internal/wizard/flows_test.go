// ABOUTME: Tests for host flows against a file-backed host: navigation, save, publish
// ABOUTME: Also covers mask export gating and the upload guard rails

package wizard

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mauromedda/overlay-wizard/internal/host"
	"github.com/mauromedda/overlay-wizard/internal/lifecycle"
	"github.com/mauromedda/overlay-wizard/internal/render"
	"github.com/mauromedda/overlay-wizard/internal/scenes"
	"github.com/mauromedda/overlay-wizard/internal/settings"
	"github.com/mauromedda/overlay-wizard/internal/types"
)

func newHostSession(t *testing.T) (*Session, *host.FileHost) {
	t.Helper()
	fh := host.NewFileHost(filepath.Join(t.TempDir(), "host.json"))
	if err := fh.Init(context.Background()); err != nil {
		t.Fatal(err)
	}
	s := New(Options{Bridge: fh, Scheduler: lifecycle.NewManualScheduler()})
	s.SetReady(true)
	return s, fh
}

func navigate(t *testing.T, s *Session, nav host.Navigation) error {
	t.Helper()
	return s.ApplyNavigation(s.LoadNavigation(nav)(context.Background()))
}

func TestFlows_FreshNavigation(t *testing.T) {
	t.Parallel()
	s, _ := newHostSession(t)

	if err := navigate(t, s, host.Navigation{}); err != nil {
		t.Fatal(err)
	}
	if s.Step() != StepType || s.ExistingSource() != "" {
		t.Errorf("step = %v existing = %q", s.Step(), s.ExistingSource())
	}
}

func TestFlows_ExistingSourceWithSettings(t *testing.T) {
	t.Parallel()
	s, fh := newHostSession(t)
	ctx := context.Background()

	src, _ := fh.CreateSource(ctx, "Keyboard Overlay", host.TemplateSourceBuilder)
	stored, _ := settings.Encode(settings.Keyboard, settings.Record{settings.FieldRotation: 33.0})
	if err := fh.SetSourceSettings(ctx, src.ID, stored); err != nil {
		t.Fatal(err)
	}

	if err := navigate(t, s, host.Navigation{SourceID: src.ID}); err != nil {
		t.Fatal(err)
	}
	if s.Step() != StepEdit || s.SelectedType() != settings.Keyboard {
		t.Fatalf("step = %v type = %q", s.Step(), s.SelectedType())
	}
	if got := s.Record().Number(settings.FieldRotation); got != 33 {
		t.Errorf("rotation = %v", got)
	}
	if s.ExistingSource() != src.ID || !s.SaveVisible() {
		t.Errorf("existing = %q", s.ExistingSource())
	}
	if s.Manager().Len() != 1 {
		t.Errorf("tracked = %v", s.Manager().Tracked())
	}
}

func TestFlows_ExistingSourceWithoutSettings(t *testing.T) {
	t.Parallel()
	s, fh := newHostSession(t)

	src, _ := fh.CreateSource(context.Background(), "Webcam Frame", host.TemplateSourceBuilder)
	if err := navigate(t, s, host.Navigation{SourceID: src.ID}); err != nil {
		t.Fatal(err)
	}
	if s.Step() != StepType || s.ExistingSource() != src.ID {
		t.Errorf("step = %v existing = %q", s.Step(), s.ExistingSource())
	}
}

func TestFlows_NavigationLookupFails(t *testing.T) {
	t.Parallel()
	s, _ := newHostSession(t)

	err := navigate(t, s, host.Navigation{SourceID: "missing"})
	var alert *types.Alert
	if !errors.As(err, &alert) {
		t.Fatalf("err = %v; want alert", err)
	}
}

func TestFlows_SaveExisting(t *testing.T) {
	t.Parallel()
	s, fh := newHostSession(t)
	ctx := context.Background()

	if _, err := s.SaveJob(); !errors.Is(err, ErrNoSource) {
		t.Errorf("SaveJob without source = %v", err)
	}

	src, _ := fh.CreateSource(ctx, "Webcam Frame", host.TemplateSourceBuilder)
	stored, _ := settings.Encode(settings.Webcam, settings.Defaults(settings.Webcam))
	_ = fh.SetSourceSettings(ctx, src.ID, stored)
	if err := navigate(t, s, host.Navigation{SourceID: src.ID}); err != nil {
		t.Fatal(err)
	}
	if err := s.SetField(settings.FieldBorderRadius, 42); err != nil {
		t.Fatal(err)
	}

	job, err := s.SaveJob()
	if err != nil {
		t.Fatal(err)
	}
	if err := s.ApplySave(job(ctx)); err != nil {
		t.Fatal(err)
	}
	if s.ExistingSource() != "" {
		t.Error("session should stop editing the source after save")
	}

	got, ok, err := fh.GetSourceSettings(ctx, src.ID)
	if err != nil || !ok {
		t.Fatal(err)
	}
	typ, rec, err := settings.Decode(got)
	if err != nil || typ != settings.Webcam || rec.Number(settings.FieldBorderRadius) != 42 {
		t.Errorf("persisted = %s", got)
	}
	st, _ := fh.Snapshot()
	if st.LastNavigate != host.TargetEditor {
		t.Errorf("LastNavigate = %q", st.LastNavigate)
	}
}

func TestFlows_SaveRequiresReady(t *testing.T) {
	t.Parallel()
	s, _ := newHostSession(t)
	s.SetReady(false)
	s.existing = "source_1"

	if _, err := s.SaveJob(); !errors.Is(err, ErrNotReady) {
		t.Errorf("SaveJob = %v", err)
	}
	if err := s.OpenSceneModal(); !errors.Is(err, ErrNotReady) {
		t.Errorf("OpenSceneModal = %v", err)
	}
}

func TestFlows_PublishThroughModal(t *testing.T) {
	t.Parallel()
	s, fh := newHostSession(t)
	ctx := context.Background()

	_ = s.SelectType(settings.Keyboard)
	_ = s.GoToStep(StepReview)
	if err := s.OpenSceneModal(); err != nil {
		t.Fatal(err)
	}
	listing, err := scenes.Load(ctx, fh)
	if err != nil {
		t.Fatal(err)
	}
	s.Modal().Populate(listing)

	job, err := s.PublishJob()
	if err != nil {
		t.Fatal(err)
	}
	if err := s.ApplyPublish(job(ctx)); err != nil {
		t.Fatal(err)
	}
	if s.Modal().IsOpen() {
		t.Error("modal still open after publish")
	}

	st, _ := fh.Snapshot()
	if len(st.Sources) != 1 || st.Sources[0].Name != "Keyboard Overlay" || st.Sources[0].Template != host.TemplateSourceBuilder {
		t.Fatalf("sources = %+v", st.Sources)
	}
	if st.Sources[0].Settings == nil || !strings.Contains(*st.Sources[0].Settings, `"overlayType":"keyboard"`) {
		t.Errorf("settings = %v", st.Sources[0].Settings)
	}
	if len(st.SceneItems) != 1 || st.SceneItems[0].SceneID != listing.ActiveID {
		t.Errorf("scene items = %+v", st.SceneItems)
	}
}

func TestFlows_PublishFailureKeepsModal(t *testing.T) {
	t.Parallel()
	s, _ := newHostSession(t)

	_ = s.SelectType(settings.Webcam)
	_ = s.OpenSceneModal()
	s.Modal().Populate(scenes.Listing{Scenes: []host.Scene{{ID: "ghost", Name: "Ghost"}}, ActiveID: "ghost"})

	job, err := s.PublishJob()
	if err != nil {
		t.Fatal(err)
	}
	err = s.ApplyPublish(job(context.Background()))
	var alert *types.Alert
	if !errors.As(err, &alert) || alert.Message != "Failed to add source to scene." {
		t.Errorf("err = %v", err)
	}
	if !s.Modal().IsOpen() {
		t.Error("modal closed after failure")
	}
}

func TestFlows_ExportMask(t *testing.T) {
	t.Parallel()
	s, _ := newHostSession(t)
	_ = s.SelectType(settings.Webcam)
	_ = s.GoToStep(StepEdit)

	var buf bytes.Buffer
	if err := s.ExportMask(&buf); !errors.Is(err, ErrNotReview) {
		t.Errorf("ExportMask on step 2 = %v", err)
	}

	_ = s.GoToStep(StepReview)
	dir := t.TempDir()
	path, err := s.ExportMaskFile(dir)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != render.MaskFilename {
		t.Errorf("path = %s", path)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != render.MaskSize {
		t.Errorf("mask width = %d", img.Bounds().Dx())
	}
}

func TestFlows_Upload(t *testing.T) {
	t.Parallel()
	s, _ := newHostSession(t)
	_ = s.SelectType(settings.Webcam)
	_ = s.GoToStep(StepEdit)

	var alert *types.Alert
	_, err := s.StartUpload(host.FileDescriptor{Name: "a.gif", MIME: "image/gif", Size: 10})
	if !errors.As(err, &alert) || alert.Title != "Invalid file type." {
		t.Errorf("gif = %v", err)
	}
	_, err = s.StartUpload(host.FileDescriptor{Name: "a.png", MIME: "image/png", Size: MaxUploadSize + 1})
	if !errors.As(err, &alert) || alert.Title != "File size too large." {
		t.Errorf("oversized = %v", err)
	}
	if s.Uploading() {
		t.Fatal("rejected files must not mark the session busy")
	}

	f := host.FileDescriptor{Name: "a.png", MIME: "image/png", Size: 3, ModTime: time.UnixMilli(5), Data: []byte("png")}
	job, err := s.StartUpload(f)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.StartUpload(f); !errors.Is(err, ErrUploadBusy) {
		t.Errorf("second upload = %v; want ErrUploadBusy", err)
	}
	if err := s.CompleteUpload(job(context.Background())); err != nil {
		t.Fatal(err)
	}
	if s.Uploading() {
		t.Error("still busy after completion")
	}
	if url := s.Record().String(settings.FieldCustomImageURL); !strings.HasPrefix(url, "file://") {
		t.Errorf("customImageUrl = %q", url)
	}

	err = s.CompleteUpload(UploadResult{Key: "x", Err: errors.New("disk full")})
	if !errors.As(err, &alert) {
		t.Errorf("failed upload = %v", err)
	}
}

func TestFileFromPath(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	var buf bytes.Buffer
	if err := render.ExportMask(settings.Defaults(settings.Webcam), &buf); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "mask.png")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	fd, err := FileFromPath(path)
	if err != nil {
		t.Fatal(err)
	}
	if fd.MIME != "image/png" || fd.Size != int64(buf.Len()) || len(fd.Data) != buf.Len() {
		t.Errorf("fd = %s %d %d", fd.MIME, fd.Size, len(fd.Data))
	}
	if err := ValidateUpload(fd); err != nil {
		t.Errorf("ValidateUpload = %v", err)
	}

	txt := filepath.Join(dir, "notes.txt")
	_ = os.WriteFile(txt, []byte("hello"), 0o644)
	fd, err = FileFromPath(txt)
	if err != nil {
		t.Fatal(err)
	}
	if err := ValidateUpload(fd); err == nil {
		t.Error("text file accepted")
	}
}

func TestFileFromPath_NormalizesName(t *testing.T) {
	t.Parallel()
	// "café" with a combining acute accent (NFD).
	path := filepath.Join(t.TempDir(), "café.png")
	if err := os.WriteFile(path, []byte("\x89PNG\r\n\x1a\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	fd, err := FileFromPath(path)
	if err != nil {
		t.Fatal(err)
	}
	if want := "café.png"; fd.Name != want {
		t.Errorf("Name = %q; want %q", fd.Name, want)
	}
}
