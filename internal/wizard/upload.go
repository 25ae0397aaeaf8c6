// ABOUTME: Custom image upload: type and size validation, busy guard, URL write-back
// ABOUTME: Files are read and sniffed locally; the host returns a key-to-URL mapping

package wizard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"slices"

	"golang.org/x/text/unicode/norm"

	"github.com/mauromedda/overlay-wizard/internal/host"
	"github.com/mauromedda/overlay-wizard/internal/log"
	"github.com/mauromedda/overlay-wizard/internal/settings"
	"github.com/mauromedda/overlay-wizard/internal/types"
)

// MaxUploadSize is the largest accepted image.
const MaxUploadSize = 10 * 1024 * 1024

// AllowedImageTypes lists the accepted MIME types.
var AllowedImageTypes = []string{"image/jpeg", "image/png"}

// ErrUploadBusy is returned while an upload is in flight.
var ErrUploadBusy = errors.New("an upload is already in progress")

// UploadResult is the outcome of an upload job.
type UploadResult struct {
	Key  string
	URLs map[string]string
	Err  error
}

// FileFromPath describes a local file for upload. The MIME type is sniffed
// from content; files over the size limit are described but not read.
func FileFromPath(path string) (host.FileDescriptor, error) {
	info, err := os.Stat(path)
	if err != nil {
		return host.FileDescriptor{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return host.FileDescriptor{}, fmt.Errorf("%s is a directory", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return host.FileDescriptor{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	// NFC keeps asset keys stable across filesystems that store NFD names.
	fd := host.FileDescriptor{
		Name:    norm.NFC.String(filepath.Base(path)),
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return host.FileDescriptor{}, fmt.Errorf("read %s: %w", path, err)
	}
	fd.MIME = http.DetectContentType(head[:n])

	if fd.Size > MaxUploadSize {
		return fd, nil
	}
	rest, err := io.ReadAll(f)
	if err != nil {
		return host.FileDescriptor{}, fmt.Errorf("read %s: %w", path, err)
	}
	fd.Data = append(head[:n], rest...)
	return fd, nil
}

// ValidateUpload checks type and size.
func ValidateUpload(f host.FileDescriptor) error {
	if !slices.Contains(AllowedImageTypes, f.MIME) {
		return types.NewAlert("Invalid file type.", "Please select a JPG or PNG file.")
	}
	if f.Size > MaxUploadSize {
		return types.NewAlert("File size too large.", "Please upload a file less than 10 MB.")
	}
	return nil
}

// Uploading reports whether an upload is in flight.
func (s *Session) Uploading() bool { return s.uploading }

// StartUpload validates f and returns the upload job. The session stays busy
// until CompleteUpload.
func (s *Session) StartUpload(f host.FileDescriptor) (Job[UploadResult], error) {
	if s.uploading {
		return nil, ErrUploadBusy
	}
	if err := ValidateUpload(f); err != nil {
		return nil, err
	}
	if s.bridge == nil {
		return nil, ErrNotReady
	}

	s.uploading = true
	b := s.bridge
	return func(ctx context.Context) UploadResult {
		urls, err := b.UploadAsset(ctx, f)
		return UploadResult{Key: f.AssetKey(), URLs: urls, Err: err}
	}, nil
}

// CompleteUpload writes the uploaded URL into the record and pushes it.
func (s *Session) CompleteUpload(res UploadResult) error {
	s.uploading = false
	if res.Err != nil {
		log.Error("uploading asset: %v", res.Err)
		return types.NewAlert("Error", "Failed to upload image.")
	}
	url, ok := res.URLs[res.Key]
	if !ok {
		log.Error("upload result has no entry for %s: %v", res.Key, res.URLs)
		return types.NewAlert("Error", "Failed to upload image.")
	}
	return s.SetField(settings.FieldCustomImageURL, url)
}
