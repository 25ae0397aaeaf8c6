// ABOUTME: fsnotify-based watcher for the engine asset file
// ABOUTME: Watches the parent directory so editor rename-on-save is seen; debounces bursts

package config

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounceWindow = 100 * time.Millisecond

// Watcher reports changes to a single file.
type Watcher struct {
	watcher *fsnotify.Watcher
	target  string
	events  chan string
	errors  chan error
	closeCh chan struct{}
	once    sync.Once
	done    chan struct{}
}

// NewWatcher starts watching path. Events carries the cleaned path on each
// write, create, rename or remove that survives debouncing.
func NewWatcher(path string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	target := filepath.Clean(path)
	if err := w.Add(filepath.Dir(target)); err != nil {
		_ = w.Close()
		return nil, err
	}

	watcher := &Watcher{
		watcher: w,
		target:  target,
		events:  make(chan string, 16),
		errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
		done:    make(chan struct{}),
	}
	go watcher.run()
	return watcher, nil
}

// Events returns the change notification channel. It is closed by Close.
func (w *Watcher) Events() <-chan string { return w.events }

// Errors returns watcher errors. It is closed by Close.
func (w *Watcher) Errors() <-chan error { return w.errors }

// Close stops the watcher. Safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.done
		close(w.events)
		close(w.errors)
	})
	return err
}

func (w *Watcher) run() {
	defer close(w.done)
	var last time.Time
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			now := time.Now()
			if now.Sub(last) < debounceWindow {
				continue
			}
			last = now
			select {
			case w.events <- w.target:
			case <-w.closeCh:
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			default:
			}
		case <-w.closeCh:
			return
		}
	}
}
