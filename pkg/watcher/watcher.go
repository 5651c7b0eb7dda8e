// Package watcher reloads scene data when the files on disk change.
package watcher

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// SceneWatcher watches a scene directory and fires a debounced
// callback when its manifest, chunk or property files change. Tile
// exporters rewrite several files in quick succession; the debounce
// collapses that burst into one reload.
type SceneWatcher struct {
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	debounce time.Duration

	mu       sync.Mutex
	callback func()
	timer    *time.Timer
}

// New creates a watcher with the given debounce window
func New(debounce time.Duration, logger *slog.Logger) (*SceneWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SceneWatcher{
		watcher:  w,
		logger:   logger,
		debounce: debounce,
	}, nil
}

// Watch registers the scene directory and the reload callback
func (w *SceneWatcher) Watch(dir string, callback func()) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("failed to resolve path %s: %w", dir, err)
	}
	if err := w.watcher.Add(abs); err != nil {
		return fmt.Errorf("failed to watch %s: %w", abs, err)
	}

	w.mu.Lock()
	w.callback = callback
	w.mu.Unlock()
	return nil
}

// Start begins delivering change events
func (w *SceneWatcher) Start() {
	go func() {
		for {
			select {
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				if !relevant(event.Name) {
					continue
				}
				w.logger.Debug("scene file changed", "file", event.Name)
				w.schedule()

			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				w.logger.Error("watcher error", "error", err)
			}
		}
	}()
}

// relevant filters out editor temp files and unrelated writes
func relevant(path string) bool {
	switch filepath.Ext(path) {
	case ".json", ".ctwm":
		return true
	}
	return false
}

func (w *SceneWatcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.callback == nil {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.callback)
}

// Close stops the watcher
func (w *SceneWatcher) Close() error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return w.watcher.Close()
}
