package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounceDelay = 100 * time.Millisecond

// Watcher reloads the config file, and the layout file it names, when either
// changes on disk.
type Watcher struct {
	path string
	log  *slog.Logger

	mu       sync.RWMutex
	current  *Config
	onChange []func(old, new *Config)
}

// NewWatcher creates a watcher for the config at path, starting from current.
func NewWatcher(path string, current *Config, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{path: path, current: current, log: logger}
}

// OnChange registers a callback for config changes. Callbacks run on the
// goroutine that called Run. Register them before Run.
func (w *Watcher) OnChange(cb func(old, new *Config)) {
	w.onChange = append(w.onChange, cb)
}

// Config returns the current configuration.
func (w *Watcher) Config() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// Update applies fn to a copy of the current config and writes it back. The
// running config changes when the write is picked up as a reload.
func (w *Watcher) Update(fn func(c *Config)) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	next := w.current.Clone()
	fn(next)
	if err := next.Validate(); err != nil {
		return err
	}
	return next.SaveFile(w.path)
}

// Run watches until ctx is cancelled. Bursts of events are collapsed into one
// reload.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	dirs := map[string]bool{filepath.Dir(w.path): true}
	if layout := w.Config().LayoutPath(w.path); layout != "" {
		dirs[filepath.Dir(layout)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch directory: %w", err)
		}
	}

	var debounce *time.Timer
	var fire <-chan time.Time
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			if debounce == nil {
				debounce = time.NewTimer(debounceDelay)
			} else {
				debounce.Reset(debounceDelay)
			}
			fire = debounce.C

		case <-fire:
			fire = nil
			if err := w.Reload(); err != nil {
				w.log.Warn("config reload failed, keeping previous settings", "path", w.path, "error", err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("config watch error", "error", err)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}
	name := filepath.Clean(event.Name)
	if name == filepath.Clean(w.path) {
		return true
	}
	layout := w.Config().LayoutPath(w.path)
	return layout != "" && name == filepath.Clean(layout)
}

// Reload re-reads the config file and notifies the callbacks. An invalid file
// leaves the current config in place.
func (w *Watcher) Reload() error {
	next, err := LoadFile(w.path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	old := w.current
	w.current = next
	w.mu.Unlock()

	w.log.Info("config reloaded", "path", w.path)
	for _, cb := range w.onChange {
		cb(old, next)
	}
	return nil
}
