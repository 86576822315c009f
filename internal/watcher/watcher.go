// Package watcher observes the content root for filesystem changes and
// triggers reconciliation, debouncing event bursts.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/recallmind/recallmind/internal/logger"
)

// DefaultDebounce is the quiet window after the last event before one
// reconciliation is triggered. Editors write through temp files and
// renames, so a single logical edit produces a burst of events; the
// debounce collapses each burst into one trigger.
const DefaultDebounce = 500 * time.Millisecond

// Watcher observes a directory tree and calls a trigger function once per
// quiescent burst of filesystem events. It does not interpret event types:
// the reconciliation scan derives adds, updates and deletes (and rename
// pairs) from the directory state itself.
type Watcher struct {
	root       string
	extensions map[string]bool
	debounce   time.Duration
	trigger    func()

	mu    sync.Mutex
	timer *time.Timer
}

// Config holds watcher configuration.
type Config struct {
	// Root is the content root directory to observe, recursively.
	Root string

	// Extensions is the file extension allow-list (e.g. [".md"]).
	// Events on other files are ignored.
	Extensions []string

	// Debounce is the quiet window (default: DefaultDebounce).
	Debounce time.Duration
}

// New creates a watcher that calls trigger after each debounced burst.
func New(cfg Config, trigger func()) *Watcher {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}

	exts := make(map[string]bool, len(cfg.Extensions))
	for _, ext := range cfg.Extensions {
		exts[strings.ToLower(ext)] = true
	}

	return &Watcher{
		root:       cfg.Root,
		extensions: exts,
		debounce:   cfg.Debounce,
		trigger:    trigger,
	}
}

// Run watches until ctx is cancelled. New subdirectories are added to the
// watch as they appear.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close() //nolint:errcheck

	if err := w.addRecursive(fw, w.root); err != nil {
		return fmt.Errorf("watch %s: %w", w.root, err)
	}

	defer w.stopTimer()

	logger.Info("Watching %s", w.root)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handle(fw, event)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)
		}
	}
}

// handle processes one raw filesystem event.
func (w *Watcher) handle(fw *fsnotify.Watcher, event fsnotify.Event) {
	// Track directories created under the root so nested notes are seen.
	// Hidden directories are left unwatched, matching the reconciliation
	// scan, so churn under .git or .obsidian never schedules a cycle.
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if hiddenDir(filepath.Base(event.Name)) {
				return
			}
			if err := w.addRecursive(fw, event.Name); err != nil {
				logger.Warn("Failed to watch %s: %v", event.Name, err)
			}
			w.schedule()
			return
		}
	}

	if !w.relevant(event.Name) {
		return
	}

	logger.Debug("Filesystem event: %s %s", event.Op, event.Name)
	w.schedule()
}

// relevant reports whether the event path matches the extension allow-list.
func (w *Watcher) relevant(path string) bool {
	if len(w.extensions) == 0 {
		return true
	}
	return w.extensions[strings.ToLower(filepath.Ext(path))]
}

// schedule arms or re-arms the debounce timer. The trigger fires once the
// timer survives a full quiet window.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer == nil {
		w.timer = time.AfterFunc(w.debounce, w.fire)
		return
	}
	w.timer.Reset(w.debounce)
}

// fire invokes the trigger and releases the timer.
func (w *Watcher) fire() {
	w.mu.Lock()
	w.timer = nil
	w.mu.Unlock()

	w.trigger()
}

// stopTimer cancels a pending debounce timer, if any.
func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

// addRecursive watches dir and every directory below it, skipping hidden
// directories so the watched set matches what the reconciliation scan
// will actually ingest.
func (w *Watcher) addRecursive(fw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && hiddenDir(d.Name()) {
			return filepath.SkipDir
		}
		return fw.Add(path)
	})
}

// hiddenDir reports whether a directory name is dot-prefixed.
func hiddenDir(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}
