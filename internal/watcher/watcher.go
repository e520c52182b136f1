// Package watcher reports debounced file system changes below a set of
// watched paths using fsnotify.
package watcher

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period used when none is configured.
const DefaultDebounce = 200 * time.Millisecond

// ErrClosed is returned when operations are called on a closed Watcher.
var ErrClosed = errors.New("watcher: watcher is closed")

// Event is one relevant file system change.
type Event struct {
	Path string
	Op   fsnotify.Op
}

// Handler receives the changes coalesced during one debounce window.
// Paths are sorted and each appears once.
type Handler func(ctx context.Context, events []Event)

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period after the last event before the
// handler runs.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithIgnore skips events for paths the predicate accepts.
func WithIgnore(ignore func(path string) bool) Option {
	return func(w *Watcher) {
		w.ignore = ignore
	}
}

// WithLogger sets the logger for watch errors.
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// Watcher watches files and directory trees for changes.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	debounce  time.Duration
	ignore    func(string) bool
	logger    *slog.Logger

	mu      sync.Mutex
	watched map[string]bool
	closed  bool
}

// New creates a Watcher.
func New(opts ...Option) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsWatcher: fsWatcher,
		debounce:  DefaultDebounce,
		logger:    slog.Default(),
		watched:   make(map[string]bool),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Add watches path. A directory is watched together with all of its
// subdirectories, including ones created later.
func (w *Watcher) Add(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return w.addRecursive(absPath)
	}
	return w.addOne(absPath)
}

// addRecursive adds a directory and all its subdirectories.
// Must be called with w.mu held.
func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		return w.addOne(path)
	})
}

// addOne must be called with w.mu held.
func (w *Watcher) addOne(path string) error {
	if w.watched[path] {
		return nil
	}
	if err := w.fsWatcher.Add(path); err != nil {
		return err
	}
	w.watched[path] = true
	return nil
}

// WatchedPaths returns the watched paths in sorted order.
func (w *Watcher) WatchedPaths() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	paths := make([]string, 0, len(w.watched))
	for p := range w.watched {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Close stops the watcher and releases resources.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	return w.fsWatcher.Close()
}

// Run delivers debounced changes to handler until ctx is done or the
// watcher is closed. The handler runs on the calling goroutine, so a slow
// handler delays, but never overlaps, the next delivery.
func (w *Watcher) Run(ctx context.Context, handler Handler) error {
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	pending := make(map[string]fsnotify.Op)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return ErrClosed
			}
			if !w.relevant(event) {
				continue
			}
			w.follow(event)
			pending[event.Name] |= event.Op
			timer.Reset(w.debounce)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return ErrClosed
			}
			w.logger.Warn("watch error", "error", err)
		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			events := make([]Event, 0, len(pending))
			for path, op := range pending {
				events = append(events, Event{Path: path, Op: op})
			}
			sort.Slice(events, func(i, j int) bool { return events[i].Path < events[j].Path })
			clear(pending)
			handler(ctx, events)
		}
	}
}

// relevant drops permission-only changes and ignored paths.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	return w.ignore == nil || !w.ignore(event.Name)
}

// follow starts watching directories created below a watched tree and
// forgets removed ones.
func (w *Watcher) follow(event fsnotify.Event) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addRecursive(event.Name); err != nil {
				w.logger.Warn("failed to watch new directory", "path", event.Name, "error", err)
			}
		}
	}
	if event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename) {
		delete(w.watched, event.Name)
	}
}
