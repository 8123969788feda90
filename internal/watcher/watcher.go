// Package watcher re-analyzes locally analyzed repos when their trees change.
// Events are debounced per repo root, so an editor save burst or a git
// checkout triggers a single reindex.
package watcher

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/hyperjump/annai/internal/snapshot"
)

const defaultDebounce = 400 * time.Millisecond

// Watcher watches repo roots and invokes a callback once a changed root has
// been quiet for the debounce interval.
type Watcher struct {
	onChange func(root string)
	filter   *snapshot.Filter
	debounce time.Duration
	logger   *zap.Logger

	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	roots    map[string]struct{}
	timers   map[string]*time.Timer
	done     chan struct{}
	started  bool
	stopOnce sync.Once
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

// WithDebounce overrides the quiet interval before a change fires.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// New creates a watcher. onChange receives the repo root that changed.
func New(onChange func(root string), opts ...Option) *Watcher {
	w := &Watcher{
		onChange: onChange,
		filter:   snapshot.DefaultFilter(),
		debounce: defaultDebounce,
		logger:   zap.NewNop(),
		roots:    make(map[string]struct{}),
		timers:   make(map[string]*time.Timer),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins watching. It runs until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return nil
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}
	w.watcher = fsw
	w.started = true
	w.mu.Unlock()

	go w.run(ctx)
	return nil
}

// AddRepo registers a repo root and all its non-ignored subdirectories.
// Start must have been called.
func (w *Watcher) AddRepo(root string) error {
	root = filepath.Clean(root)

	w.mu.Lock()
	fsw := w.watcher
	w.roots[root] = struct{}{}
	w.mu.Unlock()
	if fsw == nil {
		return nil
	}

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.filter.IgnoreDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := fsw.Add(path); err != nil {
			w.logger.Debug("watch add failed", zap.String("path", path), zap.Error(err))
		}
		return nil
	})
}

// RemoveRepo stops watching a repo root and drops any pending change.
func (w *Watcher) RemoveRepo(root string) {
	root = filepath.Clean(root)
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.roots, root)
	if t, ok := w.timers[root]; ok {
		t.Stop()
		delete(w.timers, root)
	}
}

// Stop shuts the watcher down. Pending debounce timers are cancelled.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.mu.Lock()
		defer w.mu.Unlock()
		for root, t := range w.timers {
			t.Stop()
			delete(w.timers, root)
		}
		if w.watcher != nil {
			_ = w.watcher.Close()
		}
	})
}

func (w *Watcher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.done:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if err != nil {
				w.logger.Debug("watcher error", zap.Error(err))
			}
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	root, ok := w.rootFor(ev.Name)
	if !ok {
		return
	}

	switch {
	case ev.Op.Has(fsnotify.Create):
		// A new directory needs its own watch before changes inside it
		// are visible.
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if w.filter.IgnoreDir(filepath.Base(ev.Name)) {
				return
			}
			w.mu.Lock()
			fsw := w.watcher
			w.mu.Unlock()
			if fsw != nil {
				if err := fsw.Add(ev.Name); err != nil {
					w.logger.Debug("watch add failed", zap.String("path", ev.Name), zap.Error(err))
				}
			}
		}
		w.scheduleChange(root, ev)
	case ev.Op.Has(fsnotify.Write), ev.Op.Has(fsnotify.Remove), ev.Op.Has(fsnotify.Rename):
		w.scheduleChange(root, ev)
	}
}

func (w *Watcher) scheduleChange(root string, ev fsnotify.Event) {
	if w.filter.IgnoreFile(filepath.Base(ev.Name)) {
		return
	}
	w.logger.Debug("change detected",
		zap.String("root", root),
		zap.String("op", ev.Op.String()),
		zap.String("path", ev.Name))

	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.timers[root]; ok {
		t.Stop()
	}
	w.timers[root] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, root)
		_, stillWatched := w.roots[root]
		w.mu.Unlock()
		if stillWatched && w.onChange != nil {
			w.onChange(root)
		}
	})
}

// rootFor maps an event path to its registered repo root.
func (w *Watcher) rootFor(path string) (string, bool) {
	clean := filepath.Clean(path)
	w.mu.Lock()
	defer w.mu.Unlock()
	for root := range w.roots {
		if clean == root || strings.HasPrefix(clean, root+string(filepath.Separator)) {
			return root, true
		}
	}
	return "", false
}
