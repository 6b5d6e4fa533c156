// Package watcher observes the prompt and workflow layer roots for
// filesystem changes, debounces and coalesces them per path, and
// publishes {created, modified, deleted} events once the change set has
// stabilized. Grounded on github.com/fsnotify/fsnotify (declared in the
// teacher's go.mod though not used directly there — see DESIGN.md); the
// debounce/coalesce loop and shutdown drain are modeled on the teacher's
// general goroutine+channel+WaitGroup shutdown idiom
// (internal/mcp/transport_stdio.go's Disconnect()).
package watcher

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"swissarmyhammer/internal/errs"
	"swissarmyhammer/internal/logging"
)

// EventKind classifies a coalesced filesystem change.
type EventKind string

const (
	Created  EventKind = "created"
	Modified EventKind = "modified"
	Deleted  EventKind = "deleted"
)

// Event is one coalesced, debounced change notification.
type Event struct {
	Kind EventKind
	Path string
}

// Watcher watches a set of root directories and delivers debounced,
// per-path-coalesced change batches to a callback.
type Watcher struct {
	fsw      *fsnotify.Watcher
	debounce time.Duration
	onStable func([]Event)

	mu      sync.Mutex
	pending map[string]Event
	timer   *time.Timer

	stopCh   chan struct{}
	doneCh   chan struct{}
	reloadWG sync.WaitGroup
}

// New creates a Watcher over roots (each walked recursively at start and
// whenever a new subdirectory appears). debounce <= 0 defaults to 200ms,
// per §4.9.
func New(roots []string, debounce time.Duration, onStable func([]Event)) (*Watcher, error) {
	if debounce <= 0 {
		debounce = 200 * time.Millisecond
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errs.Wrap(errs.IO, "watcher.New", err)
	}

	w := &Watcher{
		fsw:      fsw,
		debounce: debounce,
		onStable: onStable,
		pending:  make(map[string]Event),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}

	for _, root := range roots {
		if err := w.addRecursive(root); err != nil {
			logging.Get(logging.CategoryWatcher).Warn("watcher: failed to watch root %s: %v", root, err)
		}
	}

	return w, nil
}

func (w *Watcher) addRecursive(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		// Root may not exist yet (e.g. no local prompts dir until first
		// use); that's not fatal, just nothing to watch there yet.
		return nil
	}
	if !info.IsDir() {
		return w.fsw.Add(filepath.Dir(root))
	}
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if addErr := w.fsw.Add(path); addErr != nil {
				logging.WatcherDebug("watcher: add %s failed: %v", path, addErr)
			}
		}
		return nil
	})
}

// Start launches the event loop in a background goroutine.
func (w *Watcher) Start() {
	go w.run()
}

func (w *Watcher) run() {
	defer close(w.doneCh)
	for {
		select {
		case <-w.stopCh:
			w.flush()
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logging.Get(logging.CategoryWatcher).Error("watcher: fsnotify error: %v", err)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if ev.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			_ = w.fsw.Add(ev.Name)
		}
	}

	kind := Modified
	switch {
	case ev.Op&fsnotify.Create != 0:
		kind = Created
	case ev.Op&fsnotify.Remove != 0, ev.Op&fsnotify.Rename != 0:
		kind = Deleted
	}

	w.mu.Lock()
	if prev, ok := w.pending[ev.Name]; ok && prev.Kind == Created && kind == Modified {
		// A write that follows a create in the same window is still a creation.
		kind = Created
	}
	w.pending[ev.Name] = Event{Kind: kind, Path: ev.Name}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.stabilize)
	w.mu.Unlock()
}

func (w *Watcher) stabilize() {
	w.mu.Lock()
	if len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}
	events := make([]Event, 0, len(w.pending))
	for _, e := range w.pending {
		events = append(events, e)
	}
	w.pending = make(map[string]Event)
	w.mu.Unlock()

	logging.WatcherDebug("watcher: %d paths stabilized, invoking reload callback", len(events))
	if w.onStable == nil {
		return
	}
	w.reloadWG.Add(1)
	defer w.reloadWG.Done()
	w.onStable(events)
}

func (w *Watcher) flush() {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	hasPending := len(w.pending) > 0
	w.mu.Unlock()
	if hasPending {
		w.stabilize()
	}
}

// Stop flushes any pending debounce window, joins in-flight reload
// callbacks, and closes the underlying fsnotify watcher.
func (w *Watcher) Stop() error {
	close(w.stopCh)
	<-w.doneCh
	w.reloadWG.Wait()
	return w.fsw.Close()
}
