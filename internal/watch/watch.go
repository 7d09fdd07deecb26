// Package watch implements ScriptWatcher: a debounced, coalescing
// file-change trigger that re-invokes a callback (normally
// script.Engine.Run) after a quiet period, or immediately on a manual
// trigger such as F5.
//
// Grounded on the teacher's FileWatcher (filewatcher_unix.go/
// filewatcher_darwin.go/filewatcher_windows.go): same per-OS event
// source split, same per-path debounce timer via time.AfterFunc. The
// teacher's debounce restarts the timer on every event and lets
// concurrent runs overlap; this package adds the single-pending-run
// coalescing and manual-trigger bypass the specification requires, and
// shortens the window from the teacher's 500ms to 400ms.
package watch

import (
	"sync"
	"time"
)

const defaultDebounce = 400 * time.Millisecond

// eventSource is implemented per-OS (inotify, kqueue, or mtime
// polling) and delivers raw change notifications to onEvent.
type eventSource interface {
	Close() error
}

// Watcher debounces file-change events for a single path and
// coalesces re-runs: if run is already executing when the debounce
// timer fires, at most one further run is queued rather than starting
// a second one concurrently.
type Watcher struct {
	debounce time.Duration
	run      func()

	mu      sync.Mutex
	timer   *time.Timer
	running bool
	pending bool

	source eventSource
}

// New creates a Watcher for path that calls run after every debounced
// change. Run the returned Watcher's Close when done watching.
func New(path string, run func()) (*Watcher, error) {
	w := &Watcher{debounce: defaultDebounce, run: run}
	src, err := newEventSource(path, w.onEvent)
	if err != nil {
		return nil, err
	}
	w.source = src
	return w, nil
}

// onEvent is called by the platform event source on every detected
// change; it (re)starts the debounce timer.
func (w *Watcher) onEvent() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.fire)
}

// Trigger bypasses debouncing for a manual re-run request (F5 or
// equivalent), subject to the same coalescing as a debounced fire.
func (w *Watcher) Trigger() {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.mu.Unlock()
	w.fire()
}

func (w *Watcher) fire() {
	w.mu.Lock()
	if w.running {
		w.pending = true
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	w.runOnce()
}

func (w *Watcher) runOnce() {
	w.run()

	w.mu.Lock()
	rerun := w.pending
	w.pending = false
	if !rerun {
		w.running = false
	}
	w.mu.Unlock()

	if rerun {
		w.runOnce()
	}
}

// Close releases the underlying platform event source and stops any
// pending debounce timer.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	if w.source != nil {
		return w.source.Close()
	}
	return nil
}
