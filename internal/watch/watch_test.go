package watch

import (
	"sync"
	"testing"
	"time"
)

// stubSource lets tests drive onEvent directly without touching a
// real filesystem watch.
type stubSource struct{}

func (stubSource) Close() error { return nil }

func newTestWatcher(t *testing.T, run func()) *Watcher {
	t.Helper()
	w := &Watcher{debounce: 30 * time.Millisecond, run: run, source: stubSource{}}
	return w
}

func TestWatcherDebouncesBurstOfEventsIntoOneRun(t *testing.T) {
	var mu sync.Mutex
	runs := 0
	done := make(chan struct{}, 1)

	w := newTestWatcher(t, func() {
		mu.Lock()
		runs++
		mu.Unlock()
		select {
		case done <- struct{}{}:
		default:
		}
	})

	for i := 0; i < 5; i++ {
		w.onEvent()
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for debounced run")
	}
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if runs != 1 {
		t.Fatalf("runs = %d, want 1", runs)
	}
}

func TestWatcherCoalescesRerunRequestedDuringRun(t *testing.T) {
	var mu sync.Mutex
	runs := 0
	release := make(chan struct{})
	started := make(chan struct{}, 2)

	w := newTestWatcher(t, func() {
		mu.Lock()
		runs++
		mu.Unlock()
		started <- struct{}{}
		<-release
	})

	go w.fire()
	<-started // first run is now blocked on release

	w.fire() // should coalesce into a pending rerun, not run concurrently
	w.fire() // a second coalesce request should not queue a third run

	close(release)
	<-started // second (coalesced) run begins and returns immediately

	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	if runs != 2 {
		t.Fatalf("runs = %d, want 2 (one running, one coalesced)", runs)
	}
}

func TestWatcherTriggerBypassesDebounce(t *testing.T) {
	ran := make(chan struct{}, 1)
	w := newTestWatcher(t, func() { ran <- struct{}{} })
	w.debounce = time.Hour // would never fire on its own within the test

	w.Trigger()

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("Trigger did not bypass the debounce window")
	}
}
