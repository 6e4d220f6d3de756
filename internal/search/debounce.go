package search

import (
	"sync"
	"time"
)

// DefaultQuietWindow is how long input must pause before a debounced
// search fires.
const DefaultQuietWindow = 100 * time.Millisecond

// Debouncer coalesces rapid triggers into a single callback fired once
// input pauses for the quiet window. Safe for concurrent use.
type Debouncer struct {
	window time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

// NewDebouncer creates a debouncer with the given quiet window; zero
// selects DefaultQuietWindow.
func NewDebouncer(window time.Duration) *Debouncer {
	if window <= 0 {
		window = DefaultQuietWindow
	}
	return &Debouncer{window: window}
}

// Trigger schedules fn to run after the quiet window, replacing any
// previously scheduled call.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, fn)
}

// Stop cancels any pending call.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
