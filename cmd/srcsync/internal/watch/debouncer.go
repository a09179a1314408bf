// Package watch re-syncs groups when files under their roots appear or
// disappear.
package watch

import (
	"sync"
	"time"

	"github.com/albertocavalcante/srcsync/pkg/util"
)

// MaxPending is the number of pending keys that forces an immediate flush.
const MaxPending = 1000

// Debouncer coalesces bursts of events into one batch of keys (group names).
// A batch is delivered once no new key has arrived for the window.
type Debouncer struct {
	mu      sync.Mutex
	pending map[string]struct{}
	timer   *time.Timer
	window  time.Duration
	onFlush func(keys []string)
	stopped bool
}

// NewDebouncer creates a debouncer. onFlush receives the sorted, distinct
// keys of each batch and is never called with the lock held.
func NewDebouncer(window time.Duration, onFlush func(keys []string)) *Debouncer {
	return &Debouncer{
		pending: make(map[string]struct{}),
		window:  window,
		onFlush: onFlush,
	}
}

// Add records key and restarts the window.
func (d *Debouncer) Add(key string) {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}

	d.pending[key] = struct{}{}
	d.stopTimerLocked()

	if len(d.pending) >= MaxPending {
		keys := d.drainLocked()
		d.mu.Unlock()
		d.deliver(keys)
		return
	}

	// A timer that already fired may still run flush; it finds nothing
	// pending or picks up this key early, both harmless.
	d.timer = time.AfterFunc(d.window, d.flush)
	d.mu.Unlock()
}

func (d *Debouncer) flush() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	keys := d.drainLocked()
	d.mu.Unlock()
	d.deliver(keys)
}

// FlushNow delivers pending keys without waiting for the window.
func (d *Debouncer) FlushNow() {
	d.mu.Lock()
	d.stopTimerLocked()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	keys := d.drainLocked()
	d.mu.Unlock()
	d.deliver(keys)
}

// Stop delivers anything pending and ignores later Adds.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	d.stopped = true
	d.stopTimerLocked()
	keys := d.drainLocked()
	d.mu.Unlock()
	d.deliver(keys)
}

// PendingCount returns the number of keys waiting to be flushed.
func (d *Debouncer) PendingCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

func (d *Debouncer) stopTimerLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// drainLocked empties pending. Caller must hold d.mu.
func (d *Debouncer) drainLocked() []string {
	if len(d.pending) == 0 {
		return nil
	}
	keys := util.SortedKeys(d.pending)
	d.pending = make(map[string]struct{})
	return keys
}

func (d *Debouncer) deliver(keys []string) {
	if len(keys) > 0 && d.onFlush != nil {
		d.onFlush(keys)
	}
}
