// Package debounce runs a task after a quiet period. Every new trigger
// cancels the pending task and schedules a fresh one, so only the last
// task scheduled within a burst ever runs.
package debounce

import (
	"sync"
	"time"
)

// Debouncer holds at most one pending task.
type Debouncer struct {
	mu      sync.Mutex
	wait    time.Duration
	timer   *time.Timer
	gen     uint64
	pending bool

	// OnCancel, when set, is called each time a pending task is replaced
	// or cancelled before it ran.
	OnCancel func()
}

// New returns a debouncer with the given quiescence window.
func New(wait time.Duration) *Debouncer {
	return &Debouncer{wait: wait}
}

// Wait returns the current quiescence window.
func (d *Debouncer) Wait() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.wait
}

// SetWait changes the window for tasks scheduled from now on.
func (d *Debouncer) SetWait(wait time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.wait = wait
}

// Trigger cancels any pending task and schedules fn to run once the window
// elapses without another Trigger or Cancel.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	cancelled := d.stopLocked()
	d.gen++
	gen := d.gen
	d.pending = true
	d.timer = time.AfterFunc(d.wait, func() {
		d.mu.Lock()
		// A timer that fired while being replaced must not run.
		if gen != d.gen || !d.pending {
			d.mu.Unlock()
			return
		}
		d.pending = false
		d.timer = nil
		d.mu.Unlock()
		fn()
	})
	onCancel := d.OnCancel
	d.mu.Unlock()

	if cancelled && onCancel != nil {
		onCancel()
	}
}

// Cancel drops the pending task, if any. It reports whether one was dropped.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	cancelled := d.stopLocked()
	d.gen++
	onCancel := d.OnCancel
	d.mu.Unlock()

	if cancelled && onCancel != nil {
		onCancel()
	}
	return cancelled
}

// Pending reports whether a task is scheduled and has not started.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

func (d *Debouncer) stopLocked() bool {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	was := d.pending
	d.pending = false
	return was
}
