package service

import (
	"sync"
	"time"
)

// ─────────────────────────────────────────────────────────────
// Debouncer — trailing-edge, single pending slot
// ─────────────────────────────────────────────────────────────

// Debouncer runs the most recently scheduled function once the quiet period
// has elapsed without another Schedule. At most one function is pending.
type Debouncer struct {
	delay time.Duration

	mu    sync.Mutex
	timer *time.Timer
	fn    func()
	gen   uint64

	// held while a function runs so Cancel and Flush can wait it out
	runMu sync.Mutex
}

func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Schedule replaces any pending function with fn and restarts the quiet period.
func (d *Debouncer) Schedule(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.fn = fn
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen) })
}

func (d *Debouncer) fire(gen uint64) {
	d.runMu.Lock()
	defer d.runMu.Unlock()

	d.mu.Lock()
	if gen != d.gen || d.fn == nil {
		d.mu.Unlock()
		return
	}
	fn := d.fn
	d.fn = nil
	d.timer = nil
	d.mu.Unlock()

	fn()
}

// Cancel drops the pending function, if any, and waits for a run already in
// progress. It reports whether something was pending.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	pending := d.takeLocked() != nil
	d.mu.Unlock()

	d.runMu.Lock()
	d.runMu.Unlock()
	return pending
}

// Flush runs the pending function now, on the caller's goroutine.
// It reports whether something ran.
func (d *Debouncer) Flush() bool {
	d.runMu.Lock()
	defer d.runMu.Unlock()

	d.mu.Lock()
	fn := d.takeLocked()
	d.mu.Unlock()

	if fn == nil {
		return false
	}
	fn()
	return true
}

// Pending reports whether a function is waiting for its quiet period.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fn != nil
}

func (d *Debouncer) takeLocked() func() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
	fn := d.fn
	d.fn = nil
	return fn
}
