package state

import (
	"sync"
	"time"
)

// DefaultDebounce is the quiet period before a structured filter change is fetched.
const DefaultDebounce = 300 * time.Millisecond

// Debouncer runs only the last function triggered within its quiet period.
type Debouncer struct {
	delay time.Duration
	after AfterFunc

	mu   sync.Mutex
	gen  uint64
	stop func() bool
}

// NewDebouncer creates a debouncer. after may be nil to use real timers.
func NewDebouncer(delay time.Duration, after AfterFunc) *Debouncer {
	return &Debouncer{delay: delay, after: orRealTimers(after)}
}

// Trigger cancels any pending call and schedules fn after the quiet period.
//
// The timer is created without holding the lock, so an [AfterFunc] may run its callback
// before returning.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	d.cancelLocked()
	d.gen++
	gen := d.gen
	d.mu.Unlock()

	stop := d.after(d.delay, func() {
		d.mu.Lock()
		if gen != d.gen {
			d.mu.Unlock()
			return
		}
		d.gen++
		d.stop = nil
		d.mu.Unlock()
		fn()
	})

	d.mu.Lock()
	defer d.mu.Unlock()
	if gen != d.gen {
		// Already ran, or replaced by a newer Trigger or Cancel.
		stop()
		return
	}
	d.stop = stop
}

// Cancel drops the pending call and reports whether there was one.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	return d.cancelLocked()
}

// Pending reports whether a call is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stop != nil
}

func (d *Debouncer) cancelLocked() bool {
	if d.stop == nil {
		return false
	}
	stopped := d.stop()
	d.stop = nil
	return stopped
}
