package util

import (
	"sync"
	"time"
)

// Debouncer runs the latest triggered action once input has been quiet for
// the configured delay.
type Debouncer struct {
	delay time.Duration
	mu    sync.Mutex
	timer *time.Timer
	seq   uint64
}

func NewDebouncer(delay time.Duration) *Debouncer {
	if delay < 0 {
		delay = 0
	}
	return &Debouncer{delay: delay}
}

// Trigger replaces any pending action with fn.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}

	d.seq++
	seq := d.seq
	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		if seq != d.seq {
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.mu.Unlock()

		fn()
	})
}

// Cancel drops the pending action, if any.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.seq++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}
