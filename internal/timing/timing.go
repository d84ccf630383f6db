// Package timing holds debounce and throttle state machines. They never start
// goroutines or timers themselves; callers schedule the wake-up (for example
// with tea.Tick) and report back.
package timing

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Debouncer collapses a burst of triggers into one trailing call.
type Debouncer struct {
	clock clockwork.Clock
	delay time.Duration

	mu       sync.Mutex
	seq      uint64
	pending  bool
	deadline time.Time
}

// NewDebouncer returns a trailing debouncer. A nil clock uses wall time.
func NewDebouncer(clock clockwork.Clock, delay time.Duration) *Debouncer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Debouncer{clock: clock, delay: delay}
}

// Trigger records a new event and returns its token plus how long the caller
// should wait before calling Fire with it.
func (d *Debouncer) Trigger() (uint64, time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	d.pending = true
	d.deadline = d.clock.Now().Add(d.delay)
	return d.seq, d.delay
}

// Fire reports whether the trailing call for seq should run now. Only the
// latest token fires, and only once its quiet period has elapsed.
func (d *Debouncer) Fire(seq uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.pending || seq != d.seq {
		return false
	}
	if d.clock.Now().Before(d.deadline) {
		return false
	}
	d.pending = false
	return true
}

// Pending reports whether a trailing call is outstanding.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// Cancel drops any outstanding call.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending = false
}

// Throttler lets at most one call through per interval, on the leading edge.
type Throttler struct {
	clock    clockwork.Clock
	interval time.Duration

	mu   sync.Mutex
	last time.Time
	used bool
}

// NewThrottler returns a leading-edge throttler. A nil clock uses wall time.
func NewThrottler(clock clockwork.Clock, interval time.Duration) *Throttler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Throttler{clock: clock, interval: interval}
}

// Allow reports whether a call may proceed now and, if so, starts a new
// interval.
func (t *Throttler) Allow() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.clock.Now()
	if t.used && now.Sub(t.last) < t.interval {
		return false
	}
	t.last = now
	t.used = true
	return true
}

// Remaining returns how long until Allow would next succeed.
func (t *Throttler) Remaining() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.used {
		return 0
	}
	left := t.interval - t.clock.Since(t.last)
	if left < 0 {
		return 0
	}
	return left
}
