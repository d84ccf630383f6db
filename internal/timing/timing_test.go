package timing

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

func TestDebouncerFiresOnlyLatest(t *testing.T) {
	clock := clockwork.NewFakeClock()
	d := NewDebouncer(clock, 300*time.Millisecond)

	first, wait := d.Trigger()
	if wait != 300*time.Millisecond {
		t.Fatalf("wait = %v", wait)
	}
	clock.Advance(100 * time.Millisecond)
	second, _ := d.Trigger()

	clock.Advance(250 * time.Millisecond)
	if d.Fire(first) {
		t.Fatal("stale token must not fire")
	}
	if d.Fire(second) {
		t.Fatal("latest token fired before its quiet period")
	}

	clock.Advance(50 * time.Millisecond)
	if !d.Fire(second) {
		t.Fatal("latest token should fire after the quiet period")
	}
	if d.Fire(second) {
		t.Fatal("token fired twice")
	}
	if d.Pending() {
		t.Fatal("nothing should be pending after firing")
	}
}

func TestDebouncerCancel(t *testing.T) {
	clock := clockwork.NewFakeClock()
	d := NewDebouncer(clock, time.Second)
	seq, _ := d.Trigger()
	d.Cancel()
	clock.Advance(2 * time.Second)
	if d.Fire(seq) {
		t.Fatal("cancelled call fired")
	}
}

func TestThrottlerLeadingEdge(t *testing.T) {
	clock := clockwork.NewFakeClock()
	th := NewThrottler(clock, time.Second)

	if th.Remaining() != 0 {
		t.Fatal("fresh throttler should be ready")
	}
	if !th.Allow() {
		t.Fatal("first call should pass")
	}
	if th.Allow() {
		t.Fatal("second call inside the interval should be dropped")
	}

	clock.Advance(400 * time.Millisecond)
	if got := th.Remaining(); got != 600*time.Millisecond {
		t.Fatalf("Remaining = %v", got)
	}

	clock.Advance(600 * time.Millisecond)
	if !th.Allow() {
		t.Fatal("call after the interval should pass")
	}
}
