package clock

import "time"

// Flags is the Timer.flags bitset from
// original_source/kernel/include/sortix/kernel/timer.h.
type Flags uint32

const (
	Absolute             Flags = 1 << 0 // TIMER_ABSOLUTE
	Active               Flags = 1 << 1 // TIMER_ACTIVE
	Firing               Flags = 1 << 2 // TIMER_FIRING
	FuncInterruptHandler Flags = 1 << 3 // TIMER_FUNC_INTERRUPT_HANDLER
	FuncAdvanceThread    Flags = 1 << 4 // TIMER_FUNC_ADVANCE_THREAD
)

// Spec is the itimerspec equivalent: an initial value and a repeat
// interval. A zero Value disarms the timer; a zero Interval makes it
// one-shot.
type Spec struct {
	Value    time.Duration
	Interval time.Duration
}

// Callback runs when a Timer fires. user is the cookie passed to Set.
type Callback func(c *Clock, t *Timer, user interface{})

// Timer is a one-shot or periodic action triggered by a Clock.
//
// Deadlines are tracked as absolute instants on the owning clock's
// time axis for both TIMER_ABSOLUTE and relative (delay) timers: the
// original chains delay timers by remaining-time-from-previous and
// re-subtracts on every tick, but that is an implementation detail of
// a singly-resolution C linked list, not an externally observable
// behavior; collapsing both kinds to one absolute-deadline representation
// preserves firing order and overrun accounting while letting
// Set/Cancel/Advance share one sorted-list implementation (see
// list.go:timerList).
type Timer struct {
	clock    *Clock
	deadline time.Duration
	value    Spec
	flags    Flags

	callback Callback
	user     interface{}

	overrun          uint64
	firingsScheduled uint64

	absolute bool // which of the clock's two lists this belongs to
	seq      uint64

	prev, next *Timer // list links, owning list's private state
}

// Overrun returns the total number of missed periodic firings folded
// into this timer's deliveries so far (num_overrun_events); the count
// accumulates and is not reset by a later on-time delivery.
func (t *Timer) Overrun() uint64 {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	return t.overrun
}

// FiringsScheduled returns the number of times this timer has fired.
func (t *Timer) FiringsScheduled() uint64 {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	return t.firingsScheduled
}

// Clock returns the timer's attached clock, or nil if detached.
func (t *Timer) Clock() *Clock {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.flags&Active == 0 {
		return nil
	}
	return t.clock
}

// Get reports the timer's current value as an itimerspec: the
// remaining time until next expiry (or, for an absolute timer, the
// absolute expiry) and the configured interval.
func (t *Timer) Get() Spec {
	c := t.clock
	c.mu.Lock()
	defer c.mu.Unlock()
	if t.flags&Active == 0 {
		return Spec{}
	}
	remaining := t.deadline - c.current
	if remaining < 0 {
		remaining = 0
	}
	if t.absolute {
		return Spec{Value: t.deadline, Interval: t.value.Interval}
	}
	return Spec{Value: remaining, Interval: t.value.Interval}
}

// Set atomically detaches, replaces value/interval/flags, and
// reattaches the timer to its clock's correct list, per Timer::Set
// in the original kernel. It returns the timer's previous value (the
// ovalue out-parameter in the original).
func (t *Timer) Set(value Spec, flags Flags, cb Callback, user interface{}) Spec {
	c := t.clock
	c.mu.Lock()
	defer c.mu.Unlock()

	old := Spec{}
	if t.flags&Active != 0 {
		old = t.valueLocked()
		c.detachLocked(t)
	}

	t.value = value
	t.flags = flags
	t.callback = cb
	t.user = user
	t.absolute = flags&Absolute != 0

	if value.Value == 0 {
		t.flags &^= Active
		return old
	}
	t.flags |= Active
	if t.absolute {
		t.deadline = value.Value
	} else {
		t.deadline = c.current + value.Value
	}
	c.attachLocked(t)
	return old
}

func (t *Timer) valueLocked() Spec {
	remaining := t.deadline - t.clock.current
	if remaining < 0 {
		remaining = 0
	}
	if t.absolute {
		return Spec{Value: t.deadline, Interval: t.value.Interval}
	}
	return Spec{Value: remaining, Interval: t.value.Interval}
}

// Cancel detaches the timer and blocks until any in-flight callback
// (dispatched to the clock's worker goroutine for
// FuncAdvanceThread timers) has completed, per Timer::Cancel.
func (t *Timer) Cancel() {
	c := t.clock
	c.mu.Lock()
	defer c.mu.Unlock()
	if t.flags&Active != 0 {
		c.detachLocked(t)
		t.flags &^= Active
	}
	for t.flags&Firing != 0 {
		c.firingDone.Wait()
	}
}
