package clock

import "time"

// Registry holds the kernel-wide clock singletons (MONOTONIC,
// REALTIME, BOOT, INIT). Per-process/per-thread CPU and SYS clocks
// are owned by proc.Process/thread.Thread instead, each its own
// *Clock built with New.
type Registry struct {
	Monotonic *Clock
	Realtime  *Clock
	Boot      *Clock
	Init      *Clock
}

// NewRegistry constructs the four global clocks with a 1ns
// resolution, matching a tickless high-resolution timer source.
func NewRegistry() *Registry {
	return &Registry{
		Monotonic: New(Monotonic, time.Nanosecond),
		Realtime:  New(Realtime, time.Nanosecond),
		Boot:      New(Boot, time.Nanosecond),
		Init:      New(Init, time.Nanosecond),
	}
}

// Advance drives every global clock forward by duration, the
// equivalent of a hardware timer tick.
func (r *Registry) Advance(duration time.Duration) {
	r.Monotonic.Advance(duration)
	r.Realtime.Advance(duration)
	r.Boot.Advance(duration)
	r.Init.Advance(duration)
}

// Close stops every global clock's worker goroutine.
func (r *Registry) Close() {
	r.Monotonic.Close()
	r.Realtime.Close()
	r.Boot.Close()
	r.Init.Close()
}
