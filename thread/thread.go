// Package thread implements the per-thread execution state: the
// owning process, the saved register frame, stack/TLS regions, and
// the scheduler-visible state machine (NONE/RUNNABLE/BLOCKING/DEAD) a
// scheduler moves a Thread through.
//
// Grounded on the interlock/refcount idioms shared with the rest of
// this tree (the reference kernel's thread.cpp/scheduler.cpp were not
// part of the retrieved source set, so the register-frame and
// stack-region shape below is this package's own, in that idiom).
package thread

import (
	"sync"
	"time"

	"sortixkernel/clock"
	"sortixkernel/internal/interlock"
	"sortixkernel/kernelerr"
	"sortixkernel/proc"
	"sortixkernel/signal"
)

// State is a thread's scheduler-visible state.
type State int

const (
	// None is the zero value: a Thread not yet handed to a scheduler.
	None State = iota
	// Runnable threads sit on a scheduler's run queue awaiting a
	// quantum.
	Runnable
	// Blocking threads are parked on some wait condition (a pipe, a
	// poll.Node, a Wait call) and are not scheduled until woken.
	Blocking
	// Stopped threads are job-control stopped (spec.md §4.8: "Stopping
	// moves all threads of the process to a STOPPED state"), driven by
	// Process.Stop/Continue through the StopController methods below.
	// A stopped thread leaves this state only via Continue.
	Stopped
	// Dead threads have exited and are waiting to be reaped.
	Dead
)

// Registers is a placeholder for the saved CPU register frame a real
// kernel context-switches through; this simulation never executes
// user instructions, so it only needs to exist as state that Fork
// (copy) and context switches (swap) touch.
type Registers struct {
	PC, SP uintptr
}

// StackRegion describes one mapped stack (kernel or user) by its
// address-space extent; actual backing storage is AddressSpace's
// concern, not the thread's.
type StackRegion struct {
	Base, Size uintptr
}

// Thread is one schedulable unit of execution within a Process.
type Thread struct {
	mu sync.Mutex

	id      uint64
	Process *proc.Process

	Regs       Registers
	KernelStack StackRegion
	UserStack   StackRegion
	TLS         StackRegion

	CPUClock *clock.Clock
	SysClock *clock.Clock

	sigMask   signal.Set
	sigPending signal.Set
	sigFrames []SignalFrame

	state     State
	preStopState State
	prev, next *Thread

	waitReason string

	refs int32
}

// SignalFrame is the saved register frame and mask DeliverSignal
// pushes before diverting a thread into a caught handler; Sigreturn
// pops and restores it, implementing the sigreturn trampoline a
// handler's epilogue invokes to unwind back to the interrupted
// context (spec.md §4.8's delivery/return cycle).
type SignalFrame struct {
	Regs    Registers
	SigMask signal.Set
}

var nextID uint64

// New creates a Thread owned by p, in state None until a scheduler
// calls SetState(Runnable).
func New(p *proc.Process, id uint64) *Thread {
	t := &Thread{
		id:       id,
		Process:  p,
		CPUClock: clock.New(clock.ID(200), time.Nanosecond),
		SysClock: clock.New(clock.ID(201), time.Nanosecond),
		refs:     1,
	}
	p.AddThread(t)
	return t
}

// ID returns the thread's identifier, unique within its process.
func (t *Thread) ID() uint64 { return t.id }

// State returns the thread's current scheduler state.
func (t *Thread) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// SetState transitions the thread to state, the operation
// sched.Scheduler calls to move a thread on or off its run queue.
func (t *Thread) SetState(state State, reason string) {
	t.mu.Lock()
	t.state = state
	t.waitReason = reason
	t.mu.Unlock()
}

// WaitReason returns the human-readable reason the thread last
// blocked, for diagnostics (e.g. "pipe.Read", "Process.Wait").
func (t *Thread) WaitReason() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.waitReason
}

// SignalMask returns the thread's blocked-signal set (sigprocmask).
func (t *Thread) SignalMask() signal.Set {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sigMask
}

// SetSignalMask overwrites the thread's blocked-signal set.
func (t *Thread) SetSignalMask(mask signal.Set) {
	t.mu.Lock()
	t.sigMask = mask
	t.mu.Unlock()
}

// RaisePending sets n pending on this specific thread (as opposed to
// proc.Process.Raise, which is process-directed and may be picked up
// by any thread that doesn't block it).
func (t *Thread) RaisePending(n signal.Num) {
	t.mu.Lock()
	t.sigPending.Add(n)
	t.mu.Unlock()
}

// Deliverable returns the next signal this thread should act on,
// merging its own pending set with its process's process-directed
// pending set.
func (t *Thread) Deliverable() (signal.Num, signal.Action, bool) {
	t.mu.Lock()
	pending := t.sigPending.Or(t.Process.Pending())
	blocked := t.sigMask
	t.mu.Unlock()
	return signal.Deliverable(pending, blocked, t.Process.Signals)
}

// ClearPending clears n, checking both the thread-local and the
// process-directed pending sets so delivery is idempotent regardless
// of which one the signal arrived through.
func (t *Thread) ClearPending(n signal.Num) {
	t.mu.Lock()
	t.sigPending.Del(n)
	t.mu.Unlock()
	t.Process.ClearPending(n)
}

// DeliverSignal checks for a signal this thread should currently act
// on and, if one is caught by an installed handler, diverts the
// thread into it: pushes a SignalFrame saving the interrupted Regs
// and mask, widens the mask to signal.MaskForHandler's "(current ∪
// handler-mask ∪ {sig} unless SA_NODEFER)", resets the disposition to
// SIG_DFL first when SA_RESETHAND is set, and points Regs.PC at the
// handler entry so the thread's next resumption runs it. A
// default-dispositioned stop/continue/terminate signal, or one
// ignored outright, is resolved here too but does not divert control
// flow, so those cases report false. Reports whether a handler frame
// was entered.
func (t *Thread) DeliverSignal() bool {
	sig, action, ok := t.Deliverable()
	if !ok {
		return false
	}

	switch action.Disposition() {
	case signal.DispIgnore:
		t.ClearPending(sig)
		return false

	case signal.DispHandler:
		t.mu.Lock()
		t.sigFrames = append(t.sigFrames, SignalFrame{Regs: t.Regs, SigMask: t.sigMask})
		t.sigMask = signal.MaskForHandler(t.sigMask, action, sig)
		t.Regs.PC = action.Handler
		t.mu.Unlock()
		if action.ResetToDefault() {
			t.Process.Signals.Set(sig, signal.Action{})
		}
		t.ClearPending(sig)
		return true

	default: // DispDefault
		t.ClearPending(sig)
		switch {
		case signal.IsStopSignal(sig):
			t.Process.Stop(sig)
		case signal.IsContSignal(sig):
			t.Process.Continue()
		case signal.TerminatesDefault(sig):
			t.Process.Exit(proc.SignaledStatus(int(sig)))
		}
		return false
	}
}

// Sigreturn implements the sigreturn(2) trampoline a handler's
// epilogue calls to unwind: pops the most recently pushed
// SignalFrame, restoring the pre-signal Regs and mask. Returns
// EINVAL, matching the real syscall, if no handler frame is
// outstanding (sigreturn called without a matching delivery).
func (t *Thread) Sigreturn() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := len(t.sigFrames)
	if n == 0 {
		return kernelerr.New("Thread.Sigreturn", kernelerr.EINVAL)
	}
	frame := t.sigFrames[n-1]
	t.sigFrames = t.sigFrames[:n-1]
	t.Regs = frame.Regs
	t.sigMask = frame.SigMask
	return nil
}

// Stop implements the proc.StopController half of spec.md §4.8's
// STOP transition: moves the thread to Stopped, remembering its prior
// state so Continue can restore it.
func (t *Thread) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == Stopped || t.state == Dead {
		return
	}
	t.preStopState = t.state
	t.state = Stopped
}

// Continue implements the proc.StopController half of SIGCONT's
// default action: a Stopped thread returns to the state it was in
// before Stop (Runnable, matching spec.md §4.8: "SIGCONT moves them
// back to RUNNABLE" for the common case of a runnable thread);
// anything else is a no-op.
func (t *Thread) Continue() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != Stopped {
		return
	}
	t.state = t.preStopState
}

// Refer increments the thread's reference count (e.g. while a
// scheduler run queue and a poll.Node both point at it).
func (t *Thread) Refer() {
	interlock.Increment(&t.refs)
}

// Unref decrements the reference count and reports whether it reached
// zero.
func (t *Thread) Unref() bool {
	return interlock.Decrement(&t.refs).New == 0
}
