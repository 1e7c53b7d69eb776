// Package sched implements a single-CPU round-robin scheduler over
// the RUNNABLE thread.Thread list: one circular queue, a fixed
// quantum, and an idle fallback when nothing is runnable.
//
// The idle/quantum vocabulary is general to Sortix-style kernels (no
// scheduler.cpp was part of the retrieved reference sources, so the
// queue shape below is this package's own, built in the idiom of the
// rest of the tree: a mutex-guarded struct with explicit next/prev
// links, matching clock's timerList).
package sched

import (
	"sync"
	"time"

	"sortixkernel/thread"
)

// DefaultQuantum is the CPU time a thread runs before Tick rotates
// the queue.
const DefaultQuantum = 10 * time.Millisecond

// runqNode is one queue slot: a thread plus its neighbors in the
// circular list, kept out of thread.Thread so a thread can move
// between schedulers (or off a scheduler entirely) without carrying
// stale link state.
type runqNode struct {
	th         *thread.Thread
	prev, next *runqNode
}

// Scheduler is a single CPU's run queue plus the currently running
// thread.
type Scheduler struct {
	mu sync.Mutex

	head    *runqNode // next thread to run
	current *runqNode

	byThread map[*thread.Thread]*runqNode

	quantum  time.Duration
	consumed time.Duration

	idle *thread.Thread
}

// New returns an empty scheduler with the given quantum (DefaultQuantum
// if zero) and idle fallback thread.
func New(quantum time.Duration, idle *thread.Thread) *Scheduler {
	if quantum == 0 {
		quantum = DefaultQuantum
	}
	return &Scheduler{
		quantum:  quantum,
		byThread: make(map[*thread.Thread]*runqNode),
		idle:     idle,
	}
}

// Enqueue adds th to the run queue and marks it Runnable, implementing
// SetThreadState(RUNNABLE) for a thread not previously scheduled.
func (s *Scheduler) Enqueue(th *thread.Thread) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byThread[th]; ok {
		return
	}
	n := &runqNode{th: th}
	if s.head == nil {
		n.next, n.prev = n, n
		s.head = n
	} else {
		tail := s.head.prev
		tail.next = n
		n.prev = tail
		n.next = s.head
		s.head.prev = n
	}
	s.byThread[th] = n
	th.SetState(thread.Runnable, "")
}

// Dequeue removes th from the run queue, e.g. because it is about to
// block or has exited.
func (s *Scheduler) Dequeue(th *thread.Thread) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.byThread[th]
	if !ok {
		return
	}
	delete(s.byThread, th)
	if s.current == n {
		s.current = nil
	}
	if n.next == n {
		s.head = nil
	} else {
		n.prev.next = n.next
		n.next.prev = n.prev
		if s.head == n {
			s.head = n.next
		}
	}
}

// Current returns the thread presently running, or the idle thread if
// the run queue is empty.
func (s *Scheduler) Current() *thread.Thread {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		return s.current.th
	}
	return s.idle
}

// Schedule returns the thread to run: the current thread if there is
// one; otherwise the queue head, which becomes current with a fresh
// quantum (e.g. after the previous thread left the queue); or the idle
// thread if the queue is empty. Schedule never rotates the queue;
// Tick does that on quantum expiry.
func (s *Scheduler) Schedule() *thread.Thread {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.head == nil {
		s.current = nil
		return s.idle
	}
	if s.current == nil {
		s.current = s.head
		s.consumed = 0
		return s.current.th
	}
	return s.current.th
}

// Tick advances the running thread's consumed quantum by d, rotating
// the run queue to the next thread once the quantum is exhausted.
// Returns true if a rotation (preemption) occurred.
func (s *Scheduler) Tick(d time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return false
	}
	s.consumed += d
	if s.consumed < s.quantum {
		return false
	}
	s.consumed = 0
	s.head = s.current.next
	s.current = s.head
	return true
}

// Len reports the number of runnable threads.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byThread)
}
