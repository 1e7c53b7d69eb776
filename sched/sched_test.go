package sched

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"sortixkernel/proc"
	"sortixkernel/thread"
)

func newTestThread(t *testing.T, id uint64) *thread.Thread {
	t.Helper()
	table := proc.NewTable()
	p := proc.New(table, "/bin/test")
	return thread.New(p, id)
}

func TestScheduleFallsBackToIdleWhenEmpty(t *testing.T) {
	idle := newTestThread(t, 0)
	s := New(0, idle)
	require.Same(t, idle, s.Schedule(), "empty run queue should schedule the idle thread")
}

func TestEnqueueThenScheduleRunsIt(t *testing.T) {
	idle := newTestThread(t, 0)
	th := newTestThread(t, 1)
	s := New(0, idle)
	s.Enqueue(th)

	require.Same(t, th, s.Schedule())
	require.Equal(t, thread.Runnable, th.State())
}

func TestTickRotatesAfterQuantumExpiry(t *testing.T) {
	idle := newTestThread(t, 0)
	a := newTestThread(t, 1)
	b := newTestThread(t, 2)
	s := New(10*time.Millisecond, idle)
	s.Enqueue(a)
	s.Enqueue(b)
	s.Schedule()

	require.False(t, s.Tick(5*time.Millisecond), "quantum not yet exhausted, should not rotate")
	require.Same(t, a, s.Current(), "thread a should still be current before quantum expiry")

	require.True(t, s.Tick(6*time.Millisecond), "quantum exhausted, expected rotation")
	require.Same(t, b, s.Current(), "expected round-robin rotation to thread b")
}

func TestDequeueRemovesFromRunQueue(t *testing.T) {
	idle := newTestThread(t, 0)
	a := newTestThread(t, 1)
	s := New(0, idle)
	s.Enqueue(a)
	s.Dequeue(a)

	require.Equal(t, 0, s.Len())
	require.Same(t, idle, s.Schedule(), "after dequeuing the only thread, should fall back to idle")
}
