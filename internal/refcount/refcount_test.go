package refcount

import "testing"

type probe struct {
	Counted
	destroyedN int
}

func (p *probe) Destroy() { p.destroyedN++ }

func TestUnrefAtOneDestroys(t *testing.T) {
	p := &probe{}
	p.Init(p)
	p.Unref()
	if p.destroyedN != 1 {
		t.Fatalf("destroyedN = %d, want 1", p.destroyedN)
	}
}

func TestReferThenUnrefLeavesCountUnchanged(t *testing.T) {
	p := &probe{}
	p.Init(p)
	if got := p.Count(); got != 1 {
		t.Fatalf("initial count = %d, want 1", got)
	}
	p.Refer()
	p.Unref()
	if got := p.Count(); got != 1 {
		t.Fatalf("count after refer+unref = %d, want 1", got)
	}
	if p.destroyedN != 0 {
		t.Fatalf("destroyed early: %d", p.destroyedN)
	}
}

func TestDestroyedExactlyOnce(t *testing.T) {
	p := &probe{}
	p.Init(p)
	p.Refer()
	p.Unref()
	p.Unref()
	if p.destroyedN != 1 {
		t.Fatalf("destroyedN = %d, want 1", p.destroyedN)
	}
}

func TestDoubleDestructionIsFatal(t *testing.T) {
	// Simulate a second Unref racing in while a destroy is already
	// in flight (beingDeleted set, count not yet settled at zero):
	// the count-to-zero transition must not trigger Destroy twice.
	p := &probe{}
	p.Init(p)
	p.mu.Lock()
	p.count = 1
	p.beingDeleted = true
	p.mu.Unlock()

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic on double destruction")
		}
	}()
	p.Unref()
}
