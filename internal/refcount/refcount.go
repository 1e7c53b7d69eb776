// Package refcount implements intrusive, mutex-protected reference
// counting: Refer increments unconditionally, Unref decrements and
// destroys at zero. Destruction is safe to invoke while the count is
// still 1, so a private owner may Unref once without first Refer-ing.
// Double destruction is detected and fatal.
//
// Grounded on original_source/kernel/include/sortix/kernel/dtable.h
// and mtable.h, both of which embed a Refcountable base (spec.md
// section 4.1); the base itself was filtered out of the retrieved
// source, so the mutex-guarded counter below follows spec.md's prose
// description directly.
package refcount

import (
	"fmt"
	"sync"
)

// Destroyer is implemented by an object that can be torn down once
// its reference count reaches zero.
type Destroyer interface {
	Destroy()
}

// Counted embeds into any reference-counted kernel object: Descriptor,
// Inode, DescriptorTable, MountTable, Process, Thread.
type Counted struct {
	mu           sync.Mutex
	count        int64
	beingDeleted bool
	destroyed    bool
	obj          Destroyer
}

// Init must be called once, from the owning object's constructor,
// with a reference count of 1 (the caller's own reference) and the
// object to destroy at zero.
func (c *Counted) Init(obj Destroyer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.obj = obj
	c.count = 1
}

// Refer increments the count unconditionally.
func (c *Counted) Refer() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed {
		panic("refcount: Refer on a destroyed object")
	}
	c.count++
}

// Unref decrements the count; if it reaches zero, Destroy is invoked
// exactly once after the lock is released (so Destroy may itself
// reach back into code that would otherwise deadlock on this mutex).
func (c *Counted) Unref() {
	c.mu.Lock()
	c.count--
	shouldDelete := c.count == 0
	if shouldDelete {
		if c.beingDeleted {
			c.mu.Unlock()
			panic(fmt.Sprintf("refcount: double destruction of %T", c.obj))
		}
		c.beingDeleted = true
	}
	c.mu.Unlock()

	if shouldDelete {
		c.obj.Destroy()
		c.mu.Lock()
		c.destroyed = true
		c.mu.Unlock()
	}
}

// Count returns the current reference count, for tests and
// diagnostics.
func (c *Counted) Count() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}
