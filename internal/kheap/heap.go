// Package kheap implements the kernel's single global allocator: one
// mutex, one simulated address range, and chunks linked to their
// immediate left/right neighbours plus a free list. Freeing a chunk
// merges it with any free neighbour; running out of range calls a
// single expansion callback (libk_heap_expand in the original) to
// grow the backing range.
//
// The chunk-coalescing design follows the original kernel heap's
// left/right-neighbour-merge behaviour, in the style of this
// codebase's other mutex-guarded singletons (fuse/bufferpool.go's
// pool of reusable byte buffers under one sync.Mutex).
package kheap

import (
	"fmt"
	"sync"

	"sortixkernel/kernelerr"
)

// Paranoia selects how aggressively Heap verifies its own invariants
// after each mutating call, mirroring the original's PARANOIA levels
// 0-3.
type Paranoia int

const (
	ParanoiaNone  Paranoia = 0
	ParanoiaLight Paranoia = 1
	ParanoiaFull  Paranoia = 2
	ParanoiaSlow  Paranoia = 3
)

// Expander grows the heap's backing range by at least additional
// bytes, returning false if no more memory is available. It is the
// only hook through which the Heap reaches outside itself: the
// allocator is the only subsystem permitted to call the page-mapping
// primitive directly, and Expander stands in for that primitive.
type Expander func(additional int) bool

const minChunk = 16

type chunk struct {
	addr        int
	size        int
	free        bool
	left, right *chunk // address-order neighbours
	nextFree    *chunk // singly linked free-list bin
}

// Heap is the kernel's sole allocator singleton. The zero value is
// not usable; construct with New.
type Heap struct {
	mu       sync.Mutex
	paranoia Paranoia
	expand   Expander
	backing  []byte
	first    *chunk // address-ordered list head
	freeHead *chunk
	byAddr   map[int]*chunk
}

// Options configures a Heap.
type Options struct {
	InitialSize int
	Paranoia    Paranoia
	Expand      Expander
}

// New creates a Heap with an initial backing range of size
// opts.InitialSize, entirely free.
func New(opts Options) *Heap {
	if opts.InitialSize <= 0 {
		opts.InitialSize = 64 * 1024
	}
	h := &Heap{
		paranoia: opts.Paranoia,
		expand:   opts.Expand,
		backing:  make([]byte, opts.InitialSize),
		byAddr:   make(map[int]*chunk),
	}
	root := &chunk{addr: 0, size: opts.InitialSize, free: true}
	h.first = root
	h.freeHead = root
	h.byAddr[0] = root
	return h
}

// Block is a live allocation. Its Bytes slice is exactly len(Bytes)
// bytes of backing storage; callers must not retain it past Free.
type Block struct {
	addr int
	size int
	heap *Heap
}

func (b *Block) Addr() int { return b.addr }
func (b *Block) Size() int { return b.size }

// Bytes returns the backing storage for this block, length == the
// size requested at Alloc (not the chunk's possibly-larger size).
func (b *Block) Bytes() []byte {
	return b.heap.backing[b.addr : b.addr+b.size]
}

// Alloc returns a Block of at least size bytes, expanding the heap
// via the configured Expander if no free chunk fits.
func (h *Heap) Alloc(size int) (*Block, error) {
	if size <= 0 {
		return nil, kernelerr.New("kheap.Alloc", kernelerr.EINVAL)
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	need := size
	for {
		if c := h.findFreeFit(need); c != nil {
			h.splitAndTake(c, size)
			h.verifyLocked()
			return &Block{addr: c.addr, size: size, heap: h}, nil
		}
		if h.expand == nil || !h.expand(need) {
			return nil, kernelerr.New("kheap.Alloc", kernelerr.ENOMEM)
		}
		h.growBacking(need)
	}
}

// growBacking extends the backing array and the address-ordered chunk
// list with one new free chunk covering the extension, merging with
// the previous tail chunk if it was already free.
func (h *Heap) growBacking(atLeast int) {
	grow := atLeast
	if grow < len(h.backing) {
		grow = len(h.backing)
	}
	oldLen := len(h.backing)
	h.backing = append(h.backing, make([]byte, grow)...)

	// Find the address-order tail.
	tail := h.first
	for tail.right != nil {
		tail = tail.right
	}
	if tail.free {
		delete(h.byAddr, tail.addr)
		h.removeFromFreeList(tail)
		tail.size += grow
		h.byAddr[tail.addr] = tail
		h.pushFree(tail)
		return
	}
	nc := &chunk{addr: oldLen, size: grow, free: true, left: tail}
	tail.right = nc
	h.byAddr[nc.addr] = nc
	h.pushFree(nc)
}

// findFreeFit scans the free list for the first chunk of at least
// need bytes: first-fit over the free-list bins.
func (h *Heap) findFreeFit(need int) *chunk {
	for c := h.freeHead; c != nil; c = c.nextFree {
		if c.size >= need {
			return c
		}
	}
	return nil
}

// splitAndTake removes c from the free list and, if it is larger than
// needed by at least minChunk, splits off the remainder as a new free
// chunk.
func (h *Heap) splitAndTake(c *chunk, size int) {
	h.removeFromFreeList(c)
	c.free = false
	if rem := c.size - size; rem >= minChunk {
		nc := &chunk{addr: c.addr + size, size: rem, free: true, left: c, right: c.right}
		if c.right != nil {
			c.right.left = nc
		}
		c.right = nc
		c.size = size
		h.byAddr[nc.addr] = nc
		h.pushFree(nc)
	}
}

// Free releases b, coalescing with any free left/right neighbour.
func (h *Heap) Free(b *Block) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.byAddr[b.addr]
	if !ok || c.free {
		panic("kheap: Free of an unallocated or already-free block")
	}
	c.free = true
	h.pushFree(c)

	if c.right != nil && c.right.free {
		h.mergeRight(c)
	}
	if c.left != nil && c.left.free {
		c = c.left
		h.mergeRight(c)
	}
	h.verifyLocked()
}

// mergeRight absorbs c.right into c. Precondition: c.right is free.
func (h *Heap) mergeRight(c *chunk) {
	r := c.right
	h.removeFromFreeList(c)
	h.removeFromFreeList(r)
	delete(h.byAddr, r.addr)
	c.size += r.size
	c.right = r.right
	if r.right != nil {
		r.right.left = c
	}
	h.pushFree(c)
}

func (h *Heap) pushFree(c *chunk) {
	c.nextFree = h.freeHead
	h.freeHead = c
}

func (h *Heap) removeFromFreeList(c *chunk) {
	if h.freeHead == c {
		h.freeHead = c.nextFree
		c.nextFree = nil
		return
	}
	for p := h.freeHead; p != nil; p = p.nextFree {
		if p.nextFree == c {
			p.nextFree = c.nextFree
			c.nextFree = nil
			return
		}
	}
}

// verifyLocked is __heap_verify: scans the address-ordered chunk list
// checking that chunks are contiguous, non-overlapping, and that no
// two adjacent free chunks survived un-coalesced. Runs only at
// ParanoiaFull and above; callers must hold h.mu.
func (h *Heap) verifyLocked() {
	if h.paranoia < ParanoiaFull {
		return
	}
	addr := 0
	var prevFree bool
	for c := h.first; c != nil; c = c.right {
		if c.addr != addr {
			panic(fmt.Sprintf("kheap: chunk gap/overlap at %d, expected %d", c.addr, addr))
		}
		if prevFree && c.free {
			panic("kheap: adjacent free chunks were not coalesced")
		}
		prevFree = c.free
		addr += c.size
	}
	if addr != len(h.backing) {
		panic("kheap: chunk list does not cover the backing range")
	}
}

// Verify runs the paranoia scan regardless of the configured level,
// for use in tests (the equivalent of explicitly invoking
// __heap_verify()).
func (h *Heap) Verify() {
	h.mu.Lock()
	defer h.mu.Unlock()
	saved := h.paranoia
	h.paranoia = ParanoiaFull
	h.verifyLocked()
	h.paranoia = saved
}
