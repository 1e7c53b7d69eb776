package vfs

import (
	"sync"

	"sortixkernel/internal/refcount"
	"sortixkernel/kernelerr"
)

// DFlags are the per-descriptor-table-entry flags dtableent_t.flags
// carries: close-on-exec (FD_CLOEXEC) and close-on-fork (Sortix's own
// FD_CLOFORK), matching spec.md §3's "per-slot flags (close-on-exec,
// close-on-fork)".
type DFlags int

const (
	DFlagCloExec DFlags = 1 << 0
	DFlagCloFork DFlags = 1 << 1
)

// Descriptor is a single open file description: the Inode it refers
// to plus the state that belongs to the open, not to the table slot
// (the current seek offset, the flags open(2) was called with).
// Reference counted because the same Descriptor is shared by every
// dtable slot that dup(2)/fork(2) pointed at it.
type Descriptor struct {
	refcount.Counted

	mu     sync.Mutex
	Inode  Inode
	offset int64
	flags  int
}

// NewDescriptor wraps ino in a fresh, singly-referenced Descriptor.
func NewDescriptor(ino Inode, flags int) *Descriptor {
	d := &Descriptor{Inode: ino, flags: flags}
	d.Counted.Init(d)
	return d
}

// Destroy satisfies refcount.Destroyer; a descriptor has no
// independent resources beyond its Inode, which owns its own
// lifetime.
func (d *Descriptor) Destroy() {}

// Offset returns the descriptor's current seek position.
func (d *Descriptor) Offset() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.offset
}

// SetOffset overwrites the descriptor's seek position, e.g. after a
// successful Lseek.
func (d *Descriptor) SetOffset(off int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.offset = off
}

// Flags returns the open(2) flags this descriptor was created with.
func (d *Descriptor) Flags() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.flags
}

// dtableent is dtableent_t: a table slot holding a reference plus the
// slot-local close-on-exec flag (flags live on the slot, not the
// shared Descriptor, since two slots sharing one Descriptor via dup2
// can have different CLOEXEC bits).
type dtableent struct {
	desc  *Descriptor
	flags DFlags
}

// DescriptorTable is a process's open file descriptor table: a
// growable array of slots, each either empty or holding a reference
// to a Descriptor, grounded on DescriptorTable/dtableent_t.
type DescriptorTable struct {
	refcount.Counted

	mu            sync.Mutex
	entries       []dtableent
	firstNotTaken int
}

// NewDescriptorTable returns an empty descriptor table.
func NewDescriptorTable() *DescriptorTable {
	t := &DescriptorTable{}
	t.Counted.Init(t)
	return t
}

// Destroy satisfies refcount.Destroyer.
func (t *DescriptorTable) Destroy() {}

func (t *DescriptorTable) isGoodEntry(i int) bool {
	return 0 <= i && i < len(t.entries) && t.entries[i].desc != nil
}

func (t *DescriptorTable) enlargen(atLeast int) {
	if atLeast < len(t.entries) {
		return
	}
	newLen := len(t.entries)
	if newLen == 0 {
		newLen = 4
	}
	for newLen <= atLeast {
		newLen *= 2
	}
	grown := make([]dtableent, newLen)
	copy(grown, t.entries)
	t.entries = grown
}

// Allocate installs desc at the lowest free index >= minIndex,
// returning that index, implementing DescriptorTable::Allocate.
func (t *DescriptorTable) Allocate(desc *Descriptor, flags DFlags, minIndex int) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.allocateLocked(desc, flags, minIndex)
}

func (t *DescriptorTable) allocateLocked(desc *Descriptor, flags DFlags, minIndex int) int {
	idx := minIndex
	if idx < t.firstNotTaken {
		idx = t.firstNotTaken
	}
	for idx < len(t.entries) && t.entries[idx].desc != nil {
		idx++
	}
	t.enlargen(idx)
	desc.Refer()
	t.entries[idx] = dtableent{desc: desc, flags: flags}
	if idx == t.firstNotTaken {
		t.firstNotTaken = idx + 1
	}
	return idx
}

// AllocateFrom duplicates the reference at srcIndex into a fresh slot
// at or above minIndex, implementing the dup(2)-family overload of
// DescriptorTable::Allocate.
func (t *DescriptorTable) AllocateFrom(srcIndex int, flags DFlags, minIndex int) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.isGoodEntry(srcIndex) {
		return -1
	}
	return t.allocateLocked(t.entries[srcIndex].desc, flags, minIndex)
}

// Get returns the Descriptor at index, or nil if the slot is empty,
// referencing it on the caller's behalf.
func (t *DescriptorTable) Get(index int) *Descriptor {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.isGoodEntry(index) {
		return nil
	}
	d := t.entries[index].desc
	d.Refer()
	return d
}

// Copy implements DescriptorTable::Copy: dup2(2)-style — makes to
// refer to whatever from refers to, closing to's previous occupant
// first.
func (t *DescriptorTable) Copy(from, to int, flags DFlags) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.isGoodEntry(from) {
		return kernelerr.New("DescriptorTable.Copy", kernelerr.EBADF)
	}
	if from == to {
		t.entries[to].flags = flags
		return nil
	}
	t.enlargen(to)
	if t.entries[to].desc != nil {
		t.entries[to].desc.Unref()
	}
	src := t.entries[from].desc
	src.Refer()
	t.entries[to] = dtableent{desc: src, flags: flags}
	if to == t.firstNotTaken {
		t.firstNotTaken = to + 1
	}
	return nil
}

// Free closes index, implementing DescriptorTable::Free.
func (t *DescriptorTable) Free(index int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.isGoodEntry(index) {
		return
	}
	d := t.entries[index].desc
	t.entries[index] = dtableent{}
	if index < t.firstNotTaken {
		t.firstNotTaken = index
	}
	d.Unref()
}

// GetFlags implements DescriptorTable::GetFlags.
func (t *DescriptorTable) GetFlags(index int) (DFlags, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.isGoodEntry(index) {
		return 0, kernelerr.New("DescriptorTable.GetFlags", kernelerr.EBADF)
	}
	return t.entries[index].flags, nil
}

// SetFlags implements DescriptorTable::SetFlags.
func (t *DescriptorTable) SetFlags(index int, flags DFlags) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.isGoodEntry(index) {
		return kernelerr.New("DescriptorTable.SetFlags", kernelerr.EBADF)
	}
	t.entries[index].flags = flags
	return nil
}

// Previous implements DescriptorTable::Previous: the highest occupied
// index strictly below index, or -1.
func (t *DescriptorTable) Previous(index int) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := index - 1; i >= 0; i-- {
		if t.isGoodEntry(i) {
			return i
		}
	}
	return -1
}

// Next implements DescriptorTable::Next: the lowest occupied index
// strictly above index, or -1.
func (t *DescriptorTable) Next(index int) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := index + 1; i < len(t.entries); i++ {
		if t.isGoodEntry(i) {
			return i
		}
	}
	return -1
}

// CloseFrom implements DescriptorTable::CloseFrom: closes every
// occupied slot at or above index.
func (t *DescriptorTable) CloseFrom(index int) {
	t.mu.Lock()
	victims := make([]*Descriptor, 0)
	for i := index; i < len(t.entries); i++ {
		if t.entries[i].desc != nil {
			victims = append(victims, t.entries[i].desc)
			t.entries[i] = dtableent{}
		}
	}
	if index < t.firstNotTaken {
		t.firstNotTaken = index
	}
	t.mu.Unlock()
	for _, d := range victims {
		d.Unref()
	}
}

// OnExecute implements DescriptorTable::OnExecute: closes every slot
// still carrying its close-on-exec flag, called on a successful
// execve(2).
func (t *DescriptorTable) OnExecute() {
	t.mu.Lock()
	victims := make([]*Descriptor, 0)
	for i := range t.entries {
		if t.entries[i].desc != nil && t.entries[i].flags&DFlagCloExec != 0 {
			victims = append(victims, t.entries[i].desc)
			t.entries[i] = dtableent{}
			if i < t.firstNotTaken {
				t.firstNotTaken = i
			}
		}
	}
	t.mu.Unlock()
	for _, d := range victims {
		d.Unref()
	}
}

// Fork implements DescriptorTable::Fork: a copy of the slot array with
// every surviving Descriptor's refcount bumped, except that a slot
// carrying DFlagCloFork is omitted from the child entirely (spec.md
// §4.4: "on each slot optionally omits the descriptor if close-on-fork
// is set"), leaving that index empty in the child rather than closed
// (closing would Unref a Descriptor the parent is still using).
func (t *DescriptorTable) Fork() *DescriptorTable {
	t.mu.Lock()
	defer t.mu.Unlock()
	clone := NewDescriptorTable()
	clone.entries = make([]dtableent, len(t.entries))
	clone.firstNotTaken = t.firstNotTaken
	for i, e := range t.entries {
		if e.desc == nil || e.flags&DFlagCloFork != 0 {
			if i < clone.firstNotTaken {
				clone.firstNotTaken = i
			}
			continue
		}
		e.desc.Refer()
		clone.entries[i] = e
	}
	return clone
}
