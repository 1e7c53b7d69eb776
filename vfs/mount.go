package vfs

import (
	"sync"

	"sortixkernel/internal/refcount"
)

// Mountpoint is mountpoint_t: the triple identifying one mounted
// filesystem's root.
type Mountpoint struct {
	Inode Inode
	Ino   uint64
	Dev   uint64
}

// MountTable is a process's mount table: the growable array of
// Mountpoint entries a bind-mount or filesystem mount appends to,
// grounded on MountTable/mtable.cpp.
type MountTable struct {
	refcount.Counted

	mu     sync.Mutex
	mounts []Mountpoint
}

// NewMountTable returns an empty mount table.
func NewMountTable() *MountTable {
	t := &MountTable{}
	t.Counted.Init(t)
	return t
}

// Destroy satisfies refcount.Destroyer.
func (t *MountTable) Destroy() {}

// AddMount implements MountTable::AddMount.
func (t *MountTable) AddMount(ino, dev uint64, inode Inode) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.mounts = append(t.mounts, Mountpoint{Inode: inode, Ino: ino, Dev: dev})
	return true
}

// Lookup reports the mounted root inode attached at (dev, ino), and
// whether one exists, implementing the redirect half of spec.md
// §4.4's resolution walk: "each directory-walk step tests the
// (dev,ino) of the reached inode against the mount table; a hit
// redirects to the mounted root."
func (t *MountTable) Lookup(dev, ino uint64) (Inode, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, m := range t.mounts {
		if m.Dev == dev && m.Ino == ino {
			return m.Inode, true
		}
	}
	return nil, false
}

// Mounts returns a copy of the current mount list.
func (t *MountTable) Mounts() []Mountpoint {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Mountpoint, len(t.mounts))
	copy(out, t.mounts)
	return out
}

// Fork implements MountTable::Fork: a shallow copy of the mount
// array (the mounted Inodes are shared), so the copy can be mounted
// on without disturbing the original. proc.Process.Fork does not call
// it; a forked process shares its parent's table by reference.
func (t *MountTable) Fork() *MountTable {
	t.mu.Lock()
	defer t.mu.Unlock()
	clone := NewMountTable()
	clone.mounts = make([]Mountpoint, len(t.mounts))
	copy(clone.mounts, t.mounts)
	return clone
}
