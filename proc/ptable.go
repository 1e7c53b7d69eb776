package proc

import (
	"sync"

	"sortixkernel/kernelerr"
)

// PID is a process identifier; PID 0 is never a real process, PID 1
// is init.
type PID int32

// Table is the system-wide process table (ProcessTable): it hands out
// pids and maps them back to the owning *Process.
type Table struct {
	mu      sync.Mutex
	nextPID PID
	entries map[PID]*Process
}

// NewTable returns an empty table whose first Allocate returns pid 1.
func NewTable() *Table {
	return &Table{nextPID: 1, entries: make(map[PID]*Process)}
}

// Allocate assigns the next free pid to p and records it, implementing
// ProcessTable::Allocate.
func (t *Table) Allocate(p *Process) PID {
	t.mu.Lock()
	defer t.mu.Unlock()
	pid := t.nextPID
	t.nextPID++
	t.entries[pid] = p
	p.pid = pid
	return pid
}

// Get implements ProcessTable::Get.
func (t *Table) Get(pid PID) (*Process, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.entries[pid]
	if !ok {
		return nil, kernelerr.New("ProcessTable.Get", kernelerr.ESRCH)
	}
	return p, nil
}

// Free implements ProcessTable::Free.
func (t *Table) Free(pid PID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, pid)
}
