package proc

import (
	"sync"
	"time"

	"sortixkernel/clock"
	"sortixkernel/kernelerr"
	"sortixkernel/mm"
	"sortixkernel/signal"
	"sortixkernel/vfs"
)

// Credentials is a process's real/effective uid/gid, matching the
// fields ioctx.Credentials mirrors per-call.
type Credentials struct {
	UID, EUID uint32
	GID, EGID uint32
}

// Process is one entry of the process tree: identity, the resources a
// fork(2) either shares or copies, and the exit/wait bookkeeping a
// parent uses to reap it.
type Process struct {
	mu sync.Mutex

	pid  PID
	ppid PID
	pgid PID
	sid  PID

	Creds Credentials

	table    *Table
	parent   *Process
	children []*Process

	AddressSpace *mm.AddressSpace
	Descriptors  *vfs.DescriptorTable
	Mounts       *vfs.MountTable
	Root         *vfs.Descriptor
	Cwd          *vfs.Descriptor

	Signals *signal.Table
	pending signal.Set
	blocked signal.Set

	CPUClock *clock.Clock
	SysClock *clock.Clock

	Path string

	exited      bool
	exitStatus  Status
	rusage      Rusage
	childRusage Rusage

	threads          []StopController
	stopped          bool
	stopSignal       signal.Num
	stopReported     bool
	continuedPending bool

	waitCond sync.Cond
}

// StopController is the thread-side hook a process-wide STOP/CONT
// state change (spec.md §4.8: "Stopping moves all threads of the
// process to a STOPPED state; SIGCONT moves them back to RUNNABLE")
// drives. thread.Thread implements it; proc cannot import thread
// (thread already imports proc), so Process addresses its threads
// through this narrow interface instead of a concrete type.
type StopController interface {
	Stop()
	Continue()
}

// AddThread registers t as one of this process's schedulable threads,
// so a later Stop/Continue reaches it. Called once from thread.New.
func (p *Process) AddThread(t StopController) {
	p.mu.Lock()
	p.threads = append(p.threads, t)
	p.mu.Unlock()
}

// RemoveThread unregisters t, e.g. once it has gone DEAD and its
// storage is about to be released.
func (p *Process) RemoveThread(t StopController) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, th := range p.threads {
		if th == t {
			p.threads = append(p.threads[:i], p.threads[i+1:]...)
			return
		}
	}
}

// New creates a fresh, parentless process (pid 1 / init, in practice,
// since every other process is created via Fork) with empty resource
// tables and registers it in table.
func New(table *Table, path string) *Process {
	p := &Process{
		table:        table,
		AddressSpace: mm.NewAddressSpace(),
		Descriptors:  vfs.NewDescriptorTable(),
		Mounts:       vfs.NewMountTable(),
		Signals:      signal.NewTable(),
		CPUClock:     clock.New(clock.ID(100), time.Nanosecond),
		SysClock:     clock.New(clock.ID(101), time.Nanosecond),
		Path:         path,
	}
	p.waitCond.L = &p.mu
	pid := table.Allocate(p)
	p.pid = pid
	p.pgid = pid
	p.sid = pid
	return p
}

// PID returns the process's own pid.
func (p *Process) PID() PID { return p.pid }

// PPID returns the parent's pid, or 0 if this process has none.
func (p *Process) PPID() PID { return p.ppid }

// Fork implements the fork(2) half of the process lifecycle: a child
// process sharing this process's table, with independent
// copies of every per-process resource (address space segments,
// descriptor table, signal disposition table), following Unix fork
// semantics — descriptors are duplicated (shared underlying
// Descriptor, bumped refcount) while the address space and the
// descriptor/signal tables themselves are deep-copied. The mount
// table, per spec.md §3/§4.6, is "shared by reference" across fork
// (unlike the descriptor table): the child gets the same
// *vfs.MountTable pointer with its refcount bumped, not an
// independent copy, so a mount performed by either process after the
// fork is visible to both.
func (p *Process) Fork() *Process {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.Mounts.Refer()
	child := &Process{
		table:        p.table,
		parent:       p,
		Creds:        p.Creds,
		AddressSpace: forkAddressSpace(p.AddressSpace),
		Descriptors:  p.Descriptors.Fork(),
		Mounts:       p.Mounts,
		Root:         p.Root,
		Cwd:          p.Cwd,
		Signals:      p.Signals.Fork(),
		blocked:      p.blocked,
		CPUClock:     clock.New(clock.ID(100), time.Nanosecond),
		SysClock:     clock.New(clock.ID(101), time.Nanosecond),
		Path:         p.Path,
	}
	child.waitCond.L = &child.mu
	pid := p.table.Allocate(child)
	child.pid = pid
	child.ppid = p.pid
	child.pgid = p.pgid
	child.sid = p.sid

	p.children = append(p.children, child)
	return child
}

// forkAddressSpace deep-copies a as's segment list; ProtFork
// per-segment would ordinarily select copy-on-write vs shared
// backing, which has no meaning for the plain Go slices this
// simulation uses as "physical memory", so every segment is
// duplicated regardless of ProtFork.
func forkAddressSpace(as *mm.AddressSpace) *mm.AddressSpace {
	clone := mm.NewAddressSpace()
	for _, s := range as.Segments() {
		clone.AddSegment(s)
	}
	return clone
}

// Exec implements the exec(2) half of the process lifecycle: the
// process keeps its pid and parent but every other resource is replaced or
// reset — descriptors marked close-on-exec close, handler-backed
// signal dispositions reset to default, pending/blocked sets are
// preserved (execve does not clear them).
func (p *Process) Exec(path string, newSpace *mm.AddressSpace) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Path = path
	p.AddressSpace = newSpace
	p.Descriptors.OnExecute()
	p.Signals.OnExecute()
}

// Exit implements exit(2)/_exit(2): records the process as a zombie
// with the given status, reparents its own children to init (pid 1,
// if present in the table), and wakes any parent blocked in Wait.
func (p *Process) Exit(status Status) {
	p.mu.Lock()
	p.exited = true
	p.exitStatus = status
	children := p.children
	p.children = nil
	p.mu.Unlock()

	if init, err := p.table.Get(1); err == nil && init != p {
		init.mu.Lock()
		for _, c := range children {
			c.ppid = init.pid
			c.parent = init
			init.children = append(init.children, c)
		}
		init.mu.Unlock()
	}

	if p.parent != nil {
		p.parent.Raise(signal.SIGCHLD)
		p.parent.mu.Lock()
		p.parent.waitCond.Broadcast()
		p.parent.mu.Unlock()
	}
}

// Stop implements the default action of SIGSTOP/SIGTSTP (spec.md
// §4.8): every thread of the process moves to STOPPED via
// StopController, and the parent's Wait(WUNTRACED) becomes able to
// observe it.
func (p *Process) Stop(sig signal.Num) {
	p.mu.Lock()
	p.stopped = true
	p.stopSignal = sig
	p.stopReported = false
	threads := append([]StopController(nil), p.threads...)
	p.mu.Unlock()

	for _, t := range threads {
		t.Stop()
	}
	if p.parent != nil {
		p.parent.mu.Lock()
		p.parent.waitCond.Broadcast()
		p.parent.mu.Unlock()
	}
}

// Continue implements SIGCONT's default action: every thread returns
// to RUNNABLE, and — if the process had been stopped — the parent's
// Wait(WCONTINUED) becomes able to observe the transition once.
func (p *Process) Continue() {
	p.mu.Lock()
	wasStopped := p.stopped
	p.stopped = false
	if wasStopped {
		p.continuedPending = true
	}
	threads := append([]StopController(nil), p.threads...)
	p.mu.Unlock()

	for _, t := range threads {
		t.Continue()
	}
	if wasStopped && p.parent != nil {
		p.parent.mu.Lock()
		p.parent.waitCond.Broadcast()
		p.parent.mu.Unlock()
	}
}

// Stopped reports whether the process is currently job-control
// stopped.
func (p *Process) Stopped() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stopped
}

// Exited reports whether the process has called Exit.
func (p *Process) Exited() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exited
}

// ExitStatus returns the status Exit recorded, valid only once
// Exited() is true.
func (p *Process) ExitStatus() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exitStatus
}

// matchesWait reports whether child c is in the wait set pid selects,
// implementing waitpid(2)'s pid argument (spec.md §4.6): pid>0 an
// exact pid, pid==0 any child sharing the caller's process group,
// pid==-1 any child at all, pid<-1 any child in process group -pid.
func (p *Process) matchesWait(c *Process, pid PID) bool {
	switch {
	case pid > 0:
		return c.pid == pid
	case pid == 0:
		return c.pgid == p.pgid
	case pid == -1:
		return true
	default:
		return c.pgid == -pid
	}
}

// Wait implements wait(2)/waitpid(2): blocks until a child in the pid
// wait set (see matchesWait) has a status to report, then returns it.
// An exited child is reaped — removed from the children list, its
// rusage accumulated into childRusage, its pid freed from the process
// table. A stopped child (WUNTRACED) or a child resumed by SIGCONT
// since its last reported stop (WCONTINUED) is reported without being
// removed from the children list, and each such event is reported at
// most once. WNOHANG returns (0, 0, nil) immediately instead of
// blocking when nothing matches yet. Returns ECHILD immediately if no
// child at all is in the wait set, matching waitpid's behavior when
// the wait set is already empty.
func (p *Process) Wait(pid PID, options WaitOptions) (PID, Status, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for {
		var exited *Process
		exitedIdx := -1
		var stopped *Process
		var continued *Process
		anyMatch := false

		for i, c := range p.children {
			if !p.matchesWait(c, pid) {
				continue
			}
			anyMatch = true
			if c.Exited() {
				exited = c
				exitedIdx = i
				break
			}
			if options&WUNTRACED != 0 {
				c.mu.Lock()
				if c.stopped && !c.stopReported {
					stopped = c
				}
				c.mu.Unlock()
			}
			if options&WCONTINUED != 0 {
				c.mu.Lock()
				if c.continuedPending {
					continued = c
				}
				c.mu.Unlock()
			}
		}

		if !anyMatch {
			return 0, 0, kernelerr.New("Process.Wait", kernelerr.ECHILD)
		}
		if exited != nil {
			p.children = append(p.children[:exitedIdx], p.children[exitedIdx+1:]...)
			p.childRusage.Add(exited.rusage)
			p.childRusage.Add(exited.childRusage)
			p.table.Free(exited.pid)
			return exited.pid, exited.exitStatus, nil
		}
		if stopped != nil {
			stopped.mu.Lock()
			stopped.stopReported = true
			sig := stopped.stopSignal
			stopped.mu.Unlock()
			return stopped.pid, StoppedStatus(int(sig)), nil
		}
		if continued != nil {
			continued.mu.Lock()
			continued.continuedPending = false
			continued.mu.Unlock()
			return continued.pid, ContinuedStatus(), nil
		}
		if options&WNOHANG != 0 {
			return 0, 0, nil
		}
		p.waitCond.Wait()
	}
}

// Getrusage returns the requested resource usage snapshot.
func (p *Process) Getrusage(who Who) Rusage {
	p.mu.Lock()
	defer p.mu.Unlock()
	if who == RusageChildren {
		return p.childRusage
	}
	return p.rusage
}

// AccountCPU adds d to the process's own accumulated user CPU time,
// the bookkeeping a scheduler tick performs while this process's
// thread is running.
func (p *Process) AccountCPU(d time.Duration) {
	p.mu.Lock()
	p.rusage.UserTime += d
	p.mu.Unlock()
}

// Raise sets n pending on this process, the process-directed half of
// kill(2) — a specific thread's delivery is thread.Thread's concern.
func (p *Process) Raise(n signal.Num) {
	p.mu.Lock()
	p.pending.Add(n)
	p.mu.Unlock()
}

// Pending returns the process-wide pending signal set.
func (p *Process) Pending() signal.Set {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pending
}

// ClearPending clears n from the process-wide pending set once it has
// been delivered.
func (p *Process) ClearPending(n signal.Num) {
	p.mu.Lock()
	p.pending.Del(n)
	p.mu.Unlock()
}
