// Command sortixkernel-sim drives the kernel-core packages through
// the end-to-end scenarios described in spec.md section 8: it is not
// a bootable kernel, just a demonstration harness that exercises
// fork/exec/wait, alarm delivery, pipe I/O, path splitting, a
// getdelim-style line read, and getrusage accounting against the
// in-process simulation the rest of this module builds.
package main

import (
	"bufio"
	"bytes"
	"fmt"
	"time"

	"sortixkernel/clock"
	"sortixkernel/internal/klog"
	"sortixkernel/ioctx"
	"sortixkernel/pipe"
	"sortixkernel/proc"
	"sortixkernel/signal"
	"sortixkernel/syscalltab"
	"sortixkernel/vfs"
)

func main() {
	klog.Default.Printf("starting sortixkernel-sim")

	forkExecWait()
	alarmDelivery()
	pipePassing()
	pathSplit()
	getdelimDemo()
	getrusageDemo()
	syscallBoundary()
}

// syscallBoundary exercises the §4.9 dispatch table: getpid and
// getppid are registered against a live process, and an unregistered
// index routes to the bad-syscall stub with ENOSYS exactly as
// Syscall::Init's pre-filled table does for every slot Register never
// touches.
func syscallBoundary() {
	table := proc.NewTable()
	parent := proc.New(table, "/sbin/init")
	child := parent.Fork()

	tbl := syscalltab.New()
	tbl.Register(syscalltab.SysGetpid, func(args [6]uintptr) (uintptr, error) {
		return uintptr(child.PID()), nil
	})
	tbl.Register(syscalltab.SysGetppid, func(args [6]uintptr) (uintptr, error) {
		return uintptr(parent.PID()), nil
	})

	pid, err := tbl.Invoke(syscalltab.SysGetpid, [6]uintptr{})
	if err != nil {
		panic(err)
	}
	ppid, err := tbl.Invoke(syscalltab.SysGetppid, [6]uintptr{})
	if err != nil {
		panic(err)
	}
	_, badErr := tbl.Invoke(syscalltab.SysAccept4, [6]uintptr{})

	klog.Default.Printf("syscall boundary: getpid=%d getppid=%d unregistered accept4 err=%v",
		pid, ppid, badErr)
}

// forkExecWait exercises: parent pid 1 forks; child gets pid 2; child
// "executes" /bin/true and exits 0; parent waits and observes the
// exited status.
func forkExecWait() {
	table := proc.NewTable()
	parent := proc.New(table, "/sbin/init")
	if parent.PID() != 1 {
		panic(fmt.Sprintf("expected init pid 1, got %d", parent.PID()))
	}

	child := parent.Fork()
	if child.PID() != 2 {
		panic(fmt.Sprintf("expected child pid 2, got %d", child.PID()))
	}

	child.Exec("/bin/true", child.AddressSpace)
	child.Exit(proc.ExitedStatus(0))

	pid, status, err := parent.Wait(child.PID(), 0)
	if err != nil {
		panic(err)
	}
	klog.Default.Printf("fork/exec/wait: child pid=%d exited=%v exitcode=%d",
		pid, status.Exited(), status.ExitStatus())
}

// alarmDelivery exercises: alarmns(10ms) against a MONOTONIC clock;
// after advancing 10ms, SIGALRM is pending and its handler runs once.
func alarmDelivery() {
	mono := clock.New(clock.Monotonic, time.Nanosecond)
	defer mono.Close()

	table := proc.NewTable()
	p := proc.New(table, "/bin/alarmdemo")

	fired := 0
	mono.NewTimer().Set(
		clock.Spec{Value: 10 * time.Millisecond},
		clock.FuncInterruptHandler,
		func(c *clock.Clock, t *clock.Timer, user interface{}) {
			fired++
			p.Raise(signal.SIGALRM)
		},
		nil,
	)

	mono.Advance(10 * time.Millisecond)

	pending := p.Pending()
	klog.Default.Printf("alarm delivery: fired=%d SIGALRM pending=%v", fired, pending.Has(signal.SIGALRM))
}

// pipePassing exercises: pipe(fds) yields a reader/writer pair;
// writing "AB" then closing the writer yields exactly those two bytes
// readable, followed by EOF.
func pipePassing() {
	r, w := pipe.NewPipe(pipe.DefaultCapacity)
	ctx := ioctx.Kernel()

	n, err := w.Write(ctx, []byte("AB"), false)
	if err != nil {
		panic(err)
	}
	w.Disconnect()

	buf := make([]byte, 4)
	n, err = r.Read(ctx, buf, false)
	if err != nil {
		panic(err)
	}
	eofBuf := make([]byte, 4)
	eofN, err := r.Read(ctx, eofBuf, false)
	if err != nil {
		panic(err)
	}
	klog.Default.Printf("pipe passing: read %d bytes %q, next read len=%d (EOF)", n, buf[:n], eofN)
}

// pathSplit exercises SplitFinalElem's documented edge case.
func pathSplit() {
	dir, final := vfs.SplitFinalElem("foo///bar//test///")
	klog.Default.Printf("path split: dir=%q final=%q", dir, final)
}

// getdelimDemo exercises a getdelim-style line read over a pipe
// containing "a\nb": the first read yields the 2-byte line "a\n", the
// second yields the 1-byte line "b", the third observes EOF.
func getdelimDemo() {
	r, w := pipe.NewPipe(pipe.DefaultCapacity)
	ctx := ioctx.Kernel()
	w.Write(ctx, []byte("a\nb"), false)
	w.Disconnect()

	var all bytes.Buffer
	buf := make([]byte, 64)
	for {
		n, err := r.Read(ctx, buf, false)
		if err != nil {
			panic(err)
		}
		if n == 0 {
			break
		}
		all.Write(buf[:n])
	}

	lines := bufio.NewReader(bytes.NewReader(all.Bytes()))
	for {
		line, err := lines.ReadString('\n')
		if line != "" {
			klog.Default.Printf("getdelim: %d-byte line %q", len(line), line)
		}
		if err != nil {
			klog.Default.Printf("getdelim: EOF")
			break
		}
	}
}

// getrusageDemo exercises: a child accrues 3ms of user CPU time before
// exiting; the parent's RUSAGE_CHILDREN getrusage reflects at least
// that much once the child is reaped.
func getrusageDemo() {
	table := proc.NewTable()
	parent := proc.New(table, "/bin/sh")
	child := parent.Fork()

	child.AccountCPU(3 * time.Millisecond)
	child.Exit(proc.ExitedStatus(0))
	parent.Wait(child.PID(), 0)

	usage := parent.Getrusage(proc.RusageChildren)
	klog.Default.Printf("getrusage: RUSAGE_CHILDREN user time=%v", usage.UserTime)
}
