// Package syscalltab implements the syscall dispatch table: a
// fixed-size array of handlers indexed by syscall number, every slot
// pre-filled with a bad-syscall stub until Register overwrites it.
//
// Grounded on original_source/kernel/syscall.cpp: Init() fills
// syscall_list with sys_bad_syscall, Register(index, function)
// installs a real handler, panicking (PanicF) on an out-of-range
// index.
package syscalltab

import (
	"fmt"

	"sortixkernel/internal/klog"
	"sortixkernel/kernelerr"
)

// MaxSyscalls bounds the table, matching SYSCALL_MAX_NUM.
const MaxSyscalls = 256

// Handler is a syscall implementation: it receives its raw argument
// words and the calling ioctx is threaded through args by convention
// (syscalls that need it take an *ioctx.Context as their first typed
// argument once unmarshalled; this package only moves opaque args).
type Handler func(args [6]uintptr) (uintptr, error)

// Table is the syscall_list array plus the registration/lookup logic
// around it.
type Table struct {
	handlers [MaxSyscalls]Handler
}

// New returns a table with every slot set to the bad-syscall stub,
// implementing Syscall::Init.
func New() *Table {
	t := &Table{}
	for i := range t.handlers {
		t.handlers[i] = badSyscallAt(i)
	}
	return t
}

func badSyscallAt(index int) Handler {
	return func(args [6]uintptr) (uintptr, error) {
		return badSyscall(index, args)
	}
}

func badSyscall(index int, args [6]uintptr) (uintptr, error) {
	if name := Name(index); name != "" {
		klog.Default.Printf("bad system call: %d (%s)", index, name)
	} else {
		klog.Default.Printf("bad system call: %d", index)
	}
	return ^uintptr(0), kernelerr.New("syscalltab.badSyscall", kernelerr.ENOSYS)
}

// Register installs fn at index, implementing Syscall::Register. It
// panics on an out-of-range index exactly as PanicF does in the
// original — a registration mistake is a build-time bug, not a
// runtime condition to recover from.
func (t *Table) Register(index int, fn Handler) {
	if index < 0 || MaxSyscalls <= index {
		panic(fmt.Sprintf("syscalltab: attempted to register syscall at index %d, but MaxSyscalls = %d", index, MaxSyscalls))
	}
	t.handlers[index] = fn
}

// Invoke dispatches to the handler at index, the bad-syscall stub if
// none was registered.
func (t *Table) Invoke(index int, args [6]uintptr) (uintptr, error) {
	if index < 0 || MaxSyscalls <= index {
		return badSyscall(index, args)
	}
	return t.handlers[index](args)
}
