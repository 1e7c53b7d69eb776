package syscalltab

// Syscall numbers for the dense syscall-number space spec.md §6
// requires at minimum. Grounded on original_source/sortix/syscallnum.h's
// SYSCALL_* naming convention (a flat #define-per-call list terminated
// by SYSCALL_MAX_NUM), re-expressed as a Go const block covering the
// calls spec.md §6 names rather than the original's smaller set.
const (
	SysBadSyscall = iota
	SysExitThread
	SysFork
	SysExecve
	SysWait
	SysWaitpid
	SysKill
	SysRaise
	SysSigaction
	SysSigprocmask
	SysAlarmns
	SysTimerSettime
	SysClockGettime
	SysRead
	SysWrite
	SysPread
	SysPwrite
	SysOpen
	SysClose
	SysLseek
	SysDup
	SysPipe
	SysMmapWrapper
	SysMprotect
	SysMunmap
	SysFcntl
	SysIoctl
	SysGetpid
	SysGetppid
	SysSetuid
	SysGetuid
	SysSetgid
	SysGetgid
	SysPrlimit
	SysAccept4
	SysGetentropy
	SysKernelinfo

	// NumNamedSyscalls is the count of calls named above; SysBadSyscall
	// occupies index 0 exactly as Syscall::Init pre-fills every slot
	// with sys_bad_syscall before any Register call.
	NumNamedSyscalls
)

// syscallNames maps the constants above back to the ABI name spec.md
// §6 lists, for diagnostics (bad-syscall logging, kernelinfo).
var syscallNames = [NumNamedSyscalls]string{
	SysBadSyscall:    "bad_syscall",
	SysExitThread:    "exit_thread",
	SysFork:          "fork",
	SysExecve:        "execve",
	SysWait:          "wait",
	SysWaitpid:       "waitpid",
	SysKill:          "kill",
	SysRaise:         "raise",
	SysSigaction:     "sigaction",
	SysSigprocmask:   "sigprocmask",
	SysAlarmns:       "alarmns",
	SysTimerSettime:  "timer_settime",
	SysClockGettime:  "clock_gettime",
	SysRead:          "read",
	SysWrite:         "write",
	SysPread:         "pread",
	SysPwrite:        "pwrite",
	SysOpen:          "open",
	SysClose:         "close",
	SysLseek:         "lseek",
	SysDup:           "dup",
	SysPipe:          "pipe",
	SysMmapWrapper:   "mmap_wrapper",
	SysMprotect:      "mprotect",
	SysMunmap:        "munmap",
	SysFcntl:         "fcntl",
	SysIoctl:         "ioctl",
	SysGetpid:        "getpid",
	SysGetppid:       "getppid",
	SysSetuid:        "setuid",
	SysGetuid:        "getuid",
	SysSetgid:        "setgid",
	SysGetgid:        "getgid",
	SysPrlimit:       "prlimit",
	SysAccept4:       "accept4",
	SysGetentropy:    "getentropy",
	SysKernelinfo:    "kernelinfo",
}

// Name returns the ABI name of a named syscall number, or "" if index
// is out of the named range (still dispatchable via Invoke, just
// without a friendly name for logging).
func Name(index int) string {
	if index < 0 || NumNamedSyscalls <= index {
		return ""
	}
	return syscallNames[index]
}
