package syscalltab

import (
	"testing"

	"sortixkernel/kernelerr"
)

func TestUnregisteredSlotReturnsENOSYS(t *testing.T) {
	tbl := New()
	_, err := tbl.Invoke(5, [6]uintptr{})
	if !kernelerr.Is(err, kernelerr.ENOSYS) {
		t.Fatalf("err = %v, want ENOSYS", err)
	}
}

func TestRegisterThenInvokeDispatches(t *testing.T) {
	tbl := New()
	tbl.Register(3, func(args [6]uintptr) (uintptr, error) {
		return args[0] + args[1], nil
	})

	got, err := tbl.Invoke(3, [6]uintptr{2, 40})
	if err != nil {
		t.Fatal(err)
	}
	if got != 42 {
		t.Fatalf("got %d, want 42", got)
	}
}

func TestRegisterOutOfRangePanics(t *testing.T) {
	tbl := New()
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on out-of-range Register")
		}
	}()
	tbl.Register(MaxSyscalls, func(args [6]uintptr) (uintptr, error) { return 0, nil })
}

func TestInvokeOutOfRangeReturnsBadSyscall(t *testing.T) {
	tbl := New()
	_, err := tbl.Invoke(MaxSyscalls+10, [6]uintptr{})
	if !kernelerr.Is(err, kernelerr.ENOSYS) {
		t.Fatalf("err = %v, want ENOSYS", err)
	}
}

func TestNamedSyscallsRegisterAndDispatch(t *testing.T) {
	tbl := New()
	tbl.Register(SysGetpid, func(args [6]uintptr) (uintptr, error) {
		return 1, nil
	})

	got, err := tbl.Invoke(SysGetpid, [6]uintptr{})
	if err != nil {
		t.Fatal(err)
	}
	if got != 1 {
		t.Fatalf("got %d, want 1", got)
	}

	if Name(SysGetpid) != "getpid" {
		t.Fatalf("Name(SysGetpid) = %q, want getpid", Name(SysGetpid))
	}
	if Name(SysExecve) != "execve" {
		t.Fatalf("Name(SysExecve) = %q, want execve", Name(SysExecve))
	}
	if Name(-1) != "" || Name(NumNamedSyscalls) != "" {
		t.Fatalf("Name of out-of-range index should be empty")
	}
}

func TestUnregisteredNamedSlotReturnsENOSYS(t *testing.T) {
	tbl := New()
	_, err := tbl.Invoke(SysKill, [6]uintptr{})
	if !kernelerr.Is(err, kernelerr.ENOSYS) {
		t.Fatalf("err = %v, want ENOSYS", err)
	}
}
