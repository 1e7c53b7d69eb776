package ioctx

import (
	"testing"

	"sortixkernel/kernelerr"
	"sortixkernel/mm"
)

func TestKernelContextCopiesWithoutValidation(t *testing.T) {
	ctx := Kernel()
	src := []byte("hello")
	dst := make([]byte, len(src))
	if err := ctx.CopyToDest(dst, src); err != nil {
		t.Fatal(err)
	}
	if string(dst) != "hello" {
		t.Fatalf("dst = %q, want %q", dst, "hello")
	}
}

func TestUserContextRejectsUnmappedRange(t *testing.T) {
	space := mm.NewAddressSpace()
	space.AddSegment(mm.Segment{Base: 0x1000, Size: 0x1000, Prot: mm.ProtUserRead | mm.ProtUserWrite})

	identity := func(buf []byte) (uintptr, uintptr) {
		return 0x5000, uintptr(len(buf))
	}
	ctx := User(Credentials{}, 0, space, identity)

	dst := make([]byte, 16)
	if err := ctx.CopyToDest(dst, make([]byte, 16)); !kernelerr.Is(err, kernelerr.EFAULT) {
		t.Fatalf("err = %v, want EFAULT", err)
	}
}

func TestUserContextAllowsMappedRange(t *testing.T) {
	space := mm.NewAddressSpace()
	space.AddSegment(mm.Segment{Base: 0x1000, Size: 0x1000, Prot: mm.ProtUserRead | mm.ProtUserWrite})

	identity := func(buf []byte) (uintptr, uintptr) {
		return 0x1000, uintptr(len(buf))
	}
	ctx := User(Credentials{}, 0, space, identity)

	src := []byte("data")
	dst := make([]byte, len(src))
	if err := ctx.CopyFromSrc(dst, src); err != nil {
		t.Fatal(err)
	}
	if string(dst) != "data" {
		t.Fatalf("dst = %q, want %q", dst, "data")
	}
}

func TestUserContextRejectsWriteWithoutWriteProt(t *testing.T) {
	space := mm.NewAddressSpace()
	space.AddSegment(mm.Segment{Base: 0x1000, Size: 0x1000, Prot: mm.ProtUserRead})

	identity := func(buf []byte) (uintptr, uintptr) {
		return 0x1000, uintptr(len(buf))
	}
	ctx := User(Credentials{}, 0, space, identity)

	dst := make([]byte, 4)
	if err := ctx.ZeroDest(dst); !kernelerr.Is(err, kernelerr.EFAULT) {
		t.Fatalf("err = %v, want EFAULT", err)
	}
}
