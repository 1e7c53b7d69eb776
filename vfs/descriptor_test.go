package vfs

import (
	"testing"

	"github.com/stretchr/testify/require"

	"sortixkernel/ioctx"
)

type fakeInode struct {
	name string
}

func (f *fakeInode) Stat(ctx *ioctx.Context) (Stat, error)           { return Stat{}, nil }
func (f *fakeInode) Chmod(ctx *ioctx.Context, mode Mode) error       { return nil }
func (f *fakeInode) Chown(ctx *ioctx.Context, uid, gid uint32) error { return nil }

func TestAllocateReturnsLowestFreeIndex(t *testing.T) {
	tbl := NewDescriptorTable()
	a := tbl.Allocate(NewDescriptor(&fakeInode{name: "a"}, 0), 0, 0)
	b := tbl.Allocate(NewDescriptor(&fakeInode{name: "b"}, 0), 0, 0)
	require.Equal(t, 0, a)
	require.Equal(t, 1, b)

	tbl.Free(a)
	c := tbl.Allocate(NewDescriptor(&fakeInode{name: "c"}, 0), 0, 0)
	require.Equal(t, 0, c, "expected reuse of freed index 0")
}

func TestCopyDup2StyleClosesPreviousOccupant(t *testing.T) {
	tbl := NewDescriptorTable()
	src := NewDescriptor(&fakeInode{name: "src"}, 0)
	from := tbl.Allocate(src, 0, 0)
	old := NewDescriptor(&fakeInode{name: "old"}, 0)
	to := tbl.Allocate(old, 0, 0)

	require.NoError(t, tbl.Copy(from, to, 0))

	got := tbl.Get(to)
	require.Equal(t, "src", got.Inode.(*fakeInode).name)
}

func TestOnExecuteClosesCloExecOnly(t *testing.T) {
	tbl := NewDescriptorTable()
	keep := tbl.Allocate(NewDescriptor(&fakeInode{name: "keep"}, 0), 0, 0)
	cloexec := tbl.Allocate(NewDescriptor(&fakeInode{name: "gone"}, 0), DFlagCloExec, 0)

	tbl.OnExecute()

	require.NotNil(t, tbl.Get(keep), "non-CLOEXEC descriptor should survive OnExecute")
	require.Nil(t, tbl.Get(cloexec), "CLOEXEC descriptor should be closed by OnExecute")
}

func TestForkDuplicatesEntriesIndependently(t *testing.T) {
	tbl := NewDescriptorTable()
	idx := tbl.Allocate(NewDescriptor(&fakeInode{name: "shared"}, 0), 0, 0)

	clone := tbl.Fork()
	clone.Free(idx)

	require.NotNil(t, tbl.Get(idx), "freeing in the fork should not affect the original table")
}

func TestForkOmitsCloForkSlots(t *testing.T) {
	tbl := NewDescriptorTable()
	keep := tbl.Allocate(NewDescriptor(&fakeInode{name: "keep"}, 0), 0, 0)
	cloFork := tbl.Allocate(NewDescriptor(&fakeInode{name: "gone"}, 0), DFlagCloFork, 0)

	clone := tbl.Fork()

	require.NotNil(t, clone.Get(keep), "non-CLOFORK descriptor should survive Fork")
	require.Nil(t, clone.Get(cloFork), "CLOFORK descriptor should be omitted from the forked table")
	require.NotNil(t, tbl.Get(cloFork), "CLOFORK flag must not affect the parent's own table")
}

func TestPreviousAndNext(t *testing.T) {
	tbl := NewDescriptorTable()
	tbl.Allocate(NewDescriptor(&fakeInode{name: "0"}, 0), 0, 0)
	tbl.Allocate(NewDescriptor(&fakeInode{name: "2"}, 0), 0, 2)

	require.Equal(t, 2, tbl.Next(0))
	require.Equal(t, 0, tbl.Previous(2))
	require.Equal(t, -1, tbl.Previous(0))
}

func TestCloseFromClosesEverythingAtOrAbove(t *testing.T) {
	tbl := NewDescriptorTable()
	tbl.Allocate(NewDescriptor(&fakeInode{}, 0), 0, 0)
	tbl.Allocate(NewDescriptor(&fakeInode{}, 0), 0, 1)
	tbl.Allocate(NewDescriptor(&fakeInode{}, 0), 0, 2)

	tbl.CloseFrom(1)

	require.NotNil(t, tbl.Get(0), "index 0 should survive CloseFrom(1)")
	require.Nil(t, tbl.Get(1))
	require.Nil(t, tbl.Get(2))
}
