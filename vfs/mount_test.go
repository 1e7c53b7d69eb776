package vfs

import "testing"

func TestAddMountAppends(t *testing.T) {
	tbl := NewMountTable()
	tbl.AddMount(2, 1, &fakeInode{name: "root"})
	tbl.AddMount(5, 1, &fakeInode{name: "child"})

	mounts := tbl.Mounts()
	if len(mounts) != 2 {
		t.Fatalf("len(Mounts()) = %d, want 2", len(mounts))
	}
	if mounts[1].Ino != 5 {
		t.Fatalf("second mount ino = %d, want 5", mounts[1].Ino)
	}
}

func TestForkIsIndependentOfOriginal(t *testing.T) {
	tbl := NewMountTable()
	tbl.AddMount(2, 1, &fakeInode{name: "root"})

	clone := tbl.Fork()
	clone.AddMount(9, 1, &fakeInode{name: "extra"})

	if len(tbl.Mounts()) != 1 {
		t.Fatalf("original table mutated by mounting on the fork: len = %d, want 1", len(tbl.Mounts()))
	}
	if len(clone.Mounts()) != 2 {
		t.Fatalf("len(clone.Mounts()) = %d, want 2", len(clone.Mounts()))
	}
}
