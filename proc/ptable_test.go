package proc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"sortixkernel/kernelerr"
)

func TestAllocateStartsAtPidOne(t *testing.T) {
	table := NewTable()
	p := &Process{}
	require.EqualValues(t, 1, table.Allocate(p))
}

func TestGetUnknownPidReturnsESRCH(t *testing.T) {
	table := NewTable()
	_, err := table.Get(99)
	require.True(t, kernelerr.Is(err, kernelerr.ESRCH), "err = %v, want ESRCH", err)
}

func TestFreeRemovesEntry(t *testing.T) {
	table := NewTable()
	p := &Process{}
	pid := table.Allocate(p)
	table.Free(pid)

	_, err := table.Get(pid)
	require.True(t, kernelerr.Is(err, kernelerr.ESRCH), "expected ESRCH after Free")
}
