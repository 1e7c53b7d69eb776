package signal

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetAddDelHas(t *testing.T) {
	var s Set
	s.Add(SIGTERM)
	require.True(t, s.Has(SIGTERM))
	s.Del(SIGTERM)
	require.False(t, s.Has(SIGTERM))
}

func TestSetLowestPicksSmallestNumber(t *testing.T) {
	var s Set
	s.Add(SIGTERM)
	s.Add(SIGHUP)
	s.Add(SIGUSR1)
	got, ok := s.Lowest()
	require.True(t, ok)
	require.Equal(t, SIGHUP, got)
}

func TestDeliverableRespectsBlocked(t *testing.T) {
	tbl := NewTable()
	var pending, blocked Set
	pending.Add(SIGTERM)
	blocked.Add(SIGTERM)

	_, _, ok := Deliverable(pending, blocked, tbl)
	require.False(t, ok, "blocked signal should not be deliverable")
}

func TestDeliverableSIGKILLIgnoresBlock(t *testing.T) {
	tbl := NewTable()
	var pending, blocked Set
	pending.Add(SIGKILL)
	blocked.Add(SIGKILL)

	n, _, ok := Deliverable(pending, blocked, tbl)
	require.True(t, ok, "SIGKILL must always be deliverable")
	require.Equal(t, SIGKILL, n)
}

func TestTableOnExecuteResetsHandlersKeepsIgnore(t *testing.T) {
	tbl := NewTable()
	tbl.Set(SIGTERM, Action{Handler: 0x1000})
	tbl.Set(SIGINT, Action{Handler: ^uintptr(0)})

	tbl.OnExecute()

	require.Equal(t, DispDefault, tbl.Get(SIGTERM).Disposition(), "handler-backed disposition should reset to SIG_DFL across exec")
	require.Equal(t, DispIgnore, tbl.Get(SIGINT).Disposition(), "SIG_IGN should survive exec")
}

func TestMaskForHandlerUnionsCurrentHandlerAndSelfUnlessNoDefer(t *testing.T) {
	var current Set
	current.Add(SIGHUP)
	action := Action{Mask: func() Set { var m Set; m.Add(SIGUSR1); return m }()}

	got := MaskForHandler(current, action, SIGTERM)
	require.True(t, got.Has(SIGHUP), "current mask must be preserved")
	require.True(t, got.Has(SIGUSR1), "handler's own sa_mask must be applied")
	require.True(t, got.Has(SIGTERM), "signal itself must be added absent SA_NODEFER")

	action.Flags |= SANoDefer
	got = MaskForHandler(current, action, SIGTERM)
	require.False(t, got.Has(SIGTERM), "SA_NODEFER must keep the signal out of the handler mask")
}

func TestActionFlagAccessors(t *testing.T) {
	def := Action{Handler: 0x1000}
	require.False(t, def.ShouldRestart())

	restart := Action{Handler: 0x1000, Flags: SARestart}
	require.True(t, restart.ShouldRestart())

	ignore := Action{Handler: ^uintptr(0), Flags: SARestart}
	require.False(t, ignore.ShouldRestart(), "SA_RESTART is meaningless for SIG_IGN")

	resetHand := Action{Handler: 0x1000, Flags: SAResetHand}
	require.True(t, resetHand.ResetToDefault())
	require.False(t, def.ResetToDefault())
}

func TestTableForkCopiesIndependently(t *testing.T) {
	tbl := NewTable()
	tbl.Set(SIGTERM, Action{Handler: 0x2000})

	clone := tbl.Fork()
	clone.Set(SIGTERM, Action{})

	require.EqualValues(t, 0x2000, tbl.Get(SIGTERM).Handler, "mutating the fork's table should not affect the original")
}
