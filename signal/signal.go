// Package signal implements asynchronous user-space thread
// interruption: a 128-bit pending set, the per-process disposition
// table, and delivery/return semantics independent of any particular
// process or thread representation so proc and thread can each embed
// it without an import cycle.
//
// Grounded on original_source/kernel/include/sortix/kernel/signal.h
// and sortix/sigaction.h.
package signal

// Num identifies a signal 1..NSIG-1, matching the classic Unix
// numbering (SIGHUP=1, ..., SIGRTMAX=127).
type Num int

// NSIG bounds the signal number space; bit 0 of the pending set is
// unused, matching signals being numbered from 1.
const NSIG = 128

const (
	SIGHUP  Num = 1
	SIGINT  Num = 2
	SIGQUIT Num = 3
	SIGILL  Num = 4
	SIGTRAP Num = 5
	SIGABRT Num = 6
	SIGBUS  Num = 7
	SIGFPE  Num = 8
	SIGKILL Num = 9
	SIGUSR1 Num = 10
	SIGSEGV Num = 11
	SIGUSR2 Num = 12
	SIGPIPE Num = 13
	SIGALRM Num = 14
	SIGTERM Num = 15
	SIGCHLD Num = 17
	SIGCONT Num = 18
	SIGSTOP Num = 19
	SIGTSTP Num = 20
)

// Flags are struct sigaction's sa_flags bits.
type Flags uint32

const (
	SANoCldStop Flags = 1 << 0
	SAOnStack   Flags = 1 << 1
	SAResetHand Flags = 1 << 2
	SARestart   Flags = 1 << 3
	SASiginfo   Flags = 1 << 4
	SANoCldWait Flags = 1 << 5
	SANoDefer   Flags = 1 << 6
)

// Disp is a resolved disposition: ignore, the process default
// (usually terminate/core/stop), or a registered handler.
type Disp int

const (
	DispDefault Disp = iota
	DispIgnore
	DispHandler
)

// Action mirrors struct sigaction: mask to apply during the handler,
// the handler identity (opaque to this package — proc/thread only
// needs to know whether one is installed), and flags.
type Action struct {
	Mask    Set
	Handler uintptr // 0 means SIG_DFL, ^uintptr(0) means SIG_IGN
	Flags   Flags
}

// Disposition resolves an Action into a Disp the scheduler/delivery
// logic acts on.
func (a Action) Disposition() Disp {
	switch a.Handler {
	case 0:
		return DispDefault
	case ^uintptr(0):
		return DispIgnore
	default:
		return DispHandler
	}
}

// ResetToDefault reports whether SA_RESETHAND is set: the disposition
// must revert to SIG_DFL once this handler has been entered.
func (a Action) ResetToDefault() bool {
	return a.Flags&SAResetHand != 0
}

// NoDefer reports whether SA_NODEFER is set: the signal being
// delivered should NOT be added to the handler's blocked mask, so a
// second occurrence can interrupt the handler itself.
func (a Action) NoDefer() bool {
	return a.Flags&SANoDefer != 0
}

// ShouldRestart reports whether SA_RESTART applies to an
// EINTR-interrupted, restartable syscall under this disposition: true
// only for a caught handler with SA_RESTART set, never for the
// default action or SIG_IGN.
func (a Action) ShouldRestart() bool {
	return a.Disposition() == DispHandler && a.Flags&SARestart != 0
}

// MaskForHandler computes the blocked-signal mask a thread runs a
// caught handler under: current (the thread's mask at the moment of
// delivery) unioned with the handler's own sa_mask, plus sig itself
// unless SA_NODEFER, matching spec.md §4.8's "(current ∪
// handler-mask ∪ {sig} unless SA_NODEFER)".
func MaskForHandler(current Set, action Action, sig Num) Set {
	next := current.Or(action.Mask)
	if !action.NoDefer() {
		next.Add(sig)
	}
	return next
}

// Set is a 128-bit signal set, two uint64 words wide.
type Set [2]uint64

func wordBit(n Num) (word, bit int) {
	return int(n) / 64, int(n) % 64
}

// Add sets n in the set.
func (s *Set) Add(n Num) {
	w, b := wordBit(n)
	s[w] |= 1 << uint(b)
}

// Del clears n in the set.
func (s *Set) Del(n Num) {
	w, b := wordBit(n)
	s[w] &^= 1 << uint(b)
}

// Has reports whether n is set.
func (s Set) Has(n Num) bool {
	w, b := wordBit(n)
	return s[w]&(1<<uint(b)) != 0
}

// IsEmpty reports whether no signal is set.
func (s Set) IsEmpty() bool {
	return s[0] == 0 && s[1] == 0
}

// AndNot returns s with every bit in other cleared (s &^ other).
func (s Set) AndNot(other Set) Set {
	return Set{s[0] &^ other[0], s[1] &^ other[1]}
}

// Or returns the union of s and other.
func (s Set) Or(other Set) Set {
	return Set{s[0] | other[0], s[1] | other[1]}
}

// Lowest returns the lowest-numbered signal set in s, and whether any
// was set at all. Kernel signal delivery always picks the
// lowest-numbered pending, unmasked signal first.
func (s Set) Lowest() (Num, bool) {
	for w := 0; w < 2; w++ {
		if s[w] == 0 {
			continue
		}
		for b := 0; b < 64; b++ {
			if s[w]&(1<<uint(b)) != 0 {
				return Num(w*64 + b), true
			}
		}
	}
	return 0, false
}

// Table is the per-process array of NSIG Actions, shared by every
// thread of a process (POSIX requires disposition to be
// process-wide; the pending set and mask are per-thread).
type Table struct {
	actions [NSIG]Action
}

// NewTable returns a table with every signal at SIG_DFL.
func NewTable() *Table {
	return &Table{}
}

// Get returns the Action currently registered for n.
func (t *Table) Get(n Num) Action {
	return t.actions[n]
}

// Set installs action for n, returning the previous Action (the
// sigaction(2) oldact behavior).
func (t *Table) Set(n Num, action Action) Action {
	old := t.actions[n]
	t.actions[n] = action
	return old
}

// Fork returns a deep copy of the table, the exec(2)-independent half
// of "signal dispositions are inherited across fork unchanged".
func (t *Table) Fork() *Table {
	clone := &Table{}
	clone.actions = t.actions
	return clone
}

// OnExecute resets every handler-backed disposition to SIG_DFL while
// leaving SIG_IGN alone, matching POSIX's exec(2) rule: "dispositions
// of signals that are set to a handler are reset to SIG_DFL; signals
// set to SIG_IGN remain ignored."
func (t *Table) OnExecute() {
	for i := range t.actions {
		if t.actions[i].Disposition() == DispHandler {
			t.actions[i] = Action{}
		}
	}
}

// Deliverable computes the next signal that should actually run a
// handler or default action: the lowest-numbered signal present in
// pending but absent from blocked, plus its resolved Action. SIGKILL
// and SIGSTOP are always deliverable regardless of blocked, matching
// POSIX's non-maskable signals.
func Deliverable(pending, blocked Set, table *Table) (Num, Action, bool) {
	var nonMaskable Set
	nonMaskable.Add(SIGKILL)
	nonMaskable.Add(SIGSTOP)

	unblocked := pending.AndNot(blocked).Or(Set{pending[0] & nonMaskable[0], pending[1] & nonMaskable[1]})
	n, ok := unblocked.Lowest()
	if !ok {
		return 0, Action{}, false
	}
	return n, table.Get(n), true
}

// IsStopSignal reports whether n stops the receiving process by
// default (SIGSTOP, SIGTSTP; other job-control signals are not
// modeled individually).
func IsStopSignal(n Num) bool {
	return n == SIGSTOP || n == SIGTSTP
}

// IsContSignal reports whether n resumes a stopped process.
func IsContSignal(n Num) bool {
	return n == SIGCONT
}

// TerminatesDefault reports whether n's default action (DispDefault)
// is process termination, as opposed to being ignored by default
// (SIGCHLD/SIGCONT) or stopping the process.
func TerminatesDefault(n Num) bool {
	switch n {
	case SIGCHLD, SIGCONT:
		return false
	case SIGSTOP, SIGTSTP:
		return false
	default:
		return true
	}
}
