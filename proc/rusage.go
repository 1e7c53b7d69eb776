package proc

import "time"

// Rusage is a reduced struct rusage: the CPU-time fields the
// getrusage/RUSAGE_CHILDREN path exercises.
type Rusage struct {
	UserTime   time.Duration
	SystemTime time.Duration
}

// Add accumulates other into r, the getrusage(RUSAGE_CHILDREN)
// bookkeeping a parent performs as each child is reaped.
func (r *Rusage) Add(other Rusage) {
	r.UserTime += other.UserTime
	r.SystemTime += other.SystemTime
}

// Who selects which rusage getrusage(2) reports.
type Who int

const (
	RusageSelf Who = iota
	RusageChildren
)
