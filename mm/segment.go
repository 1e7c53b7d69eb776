// Package mm implements a process's virtual address space: a
// sorted, non-overlapping segment list and the placement/overlap
// rules that govern it.
//
// Grounded on original_source/kernel/include/sortix/kernel/segment.h:
// AreSegmentsOverlapping, IsUserspaceSegment, AddSegment and
// PlaceSegment are carried over with the same semantics,
// `segmentcmp`'s (base, then size) ordering included.
package mm

import (
	"sort"

	"sortixkernel/kernelerr"
)

// Prot is the segment protection bitset: independent user/kernel
// read/write/execute bits plus a Fork selector.
type Prot uint32

const (
	ProtUserRead  Prot = 1 << 0
	ProtUserWrite Prot = 1 << 1
	ProtUserExec  Prot = 1 << 2

	ProtKernelRead  Prot = 1 << 3
	ProtKernelWrite Prot = 1 << 4
	ProtKernelExec  Prot = 1 << 5

	// ProtFork marks a segment copy-on-fork (set) vs share-on-fork
	// (clear). proc.Process.Fork does not consult it: it duplicates
	// every segment regardless.
	ProtFork Prot = 1 << 6
)

// Segment is a contiguous virtual range with uniform protection.
type Segment struct {
	Base uintptr
	Size uintptr
	Prot Prot
}

// End returns Base+Size.
func (s Segment) End() uintptr { return s.Base + s.Size }

// less implements segmentcmp: ordered by base, then by size.
func less(a, b Segment) bool {
	if a.Base != b.Base {
		return a.Base < b.Base
	}
	return a.Size < b.Size
}

// Overlapping implements AreSegmentsOverlapping.
func Overlapping(a, b Segment) bool {
	return a.Base < b.Base+b.Size && b.Base < a.Base+a.Size
}

// UserHalfLimit is the architecture's user/kernel address split; a
// segment entirely below it is userspace. A 64-bit higher-half split
// is assumed, the same "pick one sane default" posture fuse/api.go's
// MountOptions defaults take, rather than reading real hardware state.
const UserHalfLimit uintptr = 1 << 47

// IsUserspace implements IsUserspaceSegment: the segment lies
// entirely within the architecture's user half.
func IsUserspace(s Segment) bool {
	return s.Base < UserHalfLimit && s.End() <= UserHalfLimit
}

// AddressSpace is a process's sorted, non-overlapping segment array.
type AddressSpace struct {
	segments []Segment
}

// NewAddressSpace returns an empty address space.
func NewAddressSpace() *AddressSpace {
	return &AddressSpace{}
}

// Segments returns a copy of the current segment list, in address
// order.
func (a *AddressSpace) Segments() []Segment {
	out := make([]Segment, len(a.segments))
	copy(out, a.segments)
	return out
}

// FindOverlapping implements FindOverlappingSegment: the first
// existing segment overlapping candidate, or false if none.
func (a *AddressSpace) FindOverlapping(candidate Segment) (Segment, bool) {
	for _, s := range a.segments {
		if Overlapping(s, candidate) {
			return s, true
		}
	}
	return Segment{}, false
}

// IsOverlapping implements IsSegmentOverlapping.
func (a *AddressSpace) IsOverlapping(candidate Segment) bool {
	_, ok := a.FindOverlapping(candidate)
	return ok
}

// AddSegment inserts new_segment preserving address order, rejecting
// it if it overlaps an existing segment.
func (a *AddressSpace) AddSegment(s Segment) bool {
	if a.IsOverlapping(s) {
		return false
	}
	idx := sort.Search(len(a.segments), func(i int) bool {
		return less(s, a.segments[i])
	})
	a.segments = append(a.segments, Segment{})
	copy(a.segments[idx+1:], a.segments[idx:])
	a.segments[idx] = s
	return true
}

// RemoveSegment deletes the segment with the given base and size, if
// present, and reports whether it found one.
func (a *AddressSpace) RemoveSegment(base, size uintptr) bool {
	for i, s := range a.segments {
		if s.Base == base && s.Size == size {
			a.segments = append(a.segments[:i], a.segments[i+1:]...)
			return true
		}
	}
	return false
}

// PlaceFlags controls PlaceSegment's gap search.
type PlaceFlags uint32

const (
	// MapFixed requires addr to be used exactly; PlaceSegment fails
	// unless [addr, addr+size) is entirely inside a single gap.
	MapFixed PlaceFlags = 1 << 0
)

// PlaceSegment searches the gaps between existing segments (and the
// open range below the first / above the last) for room to place
// size bytes, honouring MAP_FIXED, otherwise taking the first fit at
// or above addr (addr == 0 means "anywhere"). It returns the proposed
// segment (protection left for the caller to fill in) or an error.
func (a *AddressSpace) PlaceSegment(addr, size uintptr, flags PlaceFlags) (Segment, error) {
	if size == 0 {
		return Segment{}, kernelerr.New("PlaceSegment", kernelerr.EINVAL)
	}

	if flags&MapFixed != 0 {
		cand := Segment{Base: addr, Size: size}
		if !IsUserspace(cand) {
			return Segment{}, kernelerr.New("PlaceSegment", kernelerr.EINVAL)
		}
		if a.IsOverlapping(cand) {
			return Segment{}, kernelerr.New("PlaceSegment", kernelerr.EINVAL)
		}
		return cand, nil
	}

	start := addr
	prevEnd := uintptr(0)
	for _, s := range a.segments {
		if s.Base > prevEnd {
			gapStart := prevEnd
			if gapStart < start {
				gapStart = start
			}
			if s.Base-gapStart >= size {
				cand := Segment{Base: gapStart, Size: size}
				if IsUserspace(cand) {
					return cand, nil
				}
			}
		}
		if s.End() > prevEnd {
			prevEnd = s.End()
		}
	}
	gapStart := prevEnd
	if gapStart < start {
		gapStart = start
	}
	cand := Segment{Base: gapStart, Size: size}
	if !IsUserspace(cand) {
		return Segment{}, kernelerr.New("PlaceSegment", kernelerr.ENOMEM)
	}
	return cand, nil
}

// Contains reports whether [base, base+size) falls entirely within a
// single segment with the required protection bits all set, the
// check ioctx.User's copy functions use to validate user
// addresses before touching them.
func (a *AddressSpace) Contains(base, size uintptr, need Prot) bool {
	if size == 0 {
		return true
	}
	end := base + size
	for _, s := range a.segments {
		if s.Base <= base && end <= s.End() {
			return s.Prot&need == need
		}
	}
	return false
}
