// Package interlock performs non-atomic operations in an atomic
// manner: a compare-and-swap loop that applies a pure function to a
// memory location until it sticks, returning both the old and new
// value.
//
// Grounded on original_source/kernel/interlock.cpp, generalized with
// Go generics in place of the original's unsigned long and function
// pointer.
package interlock

import "sync/atomic"

// Result is the (old, new) pair InterlockedModify returns in the
// original: ilret_t{o, n}.
type Result[T Int] struct {
	Old T
	New T
}

// Int is the set of integer types InterlockedModify accepts. Exact
// types only (no ~): the dispatch in atomicLoad/atomicCAS switches on
// the concrete pointer type, which a defined type would not match.
type Int interface {
	int32 | int64 | uint32 | uint64
}

// atomicPtr describes the method set shared by the four atomic.*-typed
// integers. Modify does not go through it; it uses atomicLoad and
// atomicCAS below.
type atomicPtr[T Int] interface {
	Load() T
	CompareAndSwap(old, new T) bool
}

// Modify repeatedly loads *ptr, applies f(old, user), and attempts to
// install the result with a compare-and-swap, retrying on conflict.
// It returns the values observed on the winning attempt, the Go
// equivalent of InterlockedModify(ptr, f, user) in interlock.cpp.
func Modify[T Int](ptr *T, f func(old, user T) T, user T) Result[T] {
	for {
		old := atomicLoad(ptr)
		next := f(old, user)
		if atomicCAS(ptr, old, next) {
			return Result[T]{Old: old, New: next}
		}
	}
}

// Increment is InterlockedIncrement: Modify(ptr, add, 1).
func Increment[T Int](ptr *T) Result[T] {
	return Modify(ptr, add[T], 1)
}

// Decrement is InterlockedDecrement: Modify(ptr, sub, 1).
func Decrement[T Int](ptr *T) Result[T] {
	return Modify(ptr, sub[T], 1)
}

// Add is InterlockedAdd: Modify(ptr, add, arg).
func Add[T Int](ptr *T, arg T) Result[T] {
	return Modify(ptr, add[T], arg)
}

// Sub is InterlockedSub: Modify(ptr, sub, arg).
func Sub[T Int](ptr *T, arg T) Result[T] {
	return Modify(ptr, sub[T], arg)
}

func add[T Int](val, arg T) T { return val + arg }
func sub[T Int](val, arg T) T { return val - arg }

// atomicLoad/atomicCAS dispatch with a type switch on the concrete
// pointer type (*int32, *int64, *uint32, *uint64) to the matching
// sync/atomic Load*/CompareAndSwap* function, so no unsafe pointer
// conversion is needed.
func atomicLoad[T Int](ptr *T) T {
	switch p := any(ptr).(type) {
	case *int32:
		return T(atomic.LoadInt32(p))
	case *int64:
		return T(atomic.LoadInt64(p))
	case *uint32:
		return T(atomic.LoadUint32(p))
	case *uint64:
		return T(atomic.LoadUint64(p))
	default:
		panic("interlock: unsupported integer type")
	}
}

func atomicCAS[T Int](ptr *T, old, new T) bool {
	switch p := any(ptr).(type) {
	case *int32:
		return atomic.CompareAndSwapInt32(p, int32(old), int32(new))
	case *int64:
		return atomic.CompareAndSwapInt64(p, int64(old), int64(new))
	case *uint32:
		return atomic.CompareAndSwapUint32(p, uint32(old), uint32(new))
	case *uint64:
		return atomic.CompareAndSwapUint64(p, uint64(old), uint64(new))
	default:
		panic("interlock: unsupported integer type")
	}
}
