// Package kernelerr defines the kernel's error-return convention.
//
// Every fallible kernel operation returns an *Error (built with New)
// wrapping a syscall.Errno, the same type go-fuse's fs package uses
// directly as the return type of every Inode operation (fs/api.go:
// "All error reporting must use the syscall.Errno type"). Errno is
// backed by golang.org/x/sys/unix's numeric constants, so
// kernel-internal failures and real OS errno values compare equal
// without translation; Is matches an Errno whether bare or wrapped.
package kernelerr

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Errno is the kernel's failure type. Zero means success, mirroring
// fs.OK / syscall.Errno(0).
type Errno = unix.Errno

// OK is the zero Errno, success.
const OK Errno = 0

// The error kinds a kernel operation can fail with, each mapped onto
// the unix package's numeric errno so that comparisons against real OS errors
// (e.g. from os.PathError.Err) work without a translation step.
const (
	EPERM        Errno = unix.EPERM
	ENOENT       Errno = unix.ENOENT
	EEXIST       Errno = unix.EEXIST
	EISDIR       Errno = unix.EISDIR
	ENOTDIR      Errno = unix.ENOTDIR
	EINVAL       Errno = unix.EINVAL
	EBADF        Errno = unix.EBADF
	ENOMEM       Errno = unix.ENOMEM
	EAGAIN       Errno = unix.EAGAIN
	EWOULDBLOCK  Errno = unix.EWOULDBLOCK
	EINTR        Errno = unix.EINTR
	EIO          Errno = unix.EIO
	EPIPE        Errno = unix.EPIPE
	ENOSYS       Errno = unix.ENOSYS
	ETIMEDOUT    Errno = unix.ETIMEDOUT
	EOVERFLOW    Errno = unix.EOVERFLOW
	ENAMETOOLONG Errno = unix.ENAMETOOLONG
	ELOOP        Errno = unix.ELOOP
	ESRCH        Errno = unix.ESRCH
	ECHILD       Errno = unix.ECHILD
	EFAULT       Errno = unix.EFAULT
	ERANGE       Errno = unix.ERANGE
	ENOTTY       Errno = unix.ENOTTY
	ENOEXEC      Errno = unix.ENOEXEC
)

// Error wraps an Errno with an operation name. It is the error value
// the kernel packages of this module return on failure.
type Error struct {
	Op  string
	Err Errno
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Err.Error())
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an *Error for operation op failing with errno.
func New(op string, errno Errno) *Error {
	return &Error{Op: op, Err: errno}
}

// Is reports whether err carries errno, either directly or wrapped in
// an *Error.
func Is(err error, errno Errno) bool {
	if err == nil {
		return errno == OK
	}
	var ke *Error
	if as(err, &ke) {
		return ke.Err == errno
	}
	e, ok := err.(Errno)
	return ok && e == errno
}

func as(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
