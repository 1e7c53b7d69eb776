// Package ioctx implements the per-call context every inode method
// receives: credentials plus the copy-direction functions that decide
// whether a buffer is validated user memory or already-trusted kernel
// memory.
//
// Grounded on original_source/kernel/include/sortix/kernel/ioctx.h
// and kernel/copy.cpp. copy.cpp's CopyToUser/CopyFromUser carry a
// "TODO: currently insecure, please check userspace tables before
// moving data" comment; User below closes that TODO by requiring
// validation against the process's segment table (it is handed an
// *mm.AddressSpace and refuses any range Contains rejects) instead of
// reproducing the original's unchecked memcpy.
package ioctx

import (
	"sortixkernel/kernelerr"
	"sortixkernel/mm"
)

// Credentials carries the real and effective identities that
// originated a call, mirroring ioctx_t's uid/auth_uid/gid/auth_gid.
type Credentials struct {
	UID, AuthUID uint32
	GID, AuthGID uint32
}

// DFlags are descriptor-flags applicable to this one call (e.g. the
// O_NONBLOCK the caller's descriptor was opened with), distinct from
// the descriptor table's persistent close-on-exec/close-on-fork bits.
type DFlags uint32

// Context is the ioctx_t: credentials plus copy semantics. No Inode
// method may dereference a caller-supplied
// pointer directly; all access goes through CopyTo/CopyFrom/ZeroDest.
type Context struct {
	Creds  Credentials
	DFlags DFlags

	copyTo   func(dst, src []byte) error
	copyFrom func(dst, src []byte) error
	zeroDest func(dst []byte) error
}

// CopyToDest copies src into the context's destination buffer dst
// (e.g. the return path of read(2)).
func (c *Context) CopyToDest(dst, src []byte) error {
	return c.copyTo(dst, src)
}

// CopyFromSrc copies the context's source buffer src into dst (e.g.
// the input path of write(2)).
func (c *Context) CopyFromSrc(dst, src []byte) error {
	return c.copyFrom(dst, src)
}

// ZeroDest fills dst with zero bytes via the context's copy
// semantics (used to zero a short read's tail).
func (c *Context) ZeroDest(dst []byte) error {
	return c.zeroDest(dst)
}

// Kernel builds a Context for in-kernel callers: every buffer is
// already trusted kernel memory, so the copy functions are plain
// slice copies with no validation, matching SetupKernelIOCtx.
func Kernel() *Context {
	return &Context{
		Creds: Credentials{},
		copyTo: func(dst, src []byte) error {
			copy(dst, src)
			return nil
		},
		copyFrom: func(dst, src []byte) error {
			copy(dst, src)
			return nil
		},
		zeroDest: func(dst []byte) error {
			for i := range dst {
				dst[i] = 0
			}
			return nil
		},
	}
}

// User builds a Context for a call originating from user mode,
// matching SetupUserIOCtx. Every buffer the returned copy functions
// touch must additionally satisfy a bounds check against space's
// segment table before data moves — the fix for the original's
// documented insecure TODO (see package doc).
//
// userRange resolves a caller-relative (buffer, length) into the
// absolute (base, size) to validate; for this in-process simulation,
// where "user memory" and "kernel memory" are both plain Go byte
// slices rather than two separate address spaces, userRange is
// typically the identity function supplied by the caller (e.g. a
// Descriptor validating against its owning Process's address space).
func User(creds Credentials, dflags DFlags, space *mm.AddressSpace, userRange func(buf []byte) (base, size uintptr)) *Context {
	validate := func(buf []byte, need mm.Prot) error {
		if len(buf) == 0 {
			return nil
		}
		base, size := userRange(buf)
		if !space.Contains(base, size, need) {
			return kernelerr.New("ioctx.validate", kernelerr.EFAULT)
		}
		return nil
	}
	return &Context{
		Creds:  creds,
		DFlags: dflags,
		copyTo: func(dst, src []byte) error {
			if err := validate(dst, mm.ProtUserWrite); err != nil {
				return err
			}
			copy(dst, src)
			return nil
		},
		copyFrom: func(dst, src []byte) error {
			if err := validate(src, mm.ProtUserRead); err != nil {
				return err
			}
			copy(dst, src)
			return nil
		},
		zeroDest: func(dst []byte) error {
			if err := validate(dst, mm.ProtUserWrite); err != nil {
				return err
			}
			for i := range dst {
				dst[i] = 0
			}
			return nil
		},
	}
}
