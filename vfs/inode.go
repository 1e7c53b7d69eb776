package vfs

import (
	"sortixkernel/ioctx"
	"sortixkernel/poll"
)

// Inode is the minimal contract every filesystem node satisfies:
// stat metadata plus permission changes. Every other capability
// (read, write, directory listing, ...) is an optional interface an
// Inode additionally implements, following the same segregation the
// teacher's fs.Node/NodeXxxer interfaces use instead of one fat
// virtual base class. This is a deliberate departure from the
// original's Inode class, which declares every one of these as a
// virtual member returning ENOSYS by default: Go has no default
// method bodies, so the original's "override what you support" shape
// becomes "implement the optional interfaces you support" here.
type Inode interface {
	Stat(ctx *ioctx.Context) (Stat, error)
	Chmod(ctx *ioctx.Context, mode Mode) error
	Chown(ctx *ioctx.Context, uid, gid uint32) error
}

// Stat mirrors the fields of struct stat that vfs operations
// populate; not every filesystem fills in every field.
type Stat struct {
	Ino   uint64
	Dev   uint64
	Mode  Mode
	Nlink uint32
	UID   uint32
	GID   uint32
	Size  int64
}

// Reader is satisfied by inodes readable at an implicit offset
// (streams: pipes, sockets, terminals).
type Reader interface {
	Read(ctx *ioctx.Context, buf []byte) (int, error)
}

// Writer is the streaming counterpart of Reader.
type Writer interface {
	Write(ctx *ioctx.Context, buf []byte) (int, error)
}

// Preader is satisfied by seekable inodes (regular files): read at an
// explicit offset without disturbing any stream position.
type Preader interface {
	Pread(ctx *ioctx.Context, buf []byte, offset int64) (int, error)
}

// Pwriter is the seekable counterpart of Preader.
type Pwriter interface {
	Pwrite(ctx *ioctx.Context, buf []byte, offset int64) (int, error)
}

// Seeker is satisfied by inodes that track a stream position lseek(2)
// can move.
type Seeker interface {
	Lseek(ctx *ioctx.Context, offset int64, whence int) (int64, error)
}

// Truncater is satisfied by inodes whose size can be changed without
// a write.
type Truncater interface {
	Truncate(ctx *ioctx.Context, size int64) error
}

// Poller is satisfied by inodes that can report readiness through the
// poll package.
type Poller interface {
	Poll(ctx *ioctx.Context, node *poll.Node)
}

// Opener is satisfied by inodes that need to run work (refcounting,
// mode checks, append-position setup) on every open(2), distinct from
// construction.
type Opener interface {
	Open(ctx *ioctx.Context, flags int) (Inode, error)
}

// DirLookuper is satisfied by directory inodes: path resolution walks
// one path element at a time through Lookup.
type DirLookuper interface {
	Lookup(ctx *ioctx.Context, name string) (Inode, error)
}

// DirReader is satisfied by directory inodes supporting getdents-style
// enumeration.
type DirReader interface {
	Readdir(ctx *ioctx.Context) ([]Dirent, error)
}

// Dirent is one directory entry, carrying the d_type ModeToDT
// computes from the child's mode.
type Dirent struct {
	Name string
	Ino  uint64
	Type byte
}

// DirMkdirer is satisfied by directory inodes supporting mkdir(2).
type DirMkdirer interface {
	Mkdir(ctx *ioctx.Context, name string, mode Mode) (Inode, error)
}

// DirUnlinker is satisfied by directory inodes supporting unlink(2)
// and rmdir(2).
type DirUnlinker interface {
	Unlink(ctx *ioctx.Context, name string) error
	Rmdir(ctx *ioctx.Context, name string) error
}

// MountReceiver is satisfied by a directory inode another filesystem
// can be grafted onto, the Inode-side counterpart of MountTable's
// AddMount bookkeeping.
type MountReceiver interface {
	BindMount(ctx *ioctx.Context, name string, root Inode) error
}

// Linker is satisfied by directory inodes supporting symlink(2) and
// readlink(2).
type Linker interface {
	Symlink(ctx *ioctx.Context, name, target string) (Inode, error)
	Readlink(ctx *ioctx.Context) (string, error)
}

// Socketer is satisfied by socket inodes; the verbs are kept narrow
// (bind/accept/connect/send/recv) rather than a full net.Conn surface,
// matching how little of BSD sockets spec.md's component model asks
// an Inode to carry directly.
type Socketer interface {
	Bind(ctx *ioctx.Context, addr string) error
	Accept(ctx *ioctx.Context) (Inode, error)
	Connect(ctx *ioctx.Context, addr string) error
	Send(ctx *ioctx.Context, buf []byte) (int, error)
	Recv(ctx *ioctx.Context, buf []byte) (int, error)
}
