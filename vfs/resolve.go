package vfs

import (
	"strings"

	"sortixkernel/ioctx"
	"sortixkernel/kernelerr"
)

// Resolve implements spec.md §4.4's path-resolution walk: "Absolute
// paths resolve from the process's root; relative from its working
// descriptor", one path element at a time through DirLookuper, with
// MountTable consulted at every step — "a lookup that traverses into
// a directory whose (dev,ino) matches a mount entry continues from
// the mounted root" — so a resolution crossing a mount point lands in
// the mounted filesystem transparently.
//
// root and cwd are the process's Root/Cwd descriptors; mounts is its
// MountTable (nil is treated as "no mounts", so callers that haven't
// wired mounting yet still resolve plain paths). An empty path or "."
// resolves to the starting inode itself.
func Resolve(ctx *ioctx.Context, root, cwd *Descriptor, mounts *MountTable, path string) (Inode, error) {
	var cur Inode
	switch {
	case strings.HasPrefix(path, "/"):
		if root == nil {
			return nil, kernelerr.New("vfs.Resolve", kernelerr.ENOENT)
		}
		cur = root.Inode
	default:
		if cwd == nil {
			return nil, kernelerr.New("vfs.Resolve", kernelerr.ENOENT)
		}
		cur = cwd.Inode
	}
	cur = mountRedirect(ctx, mounts, cur)

	for _, elem := range strings.Split(path, "/") {
		if elem == "" || elem == "." {
			continue
		}
		lookuper, ok := cur.(DirLookuper)
		if !ok {
			return nil, kernelerr.New("vfs.Resolve", kernelerr.ENOTDIR)
		}
		next, err := lookuper.Lookup(ctx, elem)
		if err != nil {
			return nil, err
		}
		cur = mountRedirect(ctx, mounts, next)
	}
	return cur, nil
}

// mountRedirect tests ino's (dev,ino) against mounts, returning the
// mounted filesystem's root in its place on a hit and ino unchanged
// otherwise.
func mountRedirect(ctx *ioctx.Context, mounts *MountTable, ino Inode) Inode {
	if mounts == nil || ino == nil {
		return ino
	}
	st, err := ino.Stat(ctx)
	if err != nil {
		return ino
	}
	if target, ok := mounts.Lookup(st.Dev, st.Ino); ok {
		return target
	}
	return ino
}
