// Package vfs implements the virtual filesystem layer: the
// polymorphic Inode operation set, per-process file descriptor
// tables, the mount table, and the path-splitting utilities syscalls
// build on before resolving a path.
//
// Grounded on original_source/kernel/fsfunc.cpp, dtable.h, mtable.h,
// and mtable.cpp.
package vfs

import "strings"

// Mode is a subset of a stat(2) mode_t: the file-type bits ModeToDT
// inspects. Only the type bits matter here; permission bits are
// irrelevant to directory-entry typing.
type Mode uint32

const (
	ModeSock Mode = 0o140000
	ModeLnk  Mode = 0o120000
	ModeReg  Mode = 0o100000
	ModeBlk  Mode = 0o060000
	ModeDir  Mode = 0o040000
	ModeChr  Mode = 0o020000
	ModeFifo Mode = 0o010000
	modeFmt  Mode = 0o170000
)

// Directory-entry type constants, matching <sortix/dirent.h>'s DT_*.
const (
	DTUnknown = 0
	DTFifo    = 1
	DTChr     = 2
	DTDir     = 4
	DTBlk     = 6
	DTReg     = 8
	DTLnk     = 10
	DTSock    = 12
)

// ModeToDT converts a stat mode's type bits into a dirent d_type,
// carrying ModeToDT's fixed S_ISxxx precedence order unchanged.
func ModeToDT(mode Mode) byte {
	switch mode & modeFmt {
	case ModeSock:
		return DTSock
	case ModeLnk:
		return DTLnk
	case ModeReg:
		return DTReg
	case ModeBlk:
		return DTBlk
	case ModeDir:
		return DTDir
	case ModeChr:
		return DTChr
	case ModeFifo:
		return DTFifo
	default:
		return DTUnknown
	}
}

// SplitFinalElem splits path into (dir, final) exactly as
// SplitFinalElem does: final is the last "/"-separated element
// together with any trailing slashes, dir is everything before it.
// Notable edge cases carried over verbatim:
//
//	""                  -> "",          ""
//	"/"                 -> "",          "/"
//	"///"               -> "",          "///"
//	"."                 -> "",          "."
//	"test"              -> "",          "test"
//	"test/dir"          -> "test/",     "dir"
//	"test/dir/foo"      -> "test/dir/", "foo"
//	"test/dir/"         -> "test/",     "dir/"
//	"../"               -> "",          "../"
//	"foo///bar//test///" -> "foo///bar//", "test///"
func SplitFinalElem(path string) (dir, final string) {
	splitAt := len(path)
	for splitAt > 0 && path[splitAt-1] == '/' {
		splitAt--
	}
	for splitAt > 0 && path[splitAt-1] != '/' {
		splitAt--
	}
	return path[:splitAt], path[splitAt:]
}

// CleanJoin joins base and elem with a single "/" between them
// (none is added if base is empty or already ends in "/"); an
// absolute elem replaces base. It works on strings only: "." and ".."
// elements are kept as written, not resolved.
func CleanJoin(base, elem string) string {
	if strings.HasPrefix(elem, "/") {
		return elem
	}
	if base == "" || strings.HasSuffix(base, "/") {
		return base + elem
	}
	return base + "/" + elem
}
