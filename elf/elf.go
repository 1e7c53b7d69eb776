// Package elf loads an ELF executable into a process's address
// space: it maps every PT_LOAD segment with the protection bits it
// asks for and derives the Auxiliary record a thread's TLS setup
// needs from the PT_TLS segment, if any.
//
// Grounded on original_source/kernel/include/sortix/kernel/elf.h
// (ELF::Load/ELF::Auxiliary). Parsing itself uses the standard
// library's debug/elf rather than a hand-rolled header reader: no
// third-party ELF parser appears anywhere in the retrieved example
// pack, so this is the one package in this tree built on the standard
// library by necessity rather than by choice (see DESIGN.md).
package elf

import (
	"bytes"
	"debug/elf"

	"sortixkernel/kernelerr"
	"sortixkernel/mm"
)

// Auxiliary mirrors ELF::Auxiliary: the thread-local-storage template
// location and the platform's uthread control-block sizing, both of
// which a fresh thread's TLS area is built from.
type Auxiliary struct {
	TLSFileOffset uint64
	TLSFileSize   uint64
	TLSMemSize    uint64
	TLSMemAlign   uint64
	UthreadSize   uint64
	UthreadAlign  uint64
}

// Result is what Load hands back: the program's entry address and any
// Auxiliary record derived from a PT_TLS segment.
type Result struct {
	Entry uintptr
	Aux   Auxiliary
}

// protOf converts an ELF program header's read/write/execute flags
// into the mm.Prot bits PlaceSegment/AddSegment expect.
func protOf(flags elf.ProgFlag) mm.Prot {
	var p mm.Prot
	if flags&elf.PF_R != 0 {
		p |= mm.ProtUserRead
	}
	if flags&elf.PF_W != 0 {
		p |= mm.ProtUserWrite
	}
	if flags&elf.PF_X != 0 {
		p |= mm.ProtUserExec
	}
	return p
}

// Load implements ELF::Load: it reads file, maps every PT_LOAD
// segment into space (honoring its own requested base address, via
// MAP_FIXED semantics, matching position-dependent Sortix
// executables), and returns the entry address plus any TLS auxiliary
// info. copyInto is called once per PT_LOAD segment with the backing
// bytes to place at the segment's mapped address — this simulation
// has no physical page allocator, so the caller supplies where the
// segment's bytes should actually live (e.g. a plain Go slice
// standing in for physical memory).
func Load(file []byte, space *mm.AddressSpace, copyInto func(base uintptr, data []byte) error) (Result, error) {
	f, err := elf.NewFile(bytes.NewReader(file))
	if err != nil {
		return Result{}, kernelerr.New("elf.Load", kernelerr.ENOEXEC)
	}

	var result Result
	for _, prog := range f.Progs {
		switch prog.Type {
		case elf.PT_LOAD:
			if prog.Memsz == 0 {
				continue
			}
			seg := mm.Segment{
				Base: uintptr(prog.Vaddr),
				Size: uintptr(prog.Memsz),
				Prot: protOf(prog.Flags),
			}
			if _, err := space.PlaceSegment(seg.Base, seg.Size, mm.MapFixed); err != nil {
				return Result{}, kernelerr.New("elf.Load", kernelerr.ENOEXEC)
			}
			if !space.AddSegment(seg) {
				return Result{}, kernelerr.New("elf.Load", kernelerr.ENOEXEC)
			}
			data := make([]byte, prog.Memsz)
			n, err := prog.ReadAt(data[:prog.Filesz], 0)
			if err != nil && n != int(prog.Filesz) {
				return Result{}, kernelerr.New("elf.Load", kernelerr.ENOEXEC)
			}
			if copyInto != nil {
				if err := copyInto(seg.Base, data); err != nil {
					return Result{}, err
				}
			}
		case elf.PT_TLS:
			result.Aux = Auxiliary{
				TLSFileOffset: prog.Off,
				TLSFileSize:   prog.Filesz,
				TLSMemSize:    prog.Memsz,
				TLSMemAlign:   prog.Align,
			}
		}
	}

	result.Entry = uintptr(f.Entry)
	return result, nil
}
