package elf

import (
	"bytes"
	"encoding/binary"
	"testing"

	"sortixkernel/mm"
)

// buildMinimalELF hand-assembles the smallest valid ELF64 executable
// debug/elf will parse: one PT_LOAD segment holding data, mapped at
// vaddr, with the given entry point.
func buildMinimalELF(t *testing.T, data []byte, vaddr, entry uint64) []byte {
	t.Helper()
	const ehsize = 64
	const phentsize = 56
	offset := uint64(ehsize + phentsize)

	var buf bytes.Buffer

	ident := [16]byte{0x7f, 'E', 'L', 'F', 2 /* ELFCLASS64 */, 1 /* ELFDATA2LSB */, 1 /* EV_CURRENT */, 0}
	buf.Write(ident[:])
	binary.Write(&buf, binary.LittleEndian, uint16(2))  // e_type = ET_EXEC
	binary.Write(&buf, binary.LittleEndian, uint16(62)) // e_machine = EM_X86_64
	binary.Write(&buf, binary.LittleEndian, uint32(1))  // e_version
	binary.Write(&buf, binary.LittleEndian, entry)      // e_entry
	binary.Write(&buf, binary.LittleEndian, uint64(ehsize)) // e_phoff
	binary.Write(&buf, binary.LittleEndian, uint64(0))  // e_shoff
	binary.Write(&buf, binary.LittleEndian, uint32(0))  // e_flags
	binary.Write(&buf, binary.LittleEndian, uint16(ehsize))
	binary.Write(&buf, binary.LittleEndian, uint16(phentsize))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // e_phnum
	binary.Write(&buf, binary.LittleEndian, uint16(0)) // e_shentsize
	binary.Write(&buf, binary.LittleEndian, uint16(0)) // e_shnum
	binary.Write(&buf, binary.LittleEndian, uint16(0)) // e_shstrndx

	binary.Write(&buf, binary.LittleEndian, uint32(1)) // p_type = PT_LOAD
	binary.Write(&buf, binary.LittleEndian, uint32(5)) // p_flags = R|X
	binary.Write(&buf, binary.LittleEndian, offset)    // p_offset
	binary.Write(&buf, binary.LittleEndian, vaddr)     // p_vaddr
	binary.Write(&buf, binary.LittleEndian, vaddr)     // p_paddr
	binary.Write(&buf, binary.LittleEndian, uint64(len(data))) // p_filesz
	binary.Write(&buf, binary.LittleEndian, uint64(len(data))) // p_memsz
	binary.Write(&buf, binary.LittleEndian, uint64(0x1000))    // p_align

	buf.Write(data)
	return buf.Bytes()
}

func TestLoadMapsSegmentAndReturnsEntry(t *testing.T) {
	payload := []byte{0x90, 0x90, 0xc3} // nop; nop; ret
	file := buildMinimalELF(t, payload, 0x400000, 0x400000)

	space := mm.NewAddressSpace()
	var copied []byte
	var copiedBase uintptr
	result, err := Load(file, space, func(base uintptr, data []byte) error {
		copiedBase = base
		copied = append([]byte(nil), data...)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.Entry != 0x400000 {
		t.Fatalf("Entry = %#x, want %#x", result.Entry, 0x400000)
	}
	if copiedBase != 0x400000 {
		t.Fatalf("copyInto base = %#x, want %#x", copiedBase, 0x400000)
	}
	if !bytes.Equal(copied[:len(payload)], payload) {
		t.Fatalf("copied payload = %v, want %v", copied[:len(payload)], payload)
	}

	segs := space.Segments()
	if len(segs) != 1 || segs[0].Base != 0x400000 {
		t.Fatalf("address space segments = %+v", segs)
	}
	if segs[0].Prot&mm.ProtUserExec == 0 {
		t.Fatal("PT_LOAD segment with PF_X should carry ProtUserExec")
	}
}

func TestLoadRejectsGarbage(t *testing.T) {
	space := mm.NewAddressSpace()
	if _, err := Load([]byte("not an elf file"), space, nil); err == nil {
		t.Fatal("expected an error loading garbage input")
	}
}
