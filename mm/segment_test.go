package mm

import "testing"

func TestAddSegmentRejectsOverlap(t *testing.T) {
	a := NewAddressSpace()
	if !a.AddSegment(Segment{Base: 0x1000, Size: 0x1000}) {
		t.Fatal("first insert should succeed")
	}
	if a.AddSegment(Segment{Base: 0x1800, Size: 0x100}) {
		t.Fatal("overlapping insert should be rejected")
	}
	if !a.AddSegment(Segment{Base: 0x2000, Size: 0x100}) {
		t.Fatal("adjacent non-overlapping insert should succeed")
	}
}

func TestSegmentsStaySorted(t *testing.T) {
	a := NewAddressSpace()
	a.AddSegment(Segment{Base: 0x3000, Size: 0x100})
	a.AddSegment(Segment{Base: 0x1000, Size: 0x100})
	a.AddSegment(Segment{Base: 0x2000, Size: 0x100})

	segs := a.Segments()
	for i := 1; i < len(segs); i++ {
		if !less(segs[i-1], segs[i]) {
			t.Fatalf("segments out of order: %+v", segs)
		}
	}
}

func TestPlaceSegmentFirstFit(t *testing.T) {
	a := NewAddressSpace()
	a.AddSegment(Segment{Base: 0x1000, Size: 0x1000}) // [0x1000, 0x2000)
	a.AddSegment(Segment{Base: 0x4000, Size: 0x1000}) // [0x4000, 0x5000)

	got, err := a.PlaceSegment(0, 0x1000, 0)
	if err != nil {
		t.Fatal(err)
	}
	if got.Base != 0 {
		t.Fatalf("expected first-fit at address 0, got %#x", got.Base)
	}

	got, err = a.PlaceSegment(0, 0x2000, 0)
	if err != nil {
		t.Fatal(err)
	}
	if got.Base != 0x2000 {
		t.Fatalf("expected gap between segments at 0x2000, got %#x", got.Base)
	}
}

func TestPlaceSegmentFixedMustMatchExactly(t *testing.T) {
	a := NewAddressSpace()
	a.AddSegment(Segment{Base: 0x1000, Size: 0x1000})

	if _, err := a.PlaceSegment(0x1800, 0x100, MapFixed); err == nil {
		t.Fatal("MAP_FIXED into an occupied range should fail")
	}
	got, err := a.PlaceSegment(0x5000, 0x100, MapFixed)
	if err != nil {
		t.Fatal(err)
	}
	if got.Base != 0x5000 {
		t.Fatalf("MAP_FIXED returned base %#x, want 0x5000", got.Base)
	}
}

func TestContainsRequiresFullCoverageAndProt(t *testing.T) {
	a := NewAddressSpace()
	a.AddSegment(Segment{Base: 0x1000, Size: 0x1000, Prot: ProtUserRead | ProtUserWrite})

	if !a.Contains(0x1000, 0x100, ProtUserRead) {
		t.Fatal("expected containment with matching prot")
	}
	if a.Contains(0x1000, 0x100, ProtUserExec) {
		t.Fatal("expected failure: exec not granted")
	}
	if a.Contains(0x1F00, 0x200, ProtUserRead) {
		t.Fatal("expected failure: range spans past the segment")
	}
}
