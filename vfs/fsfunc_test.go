package vfs

import "testing"

func TestModeToDT(t *testing.T) {
	cases := []struct {
		mode Mode
		want byte
	}{
		{ModeSock, DTSock},
		{ModeLnk, DTLnk},
		{ModeReg, DTReg},
		{ModeBlk, DTBlk},
		{ModeDir, DTDir},
		{ModeChr, DTChr},
		{ModeFifo, DTFifo},
		{0, DTUnknown},
	}
	for _, c := range cases {
		if got := ModeToDT(c.mode); got != c.want {
			t.Errorf("ModeToDT(%#o) = %d, want %d", c.mode, got, c.want)
		}
	}
}

func TestSplitFinalElem(t *testing.T) {
	cases := []struct{ path, dir, final string }{
		{"", "", ""},
		{"/", "", "/"},
		{"///", "", "///"},
		{".", "", "."},
		{"test", "", "test"},
		{"test/dir", "test/", "dir"},
		{"test/dir/foo", "test/dir/", "foo"},
		{"test/dir/", "test/", "dir/"},
		{"../", "", "../"},
		{"foo///bar//test///", "foo///bar//", "test///"},
	}
	for _, c := range cases {
		dir, final := SplitFinalElem(c.path)
		if dir != c.dir || final != c.final {
			t.Errorf("SplitFinalElem(%q) = (%q, %q), want (%q, %q)",
				c.path, dir, final, c.dir, c.final)
		}
	}
}
