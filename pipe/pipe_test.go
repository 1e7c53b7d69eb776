package pipe

import (
	"testing"
	"time"

	"sortixkernel/ioctx"
	"sortixkernel/kernelerr"
	"sortixkernel/poll"
)

func TestWriteThenReadRoundTrips(t *testing.T) {
	r, w := NewPipe(16)
	ctx := ioctx.Kernel()

	n, err := w.Write(ctx, []byte("AB"), false)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("wrote %d bytes, want 2", n)
	}

	buf := make([]byte, 16)
	n, err = r.Read(ctx, buf, false)
	if err != nil {
		t.Fatal(err)
	}
	if string(buf[:n]) != "AB" {
		t.Fatalf("read %q, want %q", buf[:n], "AB")
	}
}

func TestReadBlocksUntilWriteArrives(t *testing.T) {
	r, w := NewPipe(16)
	ctx := ioctx.Kernel()

	done := make(chan string, 1)
	go func() {
		buf := make([]byte, 16)
		n, err := r.Read(ctx, buf, false)
		if err != nil {
			t.Error(err)
			return
		}
		done <- string(buf[:n])
	}()

	time.Sleep(5 * time.Millisecond)
	w.Write(ctx, []byte("hi"), false)

	select {
	case got := <-done:
		if got != "hi" {
			t.Fatalf("got %q, want %q", got, "hi")
		}
	case <-time.After(time.Second):
		t.Fatal("Read never woke on Write")
	}
}

func TestReadReturnsEOFAfterWriterDisconnects(t *testing.T) {
	r, w := NewPipe(16)
	ctx := ioctx.Kernel()
	w.Disconnect()

	buf := make([]byte, 16)
	n, err := r.Read(ctx, buf, false)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("n = %d, want 0 (EOF)", n)
	}
}

func TestWriteAfterReaderDisconnectReturnsEPIPE(t *testing.T) {
	r, w := NewPipe(16)
	ctx := ioctx.Kernel()
	r.Disconnect()

	_, err := w.Write(ctx, []byte("x"), false)
	if !kernelerr.Is(err, kernelerr.EPIPE) {
		t.Fatalf("err = %v, want EPIPE", err)
	}
}

func TestNonblockingReadReturnsEAGAINWhenEmpty(t *testing.T) {
	r, w := NewPipe(16)
	_ = w
	ctx := ioctx.Kernel()

	buf := make([]byte, 16)
	_, err := r.Read(ctx, buf, true)
	if !kernelerr.Is(err, kernelerr.EAGAIN) {
		t.Fatalf("err = %v, want EAGAIN", err)
	}
}

func TestPollSeesDataAfterWrite(t *testing.T) {
	r, w := NewPipe(16)
	ctx := ioctx.Kernel()

	node := poll.NewNode(PollIn)
	r.Poll(node)

	w.Write(ctx, []byte("z"), false)

	if rev := node.Wait(nil); rev&PollIn == 0 {
		t.Fatalf("revents = %x, want PollIn set", rev)
	}
}
