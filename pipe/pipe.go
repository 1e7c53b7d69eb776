// Package pipe implements the embeddable one-way data stream shared
// by anonymous pipes and other in-kernel byte channels.
//
// Grounded on original_source/kernel/include/sortix/kernel/pipe.h:
// PipeChannel is the shared ring buffer two PipeEndpoint values read
// and write through, one in each direction.
package pipe

import (
	"sync"

	"sortixkernel/ioctx"
	"sortixkernel/kernelerr"
	"sortixkernel/poll"
)

const (
	// PollIn/PollOut/PollHup mirror POLLIN/POLLOUT/POLLHUP; the poll
	// package leaves bit values to its users, so pipe defines its own.
	PollIn  poll.Events = 1 << 0
	PollOut poll.Events = 1 << 2
	PollHup poll.Events = 1 << 3
)

// Channel is the ring buffer backing a pipe: one writer endpoint, one
// reader endpoint, a fixed-capacity byte buffer and a condition
// variable any blocking read/write waits on.
type Channel struct {
	mu   sync.Mutex
	cond sync.Cond

	buf   []byte
	start int
	len   int

	readers, writers int
	poll             poll.Channel
}

// DefaultCapacity is the ring buffer size a freshly connected pipe
// gets, matching a typical PIPE_BUF-scale kernel pipe.
const DefaultCapacity = 64 * 1024

// NewChannel allocates a ring buffer of the given capacity.
func NewChannel(capacity int) *Channel {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	c := &Channel{buf: make([]byte, capacity)}
	c.cond.L = &c.mu
	return c
}

func (c *Channel) readable() bool { return c.len > 0 || c.writers == 0 }
func (c *Channel) writable() bool { return c.len < len(c.buf) || c.readers == 0 }

func (c *Channel) events() poll.Events {
	var e poll.Events
	if c.len > 0 {
		e |= PollIn
	}
	if c.len < len(c.buf) && c.readers > 0 {
		e |= PollOut
	}
	if c.readers == 0 || c.writers == 0 {
		e |= PollHup
	}
	return e
}

// Endpoint is one end of a Channel: reading or writing.
type Endpoint struct {
	channel *Channel
	reading bool
	closed  bool
}

// NewPipe creates a connected pair of endpoints sharing a fresh
// Channel, matching PipeEndpoint::Connect wiring a reader and a
// writer together.
func NewPipe(capacity int) (reader, writer *Endpoint) {
	c := NewChannel(capacity)
	c.readers = 1
	c.writers = 1
	reader = &Endpoint{channel: c, reading: true}
	writer = &Endpoint{channel: c, reading: false}
	return reader, writer
}

// Disconnect implements PipeEndpoint::Disconnect: this endpoint is
// going away, so the other side sees EOF/EPIPE and anyone polling the
// channel is woken.
func (e *Endpoint) Disconnect() {
	if e.closed {
		return
	}
	e.closed = true
	c := e.channel
	c.mu.Lock()
	if e.reading {
		c.readers--
	} else {
		c.writers--
	}
	c.cond.Broadcast()
	ev := c.events()
	c.mu.Unlock()
	c.poll.Signal(ev)
}

// Read implements PipeEndpoint::read: blocks until data is available
// or the write end has disconnected (EOF), unless the caller's
// non-blocking flag is set.
func (e *Endpoint) Read(ctx *ioctx.Context, buf []byte, nonblock bool) (int, error) {
	if !e.reading {
		return 0, kernelerr.New("pipe.Read", kernelerr.EBADF)
	}
	c := e.channel
	c.mu.Lock()
	for c.len == 0 && c.writers > 0 {
		if nonblock {
			c.mu.Unlock()
			return 0, kernelerr.New("pipe.Read", kernelerr.EAGAIN)
		}
		c.cond.Wait()
	}
	if c.len == 0 {
		c.mu.Unlock()
		return 0, nil // EOF
	}
	n := len(buf)
	if n > c.len {
		n = c.len
	}
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[i] = c.buf[(c.start+i)%len(c.buf)]
	}
	c.start = (c.start + n) % len(c.buf)
	c.len -= n
	c.cond.Broadcast()
	ev := c.events()
	c.mu.Unlock()
	c.poll.Signal(ev)

	if err := ctx.CopyToDest(buf[:n], out); err != nil {
		return 0, err
	}
	return n, nil
}

// Write implements PipeEndpoint::write: blocks until room is
// available or the read end has disconnected, in which case it
// returns EPIPE (the caller raises SIGPIPE per the usual signal
// delivery rules).
func (e *Endpoint) Write(ctx *ioctx.Context, buf []byte, nonblock bool) (int, error) {
	if e.reading {
		return 0, kernelerr.New("pipe.Write", kernelerr.EBADF)
	}
	if len(buf) == 0 {
		return 0, nil
	}
	c := e.channel

	c.mu.Lock()
	if c.readers == 0 {
		c.mu.Unlock()
		return 0, kernelerr.New("pipe.Write", kernelerr.EPIPE)
	}
	c.mu.Unlock()

	in := make([]byte, len(buf))
	if err := ctx.CopyFromSrc(in, buf); err != nil {
		return 0, err
	}

	written := 0
	c.mu.Lock()
	for written < len(in) {
		for c.len == len(c.buf) && c.readers > 0 {
			if nonblock {
				if written > 0 {
					goto done
				}
				c.mu.Unlock()
				return 0, kernelerr.New("pipe.Write", kernelerr.EAGAIN)
			}
			c.cond.Wait()
		}
		if c.readers == 0 {
			if written > 0 {
				goto done
			}
			c.mu.Unlock()
			return 0, kernelerr.New("pipe.Write", kernelerr.EPIPE)
		}
		free := len(c.buf) - c.len
		n := len(in) - written
		if n > free {
			n = free
		}
		base := (c.start + c.len) % len(c.buf)
		for i := 0; i < n; i++ {
			c.buf[(base+i)%len(c.buf)] = in[written+i]
		}
		c.len += n
		written += n
		c.cond.Broadcast()
	}
done:
	ev := c.events()
	c.mu.Unlock()
	c.poll.Signal(ev)
	return written, nil
}

// Poll implements PipeEndpoint::poll: registers node on the channel's
// poll.Channel and primes it with events already satisfied.
func (e *Endpoint) Poll(node *poll.Node) {
	c := e.channel
	c.mu.Lock()
	ev := c.events()
	c.mu.Unlock()
	c.poll.Register(node)
	if ev != 0 {
		c.poll.Signal(ev)
	}
}
