// Package poll implements the event-wait registry attached to inodes
// and streams: a Channel that inode implementations Signal() on every
// state change, and the Node each waiting caller registers on it.
//
// Grounded on original_source/kernel/include/sortix/kernel/poll.h:
// PollChannel keeps an intrusive list of
// PollNode, each carrying the waiter's condition variable and
// requested/observed event masks; a multi-target poll (poll(2) over
// several descriptors) chains additional targets as "slave" nodes off
// one "master" so one wakeup can satisfy a wait spanning descriptors.
package poll

import "sync"

// Events is a POLL* bitmask (POLLIN, POLLOUT, POLLERR, POLLHUP, ...).
// The concrete bit values belong to whatever ioctl/syscall layer
// constructs them; this package only ORs and tests masks.
type Events uint32

// Channel is the event-notification attachment point on an Inode.
type Channel struct {
	mu    sync.Mutex
	nodes []*Node
}

// Signal notifies every registered Node whose requested mask
// intersects events, recording events into each Node's observed mask
// and waking its (and, for a slave, its master's) waiter.
func (c *Channel) Signal(events Events) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, n := range c.nodes {
		n.wake.mu.Lock()
		if n.events&events != 0 {
			n.revents |= events & n.events
			n.wake.cond.Broadcast()
		}
		n.wake.mu.Unlock()
	}
}

// Register attaches node to this channel.
func (c *Channel) Register(n *Node) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n.channel = c
	c.nodes = append(c.nodes, n)
}

// Unregister detaches node from this channel.
func (c *Channel) Unregister(n *Node) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, x := range c.nodes {
		if x == n {
			c.nodes = append(c.nodes[:i], c.nodes[i+1:]...)
			break
		}
	}
	n.channel = nil
}

// wakeState is the condition variable a master Node and every slave
// created off it share, so that any one of them observing an event
// wakes whichever goroutine is blocked in the master's Wait.
type wakeState struct {
	mu   sync.Mutex
	cond sync.Cond
}

func newWakeState() *wakeState {
	w := &wakeState{}
	w.cond.L = &w.mu
	return w
}

// Node is a single client subscription: the events it wants, the
// events observed so far, and the shared wake state it signals
// through. A poll(2) call spanning several descriptors creates one
// master Node plus one slave per additional descriptor, all sharing
// the master's wakeState so a single Wait sees every descriptor's
// activity.
type Node struct {
	channel *Channel
	wake    *wakeState

	events  Events
	revents Events

	master *Node
	slaves []*Node
}

// NewNode creates a master Node waiting for events.
func NewNode(events Events) *Node {
	n := &Node{events: events, wake: newWakeState()}
	n.master = n
	return n
}

// CreateSlave creates a Node for an additional descriptor in the same
// multi-target poll, sharing this Node's wake state.
func (n *Node) CreateSlave(events Events) *Node {
	master := n.master
	s := &Node{events: events, wake: master.wake, master: master}
	master.wake.mu.Lock()
	master.slaves = append(master.slaves, s)
	master.wake.mu.Unlock()
	return s
}

// Revents returns the events observed so far across this node and any
// slaves it owns, without blocking.
func (n *Node) Revents() Events {
	n.wake.mu.Lock()
	defer n.wake.mu.Unlock()
	return n.reventsLocked()
}

func (n *Node) reventsLocked() Events {
	r := n.revents
	for _, s := range n.slaves {
		r |= s.revents
	}
	return r
}

// Wait blocks until this node (or any of its slaves) has observed a
// requested event, or cancel is closed.
func (n *Node) Wait(cancel <-chan struct{}) Events {
	done := make(chan struct{})
	go func() {
		select {
		case <-cancel:
			n.wake.mu.Lock()
			n.wake.cond.Broadcast()
			n.wake.mu.Unlock()
		case <-done:
		}
	}()
	defer close(done)

	n.wake.mu.Lock()
	defer n.wake.mu.Unlock()
	for n.reventsLocked() == 0 && !closed(cancel) {
		n.wake.cond.Wait()
	}
	return n.reventsLocked()
}

func closed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

// Cancel unregisters this node (and its slaves, if it is a master)
// from their channels.
func (n *Node) Cancel() {
	if n.channel != nil {
		n.channel.Unregister(n)
	}
	for _, s := range n.slaves {
		s.Cancel()
	}
}
