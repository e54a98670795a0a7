package mqnet

import (
	"sync"

	"github.com/rchockxm/netmq/pkg/netmq"
)

// frameInbox buffers inbound frames for a socket and implements the
// readiness contract: the subscribed callback fires once per complete queued
// message, at the moment a frame with More unset is pushed. recv blocks until
// a frame is available or the inbox is closed.
type frameInbox struct {
	mu     sync.Mutex
	cond   *sync.Cond
	frames []netmq.Frame

	onReadable func()

	closed   bool
	closeErr error
}

func newFrameInbox() *frameInbox {
	in := &frameInbox{}
	in.cond = sync.NewCond(&in.mu)
	return in
}

// push queues one inbound frame. Returns false if the inbox is closed and
// the frame was discarded.
func (in *frameInbox) push(f netmq.Frame) bool {
	in.mu.Lock()
	if in.closed {
		in.mu.Unlock()
		return false
	}
	in.frames = append(in.frames, f)
	notify := in.onReadable
	in.mu.Unlock()
	in.cond.Signal()
	if !f.More && notify != nil {
		notify()
	}
	return true
}

// recv dequeues the oldest frame, blocking until one is available. Once the
// inbox is closed and drained it returns the close error.
func (in *frameInbox) recv() (netmq.Frame, error) {
	in.mu.Lock()
	defer in.mu.Unlock()
	for len(in.frames) == 0 {
		if in.closed {
			return netmq.Frame{}, in.closeErr
		}
		in.cond.Wait()
	}
	f := in.frames[0]
	in.frames = in.frames[1:]
	return f, nil
}

// setNotify installs the readiness callback. If complete messages are
// already queued, the callback fires immediately once per message so a late
// subscriber does not miss traffic that arrived before registration. This
// replay, or a concurrent push firing the previous callback during the swap,
// can notify more than once for one message; consumers confirm with
// hasComplete before draining.
func (in *frameInbox) setNotify(fn func()) {
	in.mu.Lock()
	in.onReadable = fn
	var pending int
	if fn != nil {
		for _, f := range in.frames {
			if !f.More {
				pending++
			}
		}
	}
	in.mu.Unlock()
	for i := 0; i < pending; i++ {
		fn()
	}
}

// hasComplete reports whether a frame with More unset is currently queued,
// that is, whether recv can drain a full message without blocking.
func (in *frameInbox) hasComplete() bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	for _, f := range in.frames {
		if !f.More {
			return true
		}
	}
	return false
}

// close marks the inbox closed with err as the terminal recv result. Queued
// frames remain receivable; blocked receivers are woken.
func (in *frameInbox) close(err error) {
	in.mu.Lock()
	if !in.closed {
		in.closed = true
		in.closeErr = err
	}
	in.mu.Unlock()
	in.cond.Broadcast()
}
