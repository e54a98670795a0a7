package mqnet

import (
	"io"
	"sync/atomic"

	"github.com/rchockxm/netmq/pkg/netmq"
)

// PairSocket is one end of a connected in-process socket pair: the loopback
// transport. A frame sent on one end is queued, in order, on the peer's
// inbox. Pairs carry inproc chaining traffic and back most of the proxy
// tests.
type PairSocket struct {
	name   string
	inbox  *frameInbox
	peer   *PairSocket
	closed atomic.Bool
}

// NewPair creates a connected socket pair. The names are used only for
// logging and error messages.
func NewPair(nameA, nameB string) (*PairSocket, *PairSocket) {
	a := &PairSocket{name: nameA, inbox: newFrameInbox()}
	b := &PairSocket{name: nameB, inbox: newFrameInbox()}
	a.peer = b
	b.peer = a
	return a, b
}

func (s *PairSocket) String() string {
	return "<pair " + s.name + ">"
}

// Recv blocks until a frame queued by the peer is available.
func (s *PairSocket) Recv() (netmq.Frame, error) {
	return s.inbox.recv()
}

// Send queues f on the peer. It fails once either end is closed.
func (s *PairSocket) Send(f netmq.Frame) error {
	if s.closed.Load() {
		return io.ErrClosedPipe
	}
	if !s.peer.inbox.push(f) {
		return io.ErrClosedPipe
	}
	return nil
}

// OnReadable installs the readiness callback; it fires once per complete
// message queued by the peer.
func (s *PairSocket) OnReadable(fn func()) {
	s.inbox.setNotify(fn)
}

// Readable reports whether a complete message from the peer is queued.
func (s *PairSocket) Readable() bool {
	return s.inbox.hasComplete()
}

// Close tears down this end. Frames already queued locally remain
// receivable by pending Recv calls until drained; afterwards Recv returns
// io.ErrClosedPipe, as do sends from either end.
func (s *PairSocket) Close() error {
	if s.closed.CompareAndSwap(false, true) {
		s.inbox.close(io.ErrClosedPipe)
		s.peer.inbox.close(io.ErrClosedPipe)
	}
	return nil
}

var _ netmq.Socket = (*PairSocket)(nil)
