package netmq

import "fmt"

// Socket is the capability the proxy requires of a message endpoint. It is
// intentionally minimal: blocking receive of one frame, blocking send of one
// frame, and a readiness subscription. Implementations live in pkg/mqnet
// (in-process pairs, stream sockets over net.Conn, websocket sockets); the
// proxy itself never dials, listens, or closes a socket; it holds non-owning
// references for the duration of a Start/Stop cycle.
//
// Sockets are not required to be safe for concurrent Recv or concurrent Send
// from multiple goroutines. The reactor's single-threaded dispatch guarantees
// that at most one relay handler touches a socket at a time.
type Socket interface {
	fmt.Stringer

	// Recv blocks until one frame is available and returns it. The returned
	// frame is owned by the caller.
	Recv() (Frame, error)

	// Send blocks until the frame has been accepted for delivery. The frame's
	// More flag travels with it, so a multi-part message sent frame-by-frame
	// is reconstructed intact by the peer.
	Send(f Frame) error

	// OnReadable installs fn as the socket's readiness callback, replacing
	// any previous subscription; nil clears it. The callback fires when a
	// complete message becomes available (that is, when a frame with More
	// unset is queued), never once per frame. Replacing the subscription
	// while frames are arriving may replay the callback for messages still
	// queued, so a wakeup is a hint to be confirmed with Readable, not a
	// guarantee of an undrained message.
	//
	// The callback may be invoked from the socket's internal goroutines and
	// must not block.
	OnReadable(fn func())

	// Readable reports whether at least one complete message is currently
	// queued for Recv. Consumers check it on wakeup so a replayed
	// notification does not leave them blocked in Recv.
	Readable() bool
}
