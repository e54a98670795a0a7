package netmq

import "fmt"

// Frame is one segment of a multi-part message. Data is the payload and More
// indicates that additional frames of the same message follow. A Frame is
// treated as immutable once it has been received from a Socket; ownership
// passes from the socket to the caller on Recv, and from the caller to the
// socket on Send.
type Frame struct {
	Data []byte
	More bool
}

// NewFrame creates a single-segment Frame (More is false) carrying data.
func NewFrame(data []byte) Frame {
	return Frame{Data: data}
}

// NewFrameMore creates a Frame carrying data with More set, signalling that
// additional frames of the same message follow.
func NewFrameMore(data []byte) Frame {
	return Frame{Data: data, More: true}
}

// Clone returns a deep copy of the frame. The relay uses this for the control
// tee, so that ownership of the original frame can still transfer to the
// destination socket.
func (f Frame) Clone() Frame {
	d := make([]byte, len(f.Data))
	copy(d, f.Data)
	return Frame{Data: d, More: f.More}
}

func (f Frame) String() string {
	return fmt.Sprintf("<Frame %d bytes more=%v>", len(f.Data), f.More)
}

// Message is an ordered sequence of frames terminated by a frame whose More
// flag is false. It is the atomic unit of relay: frames of one message are
// never reordered, dropped, or interleaved with another message's frames on
// the same socket.
type Message []Frame

// NewMessage builds a Message from raw frame payloads, setting the More flag
// on every frame except the last. At least one part is required; a
// zero-part call yields a single empty terminal frame.
func NewMessage(parts ...[]byte) Message {
	if len(parts) == 0 {
		return Message{{}}
	}
	m := make(Message, len(parts))
	for i, p := range parts {
		m[i] = Frame{Data: p, More: i < len(parts)-1}
	}
	return m
}

// Bytes flattens the message payloads into one slice, useful for tests and
// logging. Frame boundaries are not preserved.
func (m Message) Bytes() []byte {
	var n int
	for _, f := range m {
		n += len(f.Data)
	}
	out := make([]byte, 0, n)
	for _, f := range m {
		out = append(out, f.Data...)
	}
	return out
}
