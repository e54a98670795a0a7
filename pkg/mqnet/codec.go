package mqnet

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/valyala/bytebufferpool"

	"github.com/rchockxm/netmq/pkg/netmq"
)

// Wire format for stream transports, one frame per record:
//
//	[Flags:1B][Length:4B big-endian][Payload:Length bytes]
//
// Flags bit 0 is the More continuation flag; remaining bits must be zero.
// WebSocket transports reuse only the flags byte, since the websocket layer
// already delimits records.

const (
	frameHeaderLen = 5

	flagMore byte = 0x01

	// MaxFramePayload caps a single frame's payload. A peer announcing more
	// is treated as corrupt rather than driving an allocation of its choice.
	MaxFramePayload = 64 << 20
)

func encodeFlags(f netmq.Frame) byte {
	if f.More {
		return flagMore
	}
	return 0
}

func decodeFlags(b byte) (more bool, err error) {
	if b&^flagMore != 0 {
		return false, fmt.Errorf("invalid frame flags 0x%02x", b)
	}
	return b&flagMore != 0, nil
}

// writeFrame encodes f and writes it to w as a single Write call, assembling
// header and payload in a pooled buffer so small multi-part frames do not
// fragment into per-field writes on the wire.
func writeFrame(w io.Writer, f netmq.Frame) error {
	if len(f.Data) > MaxFramePayload {
		return fmt.Errorf("frame payload %d exceeds limit %d", len(f.Data), MaxFramePayload)
	}
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	var hdr [frameHeaderLen]byte
	hdr[0] = encodeFlags(f)
	binary.BigEndian.PutUint32(hdr[1:], uint32(len(f.Data)))
	_, _ = buf.Write(hdr[:])
	_, _ = buf.Write(f.Data)

	_, err := w.Write(buf.B)
	return err
}

// readFrame decodes one frame from r, blocking until the full record has
// arrived.
func readFrame(r io.Reader) (netmq.Frame, error) {
	var hdr [frameHeaderLen]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return netmq.Frame{}, err
	}
	more, err := decodeFlags(hdr[0])
	if err != nil {
		return netmq.Frame{}, err
	}
	n := binary.BigEndian.Uint32(hdr[1:])
	if n > MaxFramePayload {
		return netmq.Frame{}, fmt.Errorf("frame payload %d exceeds limit %d", n, MaxFramePayload)
	}
	data := make([]byte, n)
	if _, err := io.ReadFull(r, data); err != nil {
		return netmq.Frame{}, err
	}
	return netmq.Frame{Data: data, More: more}, nil
}
