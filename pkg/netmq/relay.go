package netmq

// Direction identifies which way a relay invocation is forwarding.
type Direction int

const (
	// FrontendToBackend labels relays triggered by frontend readiness.
	FrontendToBackend Direction = iota
	// BackendToFrontend labels relays triggered by backend readiness.
	BackendToFrontend
)

func (d Direction) String() string {
	if d == FrontendToBackend {
		return "frontend->backend"
	}
	return "backend->frontend"
}

// relayMessage drains exactly one complete message from src and re-emits it
// on dst, frame boundaries and More flags intact. If ctl is non-nil, a clone
// of each frame is sent to it before the destination send, so the control
// stream reconstructs an identical multi-part message and sees each frame no
// later than the destination does. A slow control socket stalls the relay.
//
// The readiness contract guarantees all frames of one message are already
// queued when this runs, so Recv never stalls the reactor turn. Wakeups can
// be replayed when the readiness subscription is swapped mid-stream, so an
// invocation that finds no complete message queued returns without
// receiving. On any failure the in-flight message is abandoned and a
// TransportError is returned for the reactor's fault path; no repair is
// attempted.
func (p *Proxy) relayMessage(dir Direction, src, dst, ctl Socket) error {
	if !src.Readable() {
		// Replayed wakeup; the message it announced was already drained.
		return nil
	}
	for {
		f, err := src.Recv()
		if err != nil {
			return &TransportError{Dir: dir, Op: "recv", Sock: src.String(), Err: err}
		}
		if ctl != nil {
			if err := ctl.Send(f.Clone()); err != nil {
				return &TransportError{Dir: dir, Op: "tee", Sock: ctl.String(), Err: err}
			}
		}
		last := !f.More
		nb := len(f.Data)
		if err := dst.Send(f); err != nil {
			return &TransportError{Dir: dir, Op: "send", Sock: dst.String(), Err: err}
		}
		p.stats.countFrame(dir, nb, last)
		if p.metrics != nil {
			p.metrics.countFrame(dir, nb, last)
		}
		if last {
			p.TLogf("relayed message %s", dir)
			return nil
		}
	}
}
