package mqnet

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/sammck-go/asyncobj"
	"github.com/sammck-go/logger"

	"github.com/rchockxm/netmq/pkg/netmq"
)

// StreamSocket adapts a net.Conn into a netmq.Socket using the length-
// prefixed wire codec. A background read pump decodes inbound frames into
// the socket's inbox; Send encodes directly onto the connection. The socket
// owns the net.Conn and closes it on shutdown.
type StreamSocket struct {
	*asyncobj.Helper

	name  string
	conn  net.Conn
	br    *bufio.Reader
	inbox *frameInbox

	// wmu serializes writers; a frame must hit the wire whole.
	wmu sync.Mutex
}

// NewStreamSocket wraps conn. On return the read pump is running and the
// socket is activated. name is used for logging; if empty, the remote
// address is used.
func NewStreamSocket(log logger.Logger, conn net.Conn, name string) *StreamSocket {
	if name == "" {
		name = conn.RemoteAddr().String()
	}
	s := &StreamSocket{
		name:  name,
		conn:  conn,
		br:    bufio.NewReader(conn),
		inbox: newFrameInbox(),
	}
	s.Helper = asyncobj.NewHelper(log.ForkLog(fmt.Sprintf("<stream %s>", name)), s)
	s.SetIsActivated()
	go s.readPump()
	return s
}

func (s *StreamSocket) String() string {
	return "<stream " + s.name + ">"
}

// readPump decodes frames off the connection until it fails or reaches end
// of stream, then wakes any blocked receiver and schedules shutdown. A clean
// EOF is a normal completion, not a socket fault.
func (s *StreamSocket) readPump() {
	for {
		f, err := readFrame(s.br)
		if err != nil {
			s.inbox.close(err)
			if err == io.EOF {
				s.DLog("end of stream")
				s.StartShutdown(nil)
			} else if s.IsStartedShutdown() {
				s.DLogf("read pump exiting during shutdown: %s", err)
			} else {
				s.StartShutdown(s.DLogErrorf("read failed: %s", err))
			}
			return
		}
		if !s.inbox.push(f) {
			return
		}
	}
}

// Recv blocks until a decoded frame is available. After the peer closes or
// the socket shuts down, queued frames drain first, then the terminal error
// is returned.
func (s *StreamSocket) Recv() (netmq.Frame, error) {
	return s.inbox.recv()
}

// Send encodes f onto the connection, blocking until the transport accepts
// it. It fails once shutdown has started.
func (s *StreamSocket) Send(f netmq.Frame) error {
	if err := s.DeferShutdown(); err != nil {
		return err
	}
	defer s.UndeferShutdown()
	s.wmu.Lock()
	defer s.wmu.Unlock()
	return writeFrame(s.conn, f)
}

// OnReadable installs the readiness callback; it fires once per complete
// decoded message.
func (s *StreamSocket) OnReadable(fn func()) {
	s.inbox.setNotify(fn)
}

// Readable reports whether a complete decoded message is queued.
func (s *StreamSocket) Readable() bool {
	return s.inbox.hasComplete()
}

// HandleOnceShutdown closes the underlying connection, which unblocks the
// read pump and any in-flight write.
func (s *StreamSocket) HandleOnceShutdown(completionErr error) error {
	err := s.conn.Close()
	s.inbox.close(io.ErrClosedPipe)
	if completionErr == nil {
		completionErr = err
	}
	return completionErr
}

// Close shuts the socket down synchronously and returns the final
// completion status.
func (s *StreamSocket) Close() error {
	s.StartShutdown(nil)
	return s.WaitShutdown()
}

var _ netmq.Socket = (*StreamSocket)(nil)
