package mqnet

import (
	"fmt"
	"net"

	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/sammck-go/asyncobj"
	"github.com/sammck-go/logger"
)

// StreamListener accepts stream sockets on a net.Listener. Accepted sockets
// are tracked until they shut down on their own; any still open when the
// listener shuts down are shut down with it.
type StreamListener struct {
	*asyncobj.Helper

	ln    net.Listener
	conns cmap.ConcurrentMap[string, *StreamSocket]
}

// NewStreamListener starts listening on network/addr (e.g. "tcp",
// "127.0.0.1:5555").
func NewStreamListener(log logger.Logger, network, addr string) (*StreamListener, error) {
	ln, err := net.Listen(network, addr)
	if err != nil {
		return nil, err
	}
	l := &StreamListener{
		ln:    ln,
		conns: cmap.New[*StreamSocket](),
	}
	l.Helper = asyncobj.NewHelper(log.ForkLog(fmt.Sprintf("<listener %s>", ln.Addr())), l)
	l.SetIsActivated()
	l.ILogf("listening on %s", ln.Addr())
	return l, nil
}

// Addr returns the bound address.
func (l *StreamListener) Addr() net.Addr {
	return l.ln.Addr()
}

// Accept blocks for the next inbound connection and wraps it in a
// StreamSocket. After shutdown starts it returns quickly with an error.
func (l *StreamListener) Accept() (*StreamSocket, error) {
	if err := l.DeferShutdown(); err != nil {
		return nil, err
	}
	defer l.UndeferShutdown()
	conn, err := l.ln.Accept()
	if err != nil {
		return nil, err
	}
	s := NewStreamSocket(l.Logger, conn, "")
	key := conn.RemoteAddr().String()
	l.conns.Set(key, s)
	go func() {
		_ = s.WaitShutdown()
		l.conns.Remove(key)
	}()
	l.DLogf("accepted %s", s)
	return s, nil
}

// Detach removes s from the listener's shutdown tracking, so the listener
// can be torn down while s lives on. Used by one-shot accept flows that keep
// a single peer and stop listening.
func (l *StreamListener) Detach(s *StreamSocket) {
	l.conns.Remove(s.conn.RemoteAddr().String())
}

// HandleOnceShutdown closes the net.Listener, unblocking Accept, then shuts
// down every socket still tracked.
func (l *StreamListener) HandleOnceShutdown(completionErr error) error {
	err := l.ln.Close()
	for _, s := range l.conns.Items() {
		s.StartShutdown(completionErr)
	}
	for _, s := range l.conns.Items() {
		_ = s.WaitShutdown()
	}
	if completionErr == nil {
		completionErr = err
	}
	return completionErr
}

// Close shuts the listener down synchronously.
func (l *StreamListener) Close() error {
	l.StartShutdown(nil)
	return l.WaitShutdown()
}

// DialStream connects to network/addr with exponential-backoff retries and
// wraps the connection in a StreamSocket.
func DialStream(log logger.Logger, network, addr string, cfg DialConfig) (*StreamSocket, error) {
	return dialWithRetry(log, cfg, addr, func() (*StreamSocket, error) {
		conn, err := net.Dial(network, addr)
		if err != nil {
			return nil, err
		}
		return NewStreamSocket(log, conn, ""), nil
	})
}
