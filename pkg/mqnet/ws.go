package mqnet

import (
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sammck-go/asyncobj"
	"github.com/sammck-go/logger"

	"github.com/rchockxm/netmq/pkg/netmq"
)

// WSSocket adapts a websocket connection into a netmq.Socket. Each frame
// travels as one binary websocket message whose first byte carries the frame
// flags; the websocket layer provides the record boundaries, so no length
// prefix is needed.
type WSSocket struct {
	*asyncobj.Helper

	name  string
	ws    *websocket.Conn
	inbox *frameInbox

	wmu sync.Mutex
}

// NewWSSocket wraps an established websocket connection. On return the read
// pump is running and the socket is activated.
func NewWSSocket(log logger.Logger, ws *websocket.Conn, name string) *WSSocket {
	if name == "" {
		name = ws.RemoteAddr().String()
	}
	s := &WSSocket{
		name:  name,
		ws:    ws,
		inbox: newFrameInbox(),
	}
	s.Helper = asyncobj.NewHelper(log.ForkLog(fmt.Sprintf("<ws %s>", name)), s)
	s.SetIsActivated()
	go s.readPump()
	return s
}

func (s *WSSocket) String() string {
	return "<ws " + s.name + ">"
}

func (s *WSSocket) readPump() {
	for {
		mt, data, err := s.ws.ReadMessage()
		if err != nil {
			s.inbox.close(err)
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.DLog("peer closed")
				s.StartShutdown(nil)
			} else if s.IsStartedShutdown() {
				s.DLogf("read pump exiting during shutdown: %s", err)
			} else {
				s.StartShutdown(s.DLogErrorf("read failed: %s", err))
			}
			return
		}
		if mt != websocket.BinaryMessage || len(data) < 1 {
			s.StartShutdown(s.WLogErrorf("malformed websocket frame (type %d, %d bytes)", mt, len(data)))
			return
		}
		more, err := decodeFlags(data[0])
		if err != nil {
			s.StartShutdown(s.WLogErrorf("malformed websocket frame: %s", err))
			return
		}
		if !s.inbox.push(netmq.Frame{Data: data[1:], More: more}) {
			return
		}
	}
}

// Recv blocks until a frame is available; queued frames drain before the
// terminal error is reported.
func (s *WSSocket) Recv() (netmq.Frame, error) {
	return s.inbox.recv()
}

// Send transmits f as one binary websocket message.
func (s *WSSocket) Send(f netmq.Frame) error {
	if err := s.DeferShutdown(); err != nil {
		return err
	}
	defer s.UndeferShutdown()
	if len(f.Data) > MaxFramePayload {
		return fmt.Errorf("frame payload %d exceeds limit %d", len(f.Data), MaxFramePayload)
	}
	buf := make([]byte, 1+len(f.Data))
	buf[0] = encodeFlags(f)
	copy(buf[1:], f.Data)
	s.wmu.Lock()
	defer s.wmu.Unlock()
	return s.ws.WriteMessage(websocket.BinaryMessage, buf)
}

// OnReadable installs the readiness callback; it fires once per complete
// message.
func (s *WSSocket) OnReadable(fn func()) {
	s.inbox.setNotify(fn)
}

// Readable reports whether a complete message is queued.
func (s *WSSocket) Readable() bool {
	return s.inbox.hasComplete()
}

// HandleOnceShutdown closes the websocket connection, unblocking the read
// pump and any in-flight write.
func (s *WSSocket) HandleOnceShutdown(completionErr error) error {
	err := s.ws.Close()
	s.inbox.close(io.ErrClosedPipe)
	if completionErr == nil {
		completionErr = err
	}
	return completionErr
}

// Close shuts the socket down synchronously.
func (s *WSSocket) Close() error {
	s.StartShutdown(nil)
	return s.WaitShutdown()
}

var _ netmq.Socket = (*WSSocket)(nil)

// DialWS connects to a ws:// or wss:// URL with exponential-backoff retries
// and wraps the connection.
func DialWS(log logger.Logger, url string, cfg DialConfig) (*WSSocket, error) {
	d := websocket.Dialer{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		HandshakeTimeout: 45 * time.Second,
	}
	return dialWithRetry(log, cfg, url, func() (*WSSocket, error) {
		ws, _, err := d.Dial(url, nil)
		if err != nil {
			return nil, err
		}
		return NewWSSocket(log, ws, url), nil
	})
}

// UpgradeWS upgrades an inbound HTTP request to a websocket and wraps it.
// Intended for use inside an http.Handler serving the server side of a ws
// transport.
func UpgradeWS(log logger.Logger, w http.ResponseWriter, r *http.Request) (*WSSocket, error) {
	up := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	ws, err := up.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}
	return NewWSSocket(log, ws, r.RemoteAddr), nil
}
