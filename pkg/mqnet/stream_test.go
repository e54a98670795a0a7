package mqnet_test

import (
	"net"
	"os"
	"testing"
	"time"

	"github.com/sammck-go/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rchockxm/netmq/pkg/mqnet"
	"github.com/rchockxm/netmq/pkg/netmq"
)

func newTestLogger(t *testing.T) logger.Logger {
	lg, err := logger.New(
		logger.WithWriter(os.Stderr),
		logger.WithLogLevel(logger.LogLevelError),
		logger.WithPrefix(t.Name()),
	)
	require.NoError(t, err)
	return lg
}

// newStreamPipe wraps both ends of a net.Pipe in stream sockets.
func newStreamPipe(t *testing.T) (*mqnet.StreamSocket, *mqnet.StreamSocket) {
	ca, cb := net.Pipe()
	lg := newTestLogger(t)
	a := mqnet.NewStreamSocket(lg, ca, "a")
	b := mqnet.NewStreamSocket(lg, cb, "b")
	t.Cleanup(func() {
		_ = a.Close()
		_ = b.Close()
	})
	return a, b
}

func recvFrame(t *testing.T, s netmq.Socket) netmq.Frame {
	type result struct {
		f   netmq.Frame
		err error
	}
	ch := make(chan result, 1)
	go func() {
		f, err := s.Recv()
		ch <- result{f, err}
	}()
	select {
	case r := <-ch:
		require.NoError(t, r.err)
		return r.f
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out receiving from %s", s)
		return netmq.Frame{}
	}
}

func TestStreamSocketRoundTrip(t *testing.T) {
	a, b := newStreamPipe(t)

	msg := netmq.NewMessage([]byte("alpha"), []byte("beta"))
	for _, f := range msg {
		require.NoError(t, a.Send(f))
	}

	got := recvFrame(t, b)
	assert.Equal(t, []byte("alpha"), got.Data)
	assert.True(t, got.More)

	got = recvFrame(t, b)
	assert.Equal(t, []byte("beta"), got.Data)
	assert.False(t, got.More)

	// And the reverse direction over the same pipe.
	require.NoError(t, b.Send(netmq.NewFrame([]byte("reply"))))
	got = recvFrame(t, a)
	assert.Equal(t, []byte("reply"), got.Data)
}

func TestStreamSocketReadinessAcrossWire(t *testing.T) {
	a, b := newStreamPipe(t)

	ready := make(chan struct{}, 4)
	b.OnReadable(func() { ready <- struct{}{} })

	require.NoError(t, a.Send(netmq.NewFrameMore([]byte("head"))))
	select {
	case <-ready:
		t.Fatal("readiness fired before the message was complete")
	case <-time.After(50 * time.Millisecond):
	}

	require.NoError(t, a.Send(netmq.NewFrame([]byte("tail"))))
	select {
	case <-ready:
	case <-time.After(time.Second):
		t.Fatal("readiness never fired for a complete message")
	}
}

func TestStreamSocketCloseUnblocksPeer(t *testing.T) {
	a, b := newStreamPipe(t)

	errCh := make(chan error, 1)
	go func() {
		_, err := b.Recv()
		errCh <- err
	}()

	require.NoError(t, a.Close())
	select {
	case err := <-errCh:
		require.Error(t, err)
	case <-time.After(time.Second):
		t.Fatal("peer Recv still blocked after close")
	}

	err := a.Send(netmq.NewFrame([]byte("late")))
	require.Error(t, err, "send after close must fail")
}

func TestStreamListenerAcceptAndDial(t *testing.T) {
	lg := newTestLogger(t)
	l, err := mqnet.NewStreamListener(lg, "tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })

	type accepted struct {
		s   *mqnet.StreamSocket
		err error
	}
	acceptCh := make(chan accepted, 1)
	go func() {
		s, err := l.Accept()
		acceptCh <- accepted{s, err}
	}()

	client, err := mqnet.DialStream(lg, "tcp", l.Addr().String(), mqnet.DialConfig{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	acc := <-acceptCh
	require.NoError(t, acc.err)
	server := acc.s

	require.NoError(t, client.Send(netmq.NewFrame([]byte("hello"))))
	assert.Equal(t, []byte("hello"), recvFrame(t, server).Data)

	require.NoError(t, server.Send(netmq.NewFrame([]byte("welcome"))))
	assert.Equal(t, []byte("welcome"), recvFrame(t, client).Data)
}

func TestStreamListenerDetachedSocketSurvivesShutdown(t *testing.T) {
	lg := newTestLogger(t)
	l, err := mqnet.NewStreamListener(lg, "tcp", "127.0.0.1:0")
	require.NoError(t, err)

	type accepted struct {
		s   *mqnet.StreamSocket
		err error
	}
	acceptCh := make(chan accepted, 1)
	go func() {
		s, err := l.Accept()
		acceptCh <- accepted{s, err}
	}()

	client, err := mqnet.DialStream(lg, "tcp", l.Addr().String(), mqnet.DialConfig{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	acc := <-acceptCh
	require.NoError(t, acc.err)
	server := acc.s
	t.Cleanup(func() { _ = server.Close() })

	// One-peer accept flow: keep the socket, tear the listener down.
	l.Detach(server)
	require.NoError(t, l.Close())

	require.NoError(t, client.Send(netmq.NewFrame([]byte("ping"))))
	assert.Equal(t, []byte("ping"), recvFrame(t, server).Data)
	require.NoError(t, server.Send(netmq.NewFrame([]byte("pong"))))
	assert.Equal(t, []byte("pong"), recvFrame(t, client).Data)
}

func TestStreamListenerShutdownStopsAccept(t *testing.T) {
	lg := newTestLogger(t)
	l, err := mqnet.NewStreamListener(lg, "tcp", "127.0.0.1:0")
	require.NoError(t, err)

	errCh := make(chan error, 1)
	go func() {
		_, err := l.Accept()
		errCh <- err
	}()

	require.NoError(t, l.Close())
	select {
	case err := <-errCh:
		require.Error(t, err)
	case <-time.After(time.Second):
		t.Fatal("Accept still blocked after listener close")
	}

	_, err = l.Accept()
	require.Error(t, err, "accept after shutdown must fail fast")
}

func TestDialStreamGivesUpWithoutRetryBudget(t *testing.T) {
	lg := newTestLogger(t)

	// Grab a port and close it again so the dial target refuses connections.
	probe, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := probe.Addr().String()
	require.NoError(t, probe.Close())

	start := time.Now()
	_, err = mqnet.DialStream(lg, "tcp", addr, mqnet.DialConfig{MaxRetryCount: 0})
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second, "a zero retry budget must not back off")
}
