package mqnet

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rchockxm/netmq/pkg/netmq"
)

func TestFrameCodecRoundTrip(t *testing.T) {
	var buf bytes.Buffer

	in := []netmq.Frame{
		netmq.NewFrameMore([]byte("first")),
		netmq.NewFrameMore(nil),
		netmq.NewFrame([]byte("last")),
	}
	for _, f := range in {
		require.NoError(t, writeFrame(&buf, f))
	}

	for _, want := range in {
		got, err := readFrame(&buf)
		require.NoError(t, err)
		assert.Equal(t, want.More, got.More)
		assert.Equal(t, len(want.Data), len(got.Data))
		assert.Equal(t, []byte(want.Data), append([]byte{}, got.Data...))
	}

	_, err := readFrame(&buf)
	assert.Equal(t, io.EOF, err, "drained stream reports EOF")
}

func TestReadFrameRejectsUnknownFlags(t *testing.T) {
	record := []byte{0x02, 0, 0, 0, 0}
	_, err := readFrame(bytes.NewReader(record))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid frame flags")
}

func TestReadFrameRejectsOversizedPayload(t *testing.T) {
	var hdr [frameHeaderLen]byte
	binary.BigEndian.PutUint32(hdr[1:], uint32(MaxFramePayload+1))
	_, err := readFrame(bytes.NewReader(hdr[:]))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds limit")
}

func TestReadFrameTruncatedPayload(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeFrame(&buf, netmq.NewFrame([]byte("payload"))))
	truncated := buf.Bytes()[:buf.Len()-2]

	_, err := readFrame(bytes.NewReader(truncated))
	assert.Equal(t, io.ErrUnexpectedEOF, err)
}

type writeCounter struct {
	bytes.Buffer
	calls int
}

func (w *writeCounter) Write(p []byte) (int, error) {
	w.calls++
	return w.Buffer.Write(p)
}

func TestWriteFrameEmitsOneRecordPerWrite(t *testing.T) {
	var w writeCounter
	require.NoError(t, writeFrame(&w, netmq.NewFrameMore([]byte("abc"))))
	assert.Equal(t, 1, w.calls, "header and payload must hit the wire together")
	assert.Equal(t, frameHeaderLen+3, w.Len())
}

func TestDialConfigNormalized(t *testing.T) {
	cfg := DialConfig{MaxRetryInterval: 0}.normalized()
	assert.Equal(t, 30*time.Second, cfg.MaxRetryInterval)

	cfg = DialConfig{MaxRetryInterval: 5 * time.Second}.normalized()
	assert.Equal(t, 5*time.Second, cfg.MaxRetryInterval)
}
