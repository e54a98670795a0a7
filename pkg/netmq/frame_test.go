package netmq_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rchockxm/netmq/pkg/netmq"
)

func TestNewMessageFlagsAllButLastFrame(t *testing.T) {
	m := netmq.NewMessage([]byte("a"), []byte("b"), []byte("c"))
	require.Len(t, m, 3)
	assert.True(t, m[0].More)
	assert.True(t, m[1].More)
	assert.False(t, m[2].More)

	single := netmq.NewMessage([]byte("only"))
	require.Len(t, single, 1)
	assert.False(t, single[0].More)

	empty := netmq.NewMessage()
	require.Len(t, empty, 1, "a zero-part message is one empty terminal frame")
	assert.Empty(t, empty[0].Data)
	assert.False(t, empty[0].More)
}

func TestFrameCloneIsDeep(t *testing.T) {
	orig := netmq.NewFrameMore([]byte("payload"))
	dup := orig.Clone()

	assert.Equal(t, orig.Data, dup.Data)
	assert.Equal(t, orig.More, dup.More)

	// Mutating the original must not leak into the copy; the tee hands the
	// clone to the control socket while the destination owns the original.
	orig.Data[0] = 'X'
	assert.Equal(t, byte('p'), dup.Data[0])
}

func TestMessageBytesConcatenatesPayloads(t *testing.T) {
	m := netmq.NewMessage([]byte("foo"), []byte(""), []byte("bar"))
	assert.Equal(t, []byte("foobar"), m.Bytes())
}
