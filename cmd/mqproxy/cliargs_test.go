package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEndpointSpec(t *testing.T) {
	spec, err := ParseEndpointSpec("listen:tcp:127.0.0.1:5555")
	require.NoError(t, err)
	assert.Equal(t, "listen", spec.Mode)
	assert.Equal(t, "tcp", spec.Transport)
	assert.Equal(t, "127.0.0.1:5555", spec.Address)

	spec, err = ParseEndpointSpec("dial:ws:ws://host/relay")
	require.NoError(t, err)
	assert.Equal(t, "dial", spec.Mode)
	assert.Equal(t, "ws", spec.Transport)
	assert.Equal(t, "ws://host/relay", spec.Address)
}

func TestParseEndpointSpecRejectsBadInput(t *testing.T) {
	for _, s := range []string{
		"",
		"tcp:127.0.0.1:5555",
		"connect:tcp:127.0.0.1:5555",
		"listen:udp:127.0.0.1:5555",
		"listen:ws:ws://host/relay",
	} {
		_, err := ParseEndpointSpec(s)
		assert.Error(t, err, "spec %q should be rejected", s)
	}
}
