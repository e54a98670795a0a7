package netmq_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rchockxm/netmq/pkg/netmq"
)

func TestLifecycleErrorMessages(t *testing.T) {
	err := &netmq.LifecycleError{Op: "Start", State: netmq.Started}
	assert.Contains(t, err.Error(), "already started")
	assert.Contains(t, err.Error(), "Started")

	err = &netmq.LifecycleError{Op: "Stop", State: netmq.Stopped}
	assert.Contains(t, err.Error(), "not started")
}

func TestTransportErrorWrapsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := &netmq.TransportError{
		Dir:  netmq.FrontendToBackend,
		Op:   "send",
		Sock: "<stream back>",
		Err:  cause,
	}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "frontend->backend")
	assert.Contains(t, err.Error(), "send")
	assert.Contains(t, err.Error(), "<stream back>")
}

func TestStateStrings(t *testing.T) {
	assert.Equal(t, "Stopped", netmq.Stopped.String())
	assert.Equal(t, "Starting", netmq.Starting.String())
	assert.Equal(t, "Started", netmq.Started.String())
	assert.Equal(t, "Stopping", netmq.Stopping.String())
}
