package netmq

import "fmt"

// ConfigurationError reports an invalid proxy construction, such as an
// external reactor that does not already contain the frontend and backend
// sockets. It is raised synchronously by NewProxy before any socket I/O; the
// proxy object is never created.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "netmq: configuration: " + e.Reason
}

// LifecycleError reports a Start or Stop call made in a state that does not
// permit it. The proxy's state, socket references, and callback registrations
// are left untouched; the caller may retry or treat it as a call-ordering
// bug.
type LifecycleError struct {
	Op    string
	State State
}

func (e *LifecycleError) Error() string {
	var why string
	switch e.Op {
	case "Start":
		why = "already started"
	case "Stop":
		why = "not started"
	default:
		why = "invalid transition"
	}
	return fmt.Sprintf("netmq: %s: %s (state %s)", e.Op, why, e.State)
}

// TransportError reports a receive or send failure inside the relay routine.
// The relay abandons the in-flight message and surfaces the error through the
// reactor's fault handler; the proxy performs no reconnection or replay.
type TransportError struct {
	// Dir is the relay direction that failed.
	Dir Direction
	// Op is "recv", "send", or "tee".
	Op string
	// Sock identifies the socket the operation was issued against.
	Sock string
	// Err is the underlying transport failure.
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("netmq: relay %s: %s on %s: %s", e.Dir, e.Op, e.Sock, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
