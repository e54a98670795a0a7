// Package netmq provides the data-plane primitive of a message-passing
// broker topology: a bidirectional proxy that relays multi-part messages
// between a frontend and a backend socket, optionally teeing a verbatim copy
// of each forwarded frame to a control socket.
//
// The package defines the Socket capability consumed by the proxy, a
// single-threaded readiness Reactor, and the Proxy controller with its
// Stopped/Starting/Started/Stopping lifecycle. Concrete socket
// implementations (in-process pairs, TCP streams, websockets) live in
// pkg/mqnet.
package netmq
