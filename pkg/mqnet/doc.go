// Package mqnet provides concrete netmq.Socket implementations: connected
// in-process pairs, stream sockets over net.Conn with a length-prefixed wire
// codec, and websocket sockets, plus the matching dialers and listener.
//
// All long-lived objects follow the asyncobj lifecycle: activated at
// construction, shut down asynchronously with an advisory completion error,
// joinable via WaitShutdown.
package mqnet
