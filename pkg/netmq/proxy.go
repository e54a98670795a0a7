package netmq

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sammck-go/logger"
)

// Proxy is a bidirectional message relay between a frontend and a backend
// socket. Every message received on one side is forwarded, frame boundaries
// and ordering intact, to the other side; an optional control socket per
// direction receives a verbatim copy of each forwarded frame.
//
// The proxy either owns its reactor (created inside Start, driven on the
// calling goroutine until Stop) or attaches to a caller-supplied one, in
// which case Start returns immediately and the caller's run loop invokes the
// relay callbacks.
//
// The proxy never closes the sockets it relays between; their lifetime
// belongs to the caller. After Stop returns it is guaranteed that no relay
// callback is running or will run, so the caller may dispose of the sockets
// immediately.
type Proxy struct {
	logger.Logger

	frontend Socket
	backend  Socket

	// Resolved at construction; controlOut defaults to controlIn when only
	// one control socket is supplied. Either may be nil.
	controlIn  Socket
	controlOut Socket

	// reactor is the externally owned dispatcher, nil when ownsReactor.
	reactor     Reactor
	ownsReactor bool

	// owned is the reactor created by the current Start cycle; valid only
	// while that cycle is live, discarded by Stop.
	owned Reactor

	// runDone is closed when an internal-mode Start call has fully unwound
	// its run loop; Stop joins on it. Recreated each cycle.
	runDone chan struct{}

	state atomic.Int32

	stats   RelayStats
	metrics *relayMetrics
}

// ProxyOption customizes a Proxy at construction.
type ProxyOption func(*Proxy)

// WithControl attaches a single control socket serving both directions: it
// receives a copy of every frame relayed either way.
func WithControl(control Socket) ProxyOption {
	return func(p *Proxy) {
		p.controlIn = control
		p.controlOut = control
	}
}

// WithControlPair attaches distinct control sockets: in receives copies of
// frontend→backend traffic, out receives copies of backend→frontend traffic.
// A nil out defaults to in.
func WithControlPair(in, out Socket) ProxyOption {
	return func(p *Proxy) {
		p.controlIn = in
		p.controlOut = out
		if p.controlOut == nil {
			p.controlOut = in
		}
	}
}

// WithReactor attaches a caller-owned reactor. The frontend and backend must
// already be registered with it, and the caller remains responsible for
// driving its run loop; Start and Stop will only bind and unbind the relay
// callbacks.
func WithReactor(r Reactor) ProxyOption {
	return func(p *Proxy) {
		p.reactor = r
		p.ownsReactor = false
	}
}

// WithMetrics registers the proxy's Prometheus collectors with reg.
func WithMetrics(reg prometheus.Registerer) ProxyOption {
	return func(p *Proxy) {
		p.metrics = newRelayMetrics(reg)
	}
}

// NewProxy creates an inert proxy relaying between frontend and backend.
// With no WithReactor option the proxy owns its dispatcher: Start will
// create one, drive it on the calling goroutine, and block until Stop.
//
// Construction performs no socket I/O. It fails with a ConfigurationError if
// frontend or backend is missing, if they are the same socket, or if a
// supplied external reactor does not already contain both.
func NewProxy(log logger.Logger, frontend, backend Socket, opts ...ProxyOption) (*Proxy, error) {
	if frontend == nil || backend == nil {
		return nil, &ConfigurationError{Reason: "frontend and backend sockets are required"}
	}
	if frontend == backend {
		return nil, &ConfigurationError{Reason: "frontend and backend must be distinct sockets"}
	}
	p := &Proxy{
		Logger:      log.ForkLog("proxy"),
		frontend:    frontend,
		backend:     backend,
		ownsReactor: true,
	}
	for _, opt := range opts {
		opt(p)
	}
	if !p.ownsReactor {
		if !p.reactor.Contains(frontend) || !p.reactor.Contains(backend) {
			return nil, &ConfigurationError{Reason: "sockets not registered with supplied reactor"}
		}
	}
	return p, nil
}

// State returns the proxy's current lifecycle state.
func (p *Proxy) State() State {
	return State(p.state.Load())
}

// Stats returns a snapshot of the relay transfer counters.
func (p *Proxy) Stats() RelayStatsSnapshot {
	return p.stats.Snapshot()
}

// Start activates the proxy. Only a Stopped proxy can start; any other state
// yields a LifecycleError with no side effects, and concurrent Start calls
// resolve to one winner.
//
// In internal-reactor mode Start blocks the calling goroutine for the
// proxy's whole active lifetime, driving the dispatch loop until Stop is
// called from another goroutine; its return value is the run loop's outcome.
// In external-reactor mode Start binds the relay callbacks and returns
// immediately.
func (p *Proxy) Start() error {
	if !p.state.CompareAndSwap(int32(Stopped), int32(Starting)) {
		return &LifecycleError{Op: "Start", State: p.State()}
	}
	if p.ownsReactor {
		return p.runOwned()
	}
	return p.attachToExternal()
}

// runOwned drives a freshly created reactor scoped to exactly the frontend
// and backend sockets. It blocks until Stop cancels the reactor.
func (p *Proxy) runOwned() error {
	r := NewReactor(p.ForkLog("reactor"), WithFaultHandler(p.onRelayFault))
	p.owned = r
	p.runDone = make(chan struct{})
	p.bindHandlers(r)
	p.ILog("started (internal reactor)")
	p.state.Store(int32(Started))
	err := r.Run()
	// Stop joins on this before unwinding the rest of its teardown, so the
	// caller of Start has observably returned by the time Stop completes.
	close(p.runDone)
	return err
}

// attachToExternal binds the relay callbacks into the caller-owned reactor
// and returns without blocking.
func (p *Proxy) attachToExternal() error {
	p.bindHandlers(p.reactor)
	p.ILog("started (external reactor)")
	p.state.Store(int32(Started))
	return nil
}

// Stop deactivates the proxy. Only a Started proxy can stop; any other state
// yields a LifecycleError with no side effects.
//
// In internal-reactor mode Stop cancels the owned reactor, joins its run
// loop (and the Start call driving it), then discards it. In external mode
// the caller's run loop is left untouched; only the proxy's two relay
// callbacks are unregistered. On return the proxy is Stopped and no relay
// callback is executing or pending.
func (p *Proxy) Stop() error {
	if !p.state.CompareAndSwap(int32(Started), int32(Stopping)) {
		return &LifecycleError{Op: "Stop", State: p.State()}
	}
	if p.ownsReactor {
		p.owned.CancelAndJoin()
		<-p.runDone
		p.owned.Unregister(p.frontend)
		p.owned.Unregister(p.backend)
		p.owned = nil
	} else {
		p.reactor.Unregister(p.frontend)
		p.reactor.Unregister(p.backend)
	}
	p.ILog("stopped")
	p.state.Store(int32(Stopped))
	return nil
}

// bindHandlers wires the two relay directions into r. Frontend readiness
// drives the frontend→backend relay with the control-in tee; backend
// readiness drives backend→frontend with the control-out tee.
func (p *Proxy) bindHandlers(r Reactor) {
	r.Register(p.frontend, func(Socket) error {
		return p.relayMessage(FrontendToBackend, p.frontend, p.backend, p.controlIn)
	})
	r.Register(p.backend, func(Socket) error {
		return p.relayMessage(BackendToFrontend, p.backend, p.frontend, p.controlOut)
	})
}

// onRelayFault is the fault handler for the owned reactor. Transport errors
// are non-fatal to the proxy's own lifecycle: they are logged and the loop
// keeps dispatching.
func (p *Proxy) onRelayFault(s Socket, err error) {
	p.stats.transportErrors.Add(1)
	if p.metrics != nil {
		p.metrics.transportErrors.Inc()
	}
	p.WLogf("relay fault on %s: %s", s, err)
}
