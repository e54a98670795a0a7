package netmq

import (
	"sync"

	queuepkg "github.com/Workiva/go-datastructures/queue"
	"github.com/sammck-go/logger"
)

// Handler is a readiness callback bound to a socket through a Reactor. It is
// invoked from the reactor's run loop, one at a time, each time the socket
// reports a complete message available. A returned error is routed to the
// reactor's fault handler and does not terminate the run loop.
type Handler func(s Socket) error

// FaultHandler receives errors returned by readiness handlers. It runs on the
// reactor's dispatch goroutine and must not block.
type FaultHandler func(s Socket, err error)

// Reactor is a single-threaded readiness-driven dispatcher. Registered
// sockets feed readiness events into the reactor; Run drains them and invokes
// the bound handlers serially. Exactly one handler executes at a time, so
// handlers need no locking for the sockets they touch.
//
// Register, Unregister, and Contains may be called from any goroutine,
// including while Run is executing. Run may be driven by the caller (the
// proxy's external-reactor mode) or by the proxy itself (internal mode).
type Reactor interface {
	// Register binds h to s, replacing any existing binding, and subscribes
	// to the socket's readiness notifications. A nil handler registers the
	// socket for containment only; its events are discarded.
	Register(s Socket, h Handler)

	// Unregister removes the binding for s and clears its readiness
	// subscription. Events already queued for s are discarded at dispatch.
	Unregister(s Socket)

	// Contains reports whether s is currently registered.
	Contains(s Socket) bool

	// Run drives the dispatch loop on the calling goroutine, blocking until
	// CancelAndJoin is invoked. A reactor runs at most once; a second Run
	// call returns immediately with an error.
	Run() error

	// CancelAndJoin signals cancellation and blocks until Run has returned.
	// No handler is interrupted mid-execution and no handler runs after
	// CancelAndJoin returns.
	CancelAndJoin()
}

type reactorRegistration struct {
	sock    Socket
	handler Handler
}

type reactor struct {
	logger.Logger

	// events carries readiness notifications from socket callbacks into the
	// run loop. Dispose() is the cancellation signal: it wakes the blocking
	// Get and makes further Puts fail harmlessly.
	events *queuepkg.Queue

	mu       sync.Mutex
	bindings map[Socket]*reactorRegistration

	onFault FaultHandler

	runOnce  sync.Once
	doneChan chan struct{}
}

// ReactorOption customizes a reactor at construction.
type ReactorOption func(*reactor)

// WithFaultHandler routes handler errors to fn instead of logging them.
func WithFaultHandler(fn FaultHandler) ReactorOption {
	return func(r *reactor) {
		r.onFault = fn
	}
}

// NewReactor creates an idle reactor. It does not spawn any goroutine until
// Run is called.
func NewReactor(log logger.Logger, opts ...ReactorOption) Reactor {
	r := &reactor{
		Logger:   log,
		events:   queuepkg.New(64),
		bindings: make(map[Socket]*reactorRegistration),
		doneChan: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.onFault == nil {
		r.onFault = func(s Socket, err error) {
			r.ELogf("handler fault on %s: %s", s, err)
		}
	}
	return r
}

func (r *reactor) Register(s Socket, h Handler) {
	r.mu.Lock()
	r.bindings[s] = &reactorRegistration{sock: s, handler: h}
	r.mu.Unlock()
	s.OnReadable(func() {
		// Put fails only after Dispose, when nobody is left to dispatch.
		_ = r.events.Put(s)
	})
	r.DLogf("registered %s", s)
}

func (r *reactor) Unregister(s Socket) {
	s.OnReadable(nil)
	r.mu.Lock()
	delete(r.bindings, s)
	r.mu.Unlock()
	r.DLogf("unregistered %s", s)
}

func (r *reactor) Contains(s Socket) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.bindings[s]
	return ok
}

func (r *reactor) Run() error {
	ran := false
	r.runOnce.Do(func() { ran = true })
	if !ran {
		return r.Errorf("reactor run loop already driven once")
	}
	defer close(r.doneChan)
	r.DLog("run loop started")
	for {
		items, err := r.events.Get(1)
		if err != nil {
			// Disposed by CancelAndJoin: clean cooperative exit between
			// dispatch cycles.
			r.DLog("run loop cancelled")
			return nil
		}
		s, ok := items[0].(Socket)
		if !ok {
			continue
		}
		r.mu.Lock()
		reg := r.bindings[s]
		r.mu.Unlock()
		if reg == nil || reg.handler == nil {
			// Unregistered while the event was in flight, or registered for
			// containment only.
			continue
		}
		if herr := reg.handler(s); herr != nil {
			r.onFault(s, herr)
		}
	}
}

func (r *reactor) CancelAndJoin() {
	r.events.Dispose()
	ran := false
	r.runOnce.Do(func() { ran = true })
	if ran {
		// Run was never started; nothing to join, and the disposed queue
		// guarantees it could never block if started later by mistake.
		close(r.doneChan)
		return
	}
	<-r.doneChan
}
