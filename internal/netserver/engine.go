package netserver

import (
	"fmt"
	"net"
	"sync"

	"github.com/udisondev/la2go/internal/metrics"
)

const (
	controlCap    = 2
	inboundCap    = FrameSize
	disconnectCap = 32
)

// Options configures a new Engine. Host/Port default to 0.0.0.0:8080 when
// left zero-valued.
type Options struct {
	Host string
	Port int
}

func (o Options) addr() string {
	host := o.Host
	if host == "" {
		host = "0.0.0.0"
	}
	port := o.Port
	if port == 0 {
		port = 8080
	}
	return fmt.Sprintf("%s:%d", host, port)
}

// Engine accepts connections on a bound listener and supervises one Session
// per connection. The session registry is owned exclusively by the
// supervisor goroutine — no other goroutine reads or writes it, so it needs
// no mutex.
type Engine struct {
	opts    Options
	metrics *metrics.Registry

	mu       sync.Mutex
	listener net.Listener
}

// NewEngine constructs an Engine from opts. Binding is deferred to Start.
func NewEngine(opts Options, reg *metrics.Registry) *Engine {
	return &Engine{opts: opts, metrics: reg}
}

// Addr returns the engine's bound address, or nil if Start hasn't run yet.
func (e *Engine) Addr() net.Addr {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.listener == nil {
		return nil
	}
	return e.listener.Addr()
}

// Close closes the engine's listener, causing the supervisor's accept loop
// to fail and exit. It does not forcibly terminate existing sessions —
// callers wanting a hard shutdown should also Interrupt each session.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.listener == nil {
		return nil
	}
	return e.listener.Close()
}

// Start binds the listener and spawns the supervisor goroutine. It returns a
// control channel carrying lifecycle Signals and an inbound channel carrying
// frames from every session, tagged by session ID.
func (e *Engine) Start() (<-chan Signal, <-chan InboundFrame, error) {
	addr := e.opts.addr()
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, fmt.Errorf("binding %s: %w", addr, err)
	}

	e.mu.Lock()
	e.listener = ln
	e.mu.Unlock()

	control := make(chan Signal, controlCap)
	inbound := make(chan InboundFrame, inboundCap)

	go e.supervise(ln, control, inbound)

	return control, inbound, nil
}

// acceptEvent is one result of the persistent accept goroutine below: either
// a fresh connection or the terminal error that ends accepting entirely.
type acceptEvent struct {
	conn net.Conn
	err  error
}

// acceptLoop calls ln.Accept() in a tight loop, forwarding every result on
// accepted. Go's net.Listener has no cancelable-accept primitive to select
// on directly (unlike Tokio's accept() future), so this single persistent
// goroutine stands in for that event source; it exits once Accept returns an
// error (typically because the listener was closed).
func acceptLoop(ln net.Listener, accepted chan<- acceptEvent) {
	for {
		conn, err := ln.Accept()
		accepted <- acceptEvent{conn: conn, err: err}
		if err != nil {
			return
		}
	}
}

func (e *Engine) supervise(ln net.Listener, control chan<- Signal, inbound chan<- InboundFrame) {
	defer close(control)

	sendSignal(control, Signal{Kind: SignalStarted})

	disconnect := make(chan SessionID, disconnectCap)
	sessions := make(map[SessionID]*Session)

	accepted := make(chan acceptEvent)
	go acceptLoop(ln, accepted)

	for {
		select {
		case ev := <-accepted:
			if ev.err != nil {
				sendSignal(control, Signal{Kind: SignalShutdown, Reason: ev.err})
				if e.metrics != nil {
					e.metrics.IncFailedAccepts()
				}
				return
			}

			sid := newSessionID()
			session := NewSession(sid, e.metrics)
			sendSignal(control, Signal{Kind: SignalNewConnection, SessionID: sid})
			session.Start(ev.conn, disconnect, inbound)
			sessions[sid] = session

		case sid := <-disconnect:
			sendSignal(control, Signal{Kind: SignalClosedConnection, SessionID: sid})
			delete(sessions, sid)
		}

		if e.metrics != nil {
			e.metrics.SetSessions(len(sessions))
		}
	}
}

// sendSignal delivers sig to control, blocking until the caller receives it.
// The control stream's invariants (exactly one NewConnection per session
// followed by exactly one ClosedConnection, exactly one terminal Shutdown)
// only hold if the supervisor never drops a signal to avoid blocking, so
// this backpressures the supervisor loop rather than discarding anything —
// matching original_source/engine.rs's awaited `server_signal_sender.send`.
func sendSignal(control chan<- Signal, sig Signal) {
	control <- sig
}
