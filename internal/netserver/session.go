package netserver

import (
	"io"
	"log/slog"
	"net"

	"github.com/udisondev/la2go/internal/metrics"
)

const (
	outboundCap  = 32
	interruptCap = 1
)

// Session is one accepted TCP connection: a read loop and a write loop
// cooperating over a shared net.Conn, an outbound queue, and a single-shot
// interrupt. A Session never touches another session's state and is never
// shared across goroutines except via its channels.
type Session struct {
	id      SessionID
	metrics *metrics.Registry

	conn      net.Conn
	outbound  chan Frame
	interrupt chan struct{}
}

// NewSession constructs a Session with the given identifier. Construction is
// pure; the connection is attached by Start.
func NewSession(id SessionID, reg *metrics.Registry) *Session {
	return &Session{
		id:        id,
		metrics:   reg,
		outbound:  make(chan Frame, outboundCap),
		interrupt: make(chan struct{}, interruptCap),
	}
}

// ID returns the session's identifier.
func (s *Session) ID() SessionID { return s.id }

// Start attaches conn to the session and spawns its read and write loops.
// dc is the supervisor's shared disconnect channel; inbound is the engine's
// merged inbound-frame channel. Start returns immediately; the session's
// goroutines run until the connection closes, the interrupt fires, or the
// peer disconnects.
func (s *Session) Start(conn net.Conn, dc chan<- SessionID, inbound chan<- InboundFrame) {
	s.conn = conn

	done := make(chan struct{})
	go func() {
		s.writeLoop()
		close(done)
	}()

	go func() {
		s.readLoop(inbound)
		<-done
		s.postDisconnect(dc)
	}()
}

// readLoop is the session's single cooperative read task: it alternates
// between waiting for an interrupt and waiting for a socket read, exiting on
// whichever arrives first. A blocking Read cannot be preempted by a channel
// receive, so Interrupt also closes the connection to unblock it.
func (s *Session) readLoop(inbound chan<- InboundFrame) {
	defer close(s.outbound)

	for {
		select {
		case <-s.interrupt:
			slog.Info("session interrupted", "session", s.id)
			return
		default:
		}

		var buf Frame
		n, err := s.conn.Read(buf[:])
		if n > 0 {
			select {
			case inbound <- InboundFrame{SessionID: s.id, Frame: buf, N: n}:
				if s.metrics != nil {
					s.metrics.AddReceivedBytes(n)
				}
			case <-s.interrupt:
				slog.Info("session interrupted while publishing inbound frame", "session", s.id)
				return
			}
		}
		if err != nil {
			if err == io.EOF {
				slog.Info("session peer closed connection", "session", s.id)
			} else {
				select {
				case <-s.interrupt:
					slog.Info("session interrupted", "session", s.id)
				default:
					slog.Warn("session read failed", "session", s.id, "error", err)
				}
			}
			return
		}
	}
}

// writeLoop drains the outbound queue and writes each frame to the
// connection, stopping on I/O error or once the queue is closed (which
// happens when readLoop exits).
func (s *Session) writeLoop() {
	for frame := range s.outbound {
		if _, err := s.conn.Write(frame[:]); err != nil {
			slog.Warn("session write failed", "session", s.id, "error", err)
			return
		}
		if s.metrics != nil {
			s.metrics.AddSentBytes(FrameSize)
		}
	}
}

// Send enqueues a frame for delivery to the peer. Returns false if the
// outbound queue is full or already closed — the caller should treat either
// as a slow or departed peer.
func (s *Session) Send(frame Frame) bool {
	defer func() { recover() }() // outbound may be closed concurrently by readLoop exit
	select {
	case s.outbound <- frame:
		return true
	default:
		return false
	}
}

// Interrupt requests the session stop. It is idempotent-safe to call
// concurrently with the session's own exit: closing conn unblocks a
// currently-blocked Read, and the buffered interrupt channel absorbs the
// signal even if nobody is selecting on it yet.
func (s *Session) Interrupt() {
	select {
	case s.interrupt <- struct{}{}:
	default:
	}
	if s.conn != nil {
		s.conn.Close()
	}
}

// postDisconnect unconditionally reports this session's ID on dc so the
// supervisor can remove it from the registry, logging if the send fails
// (e.g. the supervisor has already shut down and stopped receiving).
func (s *Session) postDisconnect(dc chan<- SessionID) {
	select {
	case dc <- s.id:
	default:
		slog.Warn("failed to post disconnect signal", "session", s.id)
	}
}
