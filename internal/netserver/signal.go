package netserver

import "fmt"

// SignalKind distinguishes the events the supervisor publishes on the
// control channel.
type SignalKind int

const (
	SignalStarted SignalKind = iota
	SignalNewConnection
	SignalClosedConnection
	SignalShutdown
)

func (k SignalKind) String() string {
	switch k {
	case SignalStarted:
		return "Started"
	case SignalNewConnection:
		return "NewConnection"
	case SignalClosedConnection:
		return "ClosedConnection"
	case SignalShutdown:
		return "Shutdown"
	default:
		return fmt.Sprintf("SignalKind(%d)", int(k))
	}
}

// Signal is one lifecycle event published on the engine's control channel.
// SessionID is populated for NewConnection/ClosedConnection; Reason is
// populated for Shutdown.
type Signal struct {
	Kind      SignalKind
	SessionID SessionID
	Reason    error
}

func (s Signal) String() string {
	switch s.Kind {
	case SignalNewConnection, SignalClosedConnection:
		return fmt.Sprintf("%s(%s)", s.Kind, s.SessionID)
	case SignalShutdown:
		return fmt.Sprintf("%s(%v)", s.Kind, s.Reason)
	default:
		return s.Kind.String()
	}
}
