package netserver

// FrameSize is the fixed size of every inbound/outbound buffer. The engine
// never interprets frame contents — decoding whatever protocol rides on top
// is the caller's job.
const FrameSize = 4096

// Frame is a fixed-size byte buffer exchanged with a session's peer.
type Frame [FrameSize]byte

// InboundFrame tags a Frame with the session it arrived on and the number of
// valid bytes it carries. The original design dispatches the raw 4096-byte
// buffer alone and leaves the caller to guess how much of it is valid; here
// the length rides along explicitly so a caller never has to scan for a
// terminator that may not exist.
type InboundFrame struct {
	SessionID SessionID
	Frame     Frame
	N         int
}
