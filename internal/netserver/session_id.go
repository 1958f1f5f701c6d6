package netserver

import "github.com/google/uuid"

// SessionID uniquely identifies a session for its entire lifetime. It is
// 128-bit random, so no two sessions — even across process restarts — ever
// collide, matching the original design's `Uuid::new_v4()` identifiers.
type SessionID = uuid.UUID

// newSessionID mints a fresh random session identifier.
func newSessionID() SessionID {
	return uuid.New()
}
