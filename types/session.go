package types

import "time"

// SessionStatus tracks where one upload handoff is in its lifecycle.
// Transitions only move forward; expiry may preempt any non-terminal state.
type SessionStatus string

const (
	StatusAwaitingUpload SessionStatus = "awaiting_upload"
	StatusUploaded       SessionStatus = "uploaded"
	StatusProcessing     SessionStatus = "processing"
	StatusProcessed      SessionStatus = "processed"
	StatusFailed         SessionStatus = "failed"
	StatusExpired        SessionStatus = "expired"
)

// Terminal reports whether the status admits no further transition.
// Terminal records are only physically removed by an explicit delete or a sweep.
func (s SessionStatus) Terminal() bool {
	switch s {
	case StatusProcessed, StatusFailed, StatusExpired:
		return true
	}
	return false
}

// Session is one QR upload handoff. The session store is the exclusive
// owner of its mutable fields; everything else goes through store operations.
type Session struct {
	Shortcode string
	CreatedAt time.Time
	ExpiresAt time.Time
	Status    SessionStatus
	Payload   []byte
	LastError string
}
