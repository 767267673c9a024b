// internal/models/call.go
package models

import (
	"time"

	"intentrisk-workers/internal/engine"
)

// CallStatus is the call lifecycle state.
type CallStatus string

const (
	CallRinging  CallStatus = "ringing"
	CallAccepted CallStatus = "accepted"
	CallRejected CallStatus = "rejected"
	CallMissed   CallStatus = "missed"
	CallEnded    CallStatus = "ended"
)

// Call is one call between an admin and a client about a job. Created in
// ringing, mutated only through the lifecycle transitions, never deleted.
type Call struct {
	ID            string           `json:"id"`
	JobID         string           `json:"jobId"`
	AdminUserID   string           `json:"adminUserId"`
	ClientUserID  string           `json:"clientUserId"`
	RoomName      string           `json:"roomName"`
	Status        CallStatus       `json:"status"`
	RecordingPath string           `json:"recordingPath,omitempty"`
	Analysis      *engine.Analysis `json:"analysis,omitempty"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
	StartedAt     *time.Time       `json:"startedAt,omitempty"`
	EndedAt       *time.Time       `json:"endedAt,omitempty"`
}

// IsParticipant reports whether the user is one of the two parties.
func (c *Call) IsParticipant(userID string) bool {
	return userID == c.AdminUserID || userID == c.ClientUserID
}

// IncomingCall is the cached payload the client app polls for while a
// call rings.
type IncomingCall struct {
	CallID      string `json:"callId"`
	JobID       string `json:"jobId"`
	AdminUserID string `json:"adminUserId"`
	RoomName    string `json:"roomName"`
	ClientToken string `json:"clientToken"`
	CreatedAt   string `json:"createdAt"`
}
