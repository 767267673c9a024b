// internal/workers/call/accept-call/models.go
package acceptcall

type Input struct {
	CallID string `json:"callId"`
	UserID string `json:"userId"`
}

type Output struct {
	CallID      string `json:"callId"`
	RoomName    string `json:"roomName"`
	ClientToken string `json:"clientToken"`
	CallStatus  string `json:"callStatus"` // "accepted"
	AcceptedAt  string `json:"acceptedAt"` // ISO 8601
}
