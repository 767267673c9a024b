// internal/workers/call/initiate-call/models.go
package initiatecall

type Input struct {
	JobID        string `json:"jobId"`
	AdminUserID  string `json:"adminUserId"`
	ClientUserID string `json:"clientUserId"`
}

type Output struct {
	CallID     string `json:"callId"`
	RoomName   string `json:"roomName"`
	AdminToken string `json:"adminToken"`
	CallStatus string `json:"callStatus"` // "ringing"
	CreatedAt  string `json:"createdAt"`  // ISO 8601
}
