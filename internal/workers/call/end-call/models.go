// internal/workers/call/end-call/models.go
package endcall

type Input struct {
	CallID string `json:"callId"`
	UserID string `json:"userId"`
}

type Output struct {
	CallID     string `json:"callId"`
	CallStatus string `json:"callStatus"` // "ended"
	EndedAt    string `json:"endedAt"`    // ISO 8601
}
