// internal/workers/call/reject-call/models.go
package rejectcall

type Input struct {
	CallID string `json:"callId"`
	UserID string `json:"userId"`
}

type Output struct {
	CallID     string `json:"callId"`
	CallStatus string `json:"callStatus"` // "rejected"
	RejectedAt string `json:"rejectedAt"` // ISO 8601
}
