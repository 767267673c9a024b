// internal/workers/interview/analyze-interview/models.go
package analyzeinterview

type Input struct {
	InterviewID string `json:"interviewId"`
	VideoBase64 string `json:"videoBase64"`
	Transcript  string `json:"transcript,omitempty"`
}

type Output struct {
	InterviewID       string  `json:"interviewId"`
	InterviewStatus   string  `json:"interviewStatus"` // "completed"
	Decision          string  `json:"decision"`        // APPROVE, VERIFY, REJECT
	ApplicationStatus string  `json:"applicationStatus"`
	Intent            string  `json:"intent"` // PROCEED, VERIFY, REJECT
	Confidence        float64 `json:"confidence"`
	ModelVersion      string  `json:"modelVersion"`
	// Feed the downstream notification task.
	RecipientID      string `json:"recipientId"`
	RecipientType    string `json:"recipientType"`
	NotificationType string `json:"notificationType"`
	AnalyzedAt       string `json:"analyzedAt"` // ISO 8601
}
