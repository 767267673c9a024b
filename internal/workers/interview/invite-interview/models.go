// internal/workers/interview/invite-interview/models.go
package inviteinterview

type Input struct {
	JobID       string `json:"jobId"`
	ClientID    string `json:"clientId"`
	AdminID     string `json:"adminId"`
	ScheduledAt string `json:"scheduledAt,omitempty"` // ISO 8601
}

type Output struct {
	InterviewID       string `json:"interviewId"`
	InterviewStatus   string `json:"interviewStatus"` // "pending"
	ApplicationStatus string `json:"applicationStatus"`
	// Feed the downstream notification task.
	RecipientID      string `json:"recipientId"`
	RecipientType    string `json:"recipientType"`
	NotificationType string `json:"notificationType"`
	CreatedAt        string `json:"createdAt"` // ISO 8601
}
