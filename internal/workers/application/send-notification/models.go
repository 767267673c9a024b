// internal/workers/application/send-notification/models.go
package sendnotification

type Input struct {
	RecipientID      string                 `json:"recipientId"`
	RecipientType    string                 `json:"recipientType"` // "admin" or "client"
	NotificationType string                 `json:"notificationType"`
	JobID            string                 `json:"jobId,omitempty"`
	Priority         string                 `json:"priority,omitempty"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
}

type Output struct {
	NotificationID string `json:"notificationId"`
	Status         string `json:"status"` // "sent", "failed", "disabled"
	SentAt         string `json:"sentAt"` // ISO 8601
}

// Notification types
const (
	TypeInterviewInvite = "interview_invite"
	TypeDecisionNotice  = "decision_notice"
	TypeMissedCall      = "missed_call"
)

// Statuses
const (
	StatusSent     = "sent"
	StatusFailed   = "failed"
	StatusDisabled = "disabled"
)

// Recipient types
const (
	RecipientTypeAdmin  = "admin"
	RecipientTypeClient = "client"
)
