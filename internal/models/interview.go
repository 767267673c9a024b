// internal/models/interview.go
package models

import (
	"time"

	"intentrisk-workers/internal/engine"
)

// InterviewStatus is the interview lifecycle state.
type InterviewStatus string

const (
	InterviewPending   InterviewStatus = "pending"
	InterviewCompleted InterviewStatus = "completed"
)

// Interview is one video interview attached to a job application. The
// video itself is never persisted — only derived scalar results survive.
type Interview struct {
	ID                   string           `json:"id"`
	JobID                string           `json:"jobId"`
	ClientID             string           `json:"clientId"`
	AdminID              string           `json:"adminId"`
	Status               InterviewStatus  `json:"status"`
	ScheduledAt          *time.Time       `json:"scheduledAt,omitempty"`
	CompletedAt          *time.Time       `json:"completedAt,omitempty"`
	VideoDurationSeconds float64          `json:"videoDurationSeconds,omitempty"`
	Decision             string           `json:"decision,omitempty"`
	Analysis             *engine.Analysis `json:"analysis,omitempty"`
	CreatedAt            time.Time        `json:"createdAt"`
	UpdatedAt            time.Time        `json:"updatedAt"`
}
