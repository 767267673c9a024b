// internal/models/application.go
package models

// Application is the job application whose status the interview decision
// drives. Only the fields this service touches are modeled; the rest of
// the marketplace CRUD lives elsewhere.
type Application struct {
	ID           string `json:"id"`
	JobID        string `json:"jobId"`
	ClientUserID string `json:"clientUserId"`
	Status       string `json:"status"` // applied, invited_interview, approved, rejected, verify_required
	CreatedAt    string `json:"createdAt"`
	UpdatedAt    string `json:"updatedAt"`
}
