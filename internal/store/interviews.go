// internal/store/interviews.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"intentrisk-workers/internal/engine"
	"intentrisk-workers/internal/models"
)

var ErrInterviewNotFound = errors.New("interview not found")

// InterviewStore owns the interviews table.
type InterviewStore struct {
	db *sql.DB
}

func NewInterviewStore(db *sql.DB) *InterviewStore {
	return &InterviewStore{db: db}
}

// Upsert creates or refreshes the pending interview for a job/client
// pair. Re-inviting reuses the row and resets it to pending; RETURNING
// hands back the surviving row's id, which on conflict is the original
// one, so iv.ID always names a row that exists.
func (s *InterviewStore) Upsert(ctx context.Context, iv *models.Interview) error {
	now := time.Now().UTC()
	iv.Status = models.InterviewPending
	iv.UpdatedAt = now

	return s.db.QueryRowContext(ctx, `
		INSERT INTO interviews (id, job_id, client_id, admin_id, status, scheduled_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		ON CONFLICT (job_id, client_id) DO UPDATE SET
			admin_id = EXCLUDED.admin_id,
			status = 'pending',
			scheduled_at = EXCLUDED.scheduled_at,
			updated_at = EXCLUDED.updated_at
		RETURNING id`,
		iv.ID, iv.JobID, iv.ClientID, iv.AdminID, iv.Status, iv.ScheduledAt, now,
	).Scan(&iv.ID)
}

// GetByID fetches one interview.
func (s *InterviewStore) GetByID(ctx context.Context, id string) (*models.Interview, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, job_id, client_id, admin_id, status, scheduled_at, completed_at,
		       COALESCE(video_duration_seconds, 0), COALESCE(decision, ''), analysis,
		       created_at, updated_at
		FROM interviews WHERE id = $1`, id)

	var iv models.Interview
	var analysisRaw []byte
	err := row.Scan(
		&iv.ID, &iv.JobID, &iv.ClientID, &iv.AdminID, &iv.Status,
		&iv.ScheduledAt, &iv.CompletedAt, &iv.VideoDurationSeconds, &iv.Decision,
		&analysisRaw, &iv.CreatedAt, &iv.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInterviewNotFound
	}
	if err != nil {
		return nil, err
	}
	if len(analysisRaw) > 0 {
		var a engine.Analysis
		if err := json.Unmarshal(analysisRaw, &a); err == nil {
			iv.Analysis = &a
		}
	}
	return &iv, nil
}

// Complete stores the analysis outcome and flips the interview to
// completed. Re-analysis overwrites the previous result — the row is
// updated regardless of whether it already completed once.
func (s *InterviewStore) Complete(ctx context.Context, id string, videoDuration float64, decision string, analysis *engine.Analysis) error {
	payload, err := json.Marshal(analysis)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE interviews SET status = 'completed', completed_at = $2,
			video_duration_seconds = $3, decision = $4, analysis = $5, updated_at = $2
		WHERE id = $1`,
		id, now, videoDuration, decision, payload,
	)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrInterviewNotFound
	}
	return nil
}
