// internal/store/applications.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"intentrisk-workers/internal/models"
)

var ErrApplicationNotFound = errors.New("application not found")

// ApplicationStore updates the marketplace application rows this service
// drives; the rest of their lifecycle belongs to the CRUD layer.
type ApplicationStore struct {
	db *sql.DB
}

func NewApplicationStore(db *sql.DB) *ApplicationStore {
	return &ApplicationStore{db: db}
}

// Get fetches the application for a job/client pair.
func (s *ApplicationStore) Get(ctx context.Context, jobID, clientUserID string) (*models.Application, error) {
	var app models.Application
	err := s.db.QueryRowContext(ctx, `
		SELECT id, job_id, client_user_id, status, created_at, updated_at
		FROM applications WHERE job_id = $1 AND client_user_id = $2`,
		jobID, clientUserID,
	).Scan(&app.ID, &app.JobID, &app.ClientUserID, &app.Status, &app.CreatedAt, &app.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrApplicationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// SetStatus updates the application for a job/client pair.
func (s *ApplicationStore) SetStatus(ctx context.Context, jobID, clientUserID, status string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE applications SET status = $3, updated_at = $4
		WHERE job_id = $1 AND client_user_id = $2`,
		jobID, clientUserID, status, time.Now().UTC(),
	)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrApplicationNotFound
	}
	return nil
}

// MarkInvited flips the application and its job posting to the
// invited_interview state in one transaction.
func (s *ApplicationStore) MarkInvited(ctx context.Context, jobID, clientUserID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx, `
		UPDATE applications SET status = 'invited_interview', updated_at = $3
		WHERE job_id = $1 AND client_user_id = $2`,
		jobID, clientUserID, now,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrApplicationNotFound
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE jobs SET status = 'invited_interview', updated_at = $2 WHERE id = $1`,
		jobID, now,
	); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	return tx.Commit()
}
