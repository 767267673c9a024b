// internal/store/interviews_test.go
package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intentrisk-workers/internal/engine"
	"intentrisk-workers/internal/models"
)

func newInterviewStoreMock(t *testing.T) (*InterviewStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewInterviewStore(db), mock
}

// ==========================
// Upsert Tests
// ==========================

func TestUpsert_InsertsPendingInterview(t *testing.T) {
	store, mock := newInterviewStoreMock(t)

	mock.ExpectQuery(`INSERT INTO interviews .+ ON CONFLICT \(job_id, client_id\) .+ RETURNING id`).
		WithArgs("iv-001", "job-001", "client-001", "admin-001",
			models.InterviewPending, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("iv-001"))

	iv := &models.Interview{
		ID:       "iv-001",
		JobID:    "job-001",
		ClientID: "client-001",
		AdminID:  "admin-001",
	}
	err := store.Upsert(context.Background(), iv)

	assert.NoError(t, err)
	assert.Equal(t, "iv-001", iv.ID)
	// Re-invites always reset to pending, whatever the row held before.
	assert.Equal(t, models.InterviewPending, iv.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsert_ConflictKeepsExistingID(t *testing.T) {
	store, mock := newInterviewStoreMock(t)

	// A second invite for the same job/client pair hits DO UPDATE, so the
	// database keeps the original row id. The store must hand that id back
	// so the caller never reports an id no row carries.
	mock.ExpectQuery(`INSERT INTO interviews .+ RETURNING id`).
		WithArgs("iv-fresh", "job-001", "client-001", "admin-002",
			models.InterviewPending, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("iv-original"))

	iv := &models.Interview{
		ID:       "iv-fresh",
		JobID:    "job-001",
		ClientID: "client-001",
		AdminID:  "admin-002",
	}
	err := store.Upsert(context.Background(), iv)

	assert.NoError(t, err)
	assert.Equal(t, "iv-original", iv.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// GetByID Tests
// ==========================

func TestInterviewGetByID_ParsesAnalysis(t *testing.T) {
	store, mock := newInterviewStoreMock(t)

	analysis := engine.Analysis{Label: "REJECT", Confidence: 0.62, ModelVersion: "risk-2.3.0"}
	payload, _ := json.Marshal(analysis)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "job_id", "client_id", "admin_id", "status", "scheduled_at",
		"completed_at", "video_duration_seconds", "decision", "analysis",
		"created_at", "updated_at",
	}).AddRow("iv-001", "job-001", "client-001", "admin-001", "completed", now,
		now, 92.5, "REJECT", payload, now, now)

	mock.ExpectQuery(`SELECT .+ FROM interviews WHERE id = \$1`).
		WithArgs("iv-001").
		WillReturnRows(rows)

	iv, err := store.GetByID(context.Background(), "iv-001")
	require.NoError(t, err)

	assert.Equal(t, models.InterviewCompleted, iv.Status)
	assert.Equal(t, "REJECT", iv.Decision)
	assert.InDelta(t, 92.5, iv.VideoDurationSeconds, 0.001)
	require.NotNil(t, iv.Analysis)
	assert.Equal(t, "REJECT", iv.Analysis.Label)
}

func TestInterviewGetByID_NotFound(t *testing.T) {
	store, mock := newInterviewStoreMock(t)

	mock.ExpectQuery(`SELECT .+ FROM interviews WHERE id = \$1`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := store.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrInterviewNotFound)
}

// ==========================
// Complete Tests
// ==========================

func TestComplete_StoresAnalysis(t *testing.T) {
	store, mock := newInterviewStoreMock(t)

	mock.ExpectExec(`UPDATE interviews SET status = 'completed'`).
		WithArgs("iv-001", sqlmock.AnyArg(), 84.0, "APPROVE", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	analysis := &engine.Analysis{Label: "PROCEED", Confidence: 0.8}
	err := store.Complete(context.Background(), "iv-001", 84.0, "APPROVE", analysis)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestComplete_OverwritesPriorResult(t *testing.T) {
	store, mock := newInterviewStoreMock(t)

	// No status predicate in the UPDATE: a completed interview is
	// re-completed with the fresh result.
	mock.ExpectExec(`UPDATE interviews SET status = 'completed'`).
		WithArgs("iv-001", sqlmock.AnyArg(), 60.0, "VERIFY", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.Complete(context.Background(), "iv-001", 60.0, "VERIFY", &engine.Analysis{Label: "VERIFY"})
	assert.NoError(t, err)
}

func TestComplete_InterviewNotFound(t *testing.T) {
	store, mock := newInterviewStoreMock(t)

	mock.ExpectExec(`UPDATE interviews SET status = 'completed'`).
		WithArgs("missing", sqlmock.AnyArg(), 10.0, "VERIFY", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.Complete(context.Background(), "missing", 10.0, "VERIFY", &engine.Analysis{})
	assert.ErrorIs(t, err, ErrInterviewNotFound)
}
