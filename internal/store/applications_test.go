// internal/store/applications_test.go
package store

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApplicationStoreMock(t *testing.T) (*ApplicationStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewApplicationStore(db), mock
}

// ==========================
// Get Tests
// ==========================

func TestApplicationGet_Success(t *testing.T) {
	store, mock := newApplicationStoreMock(t)

	rows := sqlmock.NewRows([]string{"id", "job_id", "client_user_id", "status", "created_at", "updated_at"}).
		AddRow("app-001", "job-001", "client-001", "applied", "2026-08-01T10:00:00Z", "2026-08-01T10:00:00Z")

	mock.ExpectQuery(`SELECT .+ FROM applications WHERE job_id = \$1 AND client_user_id = \$2`).
		WithArgs("job-001", "client-001").
		WillReturnRows(rows)

	app, err := store.Get(context.Background(), "job-001", "client-001")
	require.NoError(t, err)

	assert.Equal(t, "app-001", app.ID)
	assert.Equal(t, "applied", app.Status)
}

func TestApplicationGet_NotFound(t *testing.T) {
	store, mock := newApplicationStoreMock(t)

	mock.ExpectQuery(`SELECT .+ FROM applications`).
		WithArgs("job-001", "nobody").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := store.Get(context.Background(), "job-001", "nobody")
	assert.ErrorIs(t, err, ErrApplicationNotFound)
}

// ==========================
// SetStatus Tests
// ==========================

func TestSetStatus_Success(t *testing.T) {
	store, mock := newApplicationStoreMock(t)

	mock.ExpectExec(`UPDATE applications SET status = \$3`).
		WithArgs("job-001", "client-001", "approved", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.SetStatus(context.Background(), "job-001", "client-001", "approved")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetStatus_ApplicationNotFound(t *testing.T) {
	store, mock := newApplicationStoreMock(t)

	mock.ExpectExec(`UPDATE applications SET status = \$3`).
		WithArgs("job-001", "nobody", "rejected", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.SetStatus(context.Background(), "job-001", "nobody", "rejected")
	assert.ErrorIs(t, err, ErrApplicationNotFound)
}

// ==========================
// MarkInvited Tests
// ==========================

func TestMarkInvited_UpdatesApplicationAndJob(t *testing.T) {
	store, mock := newApplicationStoreMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE applications SET status = 'invited_interview'`).
		WithArgs("job-001", "client-001", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE jobs SET status = 'invited_interview'`).
		WithArgs("job-001", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.MarkInvited(context.Background(), "job-001", "client-001")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkInvited_NoApplicationRollsBack(t *testing.T) {
	store, mock := newApplicationStoreMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE applications SET status = 'invited_interview'`).
		WithArgs("job-001", "nobody", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := store.MarkInvited(context.Background(), "job-001", "nobody")
	assert.ErrorIs(t, err, ErrApplicationNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
