// internal/workers/call/end-call/handler_test.go
package endcall

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"intentrisk-workers/internal/common/logger"
	"intentrisk-workers/internal/store"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{Timeout: 5 * time.Second}
}

func createTestInput() *Input {
	return &Input{
		CallID: "call-001",
		UserID: "admin-001",
	}
}

// Create a test logger that implements your logger.Logger interface
type testLogger struct {
	t *testing.T
}

func (tl *testLogger) Debug(msg string, fields map[string]interface{}) {
	tl.t.Logf("DEBUG: %s %v", msg, fields)
}

func (tl *testLogger) Info(msg string, fields map[string]interface{}) {
	tl.t.Logf("INFO: %s %v", msg, fields)
}

func (tl *testLogger) Warn(msg string, fields map[string]interface{}) {
	tl.t.Logf("WARN: %s %v", msg, fields)
}

func (tl *testLogger) Error(msg string, fields map[string]interface{}) {
	tl.t.Logf("ERROR: %s %v", msg, fields)
}

func (tl *testLogger) WithFields(fields map[string]interface{}) logger.Logger {
	return tl // Simple implementation for testing
}

func (tl *testLogger) WithError(err error) logger.Logger {
	return tl.WithFields(map[string]interface{}{"error": err})
}

func (t *testLogger) With(fields map[string]interface{}) logger.Logger {
	return t
}

func newTestLogger(t *testing.T) logger.Logger {
	return &testLogger{t: t}
}

func createTestHandler(t *testing.T, db *sql.DB, redisClient *redis.Client) *Handler {
	t.Helper()
	return NewHandler(
		createTestConfig(),
		store.NewCallStore(db),
		store.NewIncomingCallCache(redisClient),
		newTestLogger(t),
	)
}

func endedCallRow() *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"id", "job_id", "admin_user_id", "client_user_id", "room_name", "status",
		"recording_path", "analysis", "created_at", "updated_at", "started_at", "ended_at",
	}).AddRow("call-001", "job-001", "admin-001", "client-001", "room", "ended",
		"", nil, now, now, now, now)
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer redisClient.Close()
	// A call ended while still ringing leaves a cache entry to clean up.
	mr.Set("call:incoming:client-001", `{"callId":"call-001"}`)

	mock.ExpectExec(`UPDATE calls SET status = 'ended'`).
		WithArgs("call-001", "admin-001", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT .+ FROM calls WHERE id = \$1`).
		WithArgs("call-001").
		WillReturnRows(endedCallRow())

	handler := createTestHandler(t, db, redisClient)
	output, err := handler.Execute(context.Background(), createTestInput())

	require.NoError(t, err)
	assert.Equal(t, "call-001", output.CallID)
	assert.Equal(t, "ended", output.CallStatus)
	assert.NotEmpty(t, output.EndedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.False(t, mr.Exists("call:incoming:client-001"))
}

func TestHandler_Execute_NotParticipant(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer redisClient.Close()

	now := time.Now().UTC()
	row := sqlmock.NewRows([]string{
		"id", "job_id", "admin_user_id", "client_user_id", "room_name", "status",
		"recording_path", "analysis", "created_at", "updated_at", "started_at", "ended_at",
	}).AddRow("call-001", "job-001", "admin-001", "client-001", "room", "accepted",
		"", nil, now, now, now, nil)

	mock.ExpectExec(`UPDATE calls SET status = 'ended'`).
		WithArgs("call-001", "outsider", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT .+ FROM calls WHERE id = \$1`).
		WithArgs("call-001").
		WillReturnRows(row)

	handler := createTestHandler(t, db, redisClient)
	_, err = handler.Execute(context.Background(), &Input{CallID: "call-001", UserID: "outsider"})

	assert.ErrorIs(t, err, store.ErrNotParticipant)
}

func TestHandler_Execute_AlreadyEnded(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer redisClient.Close()

	mock.ExpectExec(`UPDATE calls SET status = 'ended'`).
		WithArgs("call-001", "admin-001", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT .+ FROM calls WHERE id = \$1`).
		WithArgs("call-001").
		WillReturnRows(endedCallRow())

	handler := createTestHandler(t, db, redisClient)
	_, err = handler.Execute(context.Background(), createTestInput())

	assert.ErrorIs(t, err, store.ErrCallNotActive)
}

func TestHandler_Execute_CallNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer redisClient.Close()

	mock.ExpectExec(`UPDATE calls SET status = 'ended'`).
		WithArgs("missing", "admin-001", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT .+ FROM calls WHERE id = \$1`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	handler := createTestHandler(t, db, redisClient)
	_, err = handler.Execute(context.Background(), &Input{CallID: "missing", UserID: "admin-001"})

	assert.ErrorIs(t, err, store.ErrCallNotFound)
}
