// internal/store/calls.go

// Package store persists calls, interviews, and application status in
// PostgreSQL, the incoming-call cache in Redis, and completed analyses in
// Elasticsearch. Every lifecycle transition is a guarded UPDATE: the row
// must still be in the expected state at write time, so concurrent
// transitions race safely and the loser gets a state error.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"intentrisk-workers/internal/engine"
	"intentrisk-workers/internal/models"

	"github.com/lib/pq"
)

// Sentinel errors for lifecycle guard violations. Workers map these to
// BPMN error codes.
var (
	ErrCallNotFound      = errors.New("call not found")
	ErrCallNotRinging    = errors.New("call is not ringing")
	ErrCallNotActive     = errors.New("call is not ringing or accepted")
	ErrCallNotEnded      = errors.New("call has not ended")
	ErrActiveCallExists  = errors.New("an active call already exists for this job")
	ErrNotParticipant    = errors.New("user is not a participant of this call")
	ErrNotAddressedParty = errors.New("only the addressed recipient may answer")
)

// CallStore owns the calls table.
type CallStore struct {
	db *sql.DB
}

func NewCallStore(db *sql.DB) *CallStore {
	return &CallStore{db: db}
}

const callColumns = `id, job_id, admin_user_id, client_user_id, room_name, status,
	COALESCE(recording_path, ''), analysis, created_at, updated_at, started_at, ended_at`

// CreateRinging inserts a new ringing call, guarded by the
// one-active-call-per-job rule. The COUNT check catches the common case
// up front; the real guarantee is the partial unique index on
// calls(job_id) WHERE status IN ('ringing', 'accepted') — when two
// initiations race past the check, one insert trips the index and maps
// to ErrActiveCallExists.
func (s *CallStore) CreateRinging(ctx context.Context, call *models.Call) error {
	var active int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM calls WHERE job_id = $1 AND status IN ('ringing', 'accepted')`,
		call.JobID,
	).Scan(&active)
	if err != nil {
		return err
	}
	if active > 0 {
		return ErrActiveCallExists
	}

	now := time.Now().UTC()
	call.Status = models.CallRinging
	call.CreatedAt = now
	call.UpdatedAt = now

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO calls (id, job_id, admin_user_id, client_user_id, room_name, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		call.ID, call.JobID, call.AdminUserID, call.ClientUserID, call.RoomName,
		call.Status, call.CreatedAt, call.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return ErrActiveCallExists
	}
	return err
}

// isUniqueViolation reports whether err is Postgres error class 23505.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// GetByID fetches one call.
func (s *CallStore) GetByID(ctx context.Context, id string) (*models.Call, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+callColumns+` FROM calls WHERE id = $1`, id)
	call, err := scanCall(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCallNotFound
	}
	return call, err
}

// Accept transitions ringing→accepted, only for the addressed recipient.
func (s *CallStore) Accept(ctx context.Context, callID, userID string) error {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE calls SET status = 'accepted', started_at = $3, updated_at = $3
		WHERE id = $1 AND client_user_id = $2 AND status = 'ringing'`,
		callID, userID, now,
	)
	if err != nil {
		return err
	}
	return s.explainGuardFailure(ctx, res, callID, userID, guardRinging)
}

// Reject transitions ringing→rejected, only for the addressed recipient.
func (s *CallStore) Reject(ctx context.Context, callID, userID string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE calls SET status = 'rejected', updated_at = $3
		WHERE id = $1 AND client_user_id = $2 AND status = 'ringing'`,
		callID, userID, time.Now().UTC(),
	)
	if err != nil {
		return err
	}
	return s.explainGuardFailure(ctx, res, callID, userID, guardRinging)
}

// End transitions {ringing, accepted}→ended, by either party.
func (s *CallStore) End(ctx context.Context, callID, userID string) error {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE calls SET status = 'ended', ended_at = $3, updated_at = $3
		WHERE id = $1 AND (admin_user_id = $2 OR client_user_id = $2)
		  AND status IN ('ringing', 'accepted')`,
		callID, userID, now,
	)
	if err != nil {
		return err
	}
	return s.explainGuardFailure(ctx, res, callID, userID, guardActive)
}

// AttachAnalysis stores the recording reference and assessment on an
// ended call. Repeated uploads overwrite the prior analysis.
func (s *CallStore) AttachAnalysis(ctx context.Context, callID, recordingPath string, analysis *engine.Analysis) error {
	payload, err := json.Marshal(analysis)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE calls SET recording_path = $2, analysis = $3, updated_at = $4
		WHERE id = $1 AND status = 'ended'`,
		callID, recordingPath, payload, time.Now().UTC(),
	)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		exists, err := s.exists(ctx, callID)
		if err != nil {
			return err
		}
		if !exists {
			return ErrCallNotFound
		}
		return ErrCallNotEnded
	}
	return nil
}

// SweepRinging marks every ringing call older than the cutoff as missed.
// The status predicate makes it safe against concurrent accept/reject.
func (s *CallStore) SweepRinging(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	res, err := s.db.ExecContext(ctx, `
		UPDATE calls SET status = 'missed', updated_at = $2
		WHERE status = 'ringing' AND created_at < $1`,
		cutoff, time.Now().UTC(),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type guardKind int

const (
	guardRinging guardKind = iota
	guardActive
)

// explainGuardFailure turns a zero-row UPDATE into the precise sentinel:
// missing row, wrong party, or wrong state.
func (s *CallStore) explainGuardFailure(ctx context.Context, res sql.Result, callID, userID string, kind guardKind) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	call, err := s.GetByID(ctx, callID)
	if err != nil {
		return err
	}

	switch kind {
	case guardRinging:
		if call.ClientUserID != userID {
			return ErrNotAddressedParty
		}
		return ErrCallNotRinging
	default:
		if !call.IsParticipant(userID) {
			return ErrNotParticipant
		}
		return ErrCallNotActive
	}
}

func (s *CallStore) exists(ctx context.Context, callID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM calls WHERE id = $1`, callID).Scan(&n)
	return n > 0, err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCall(row rowScanner) (*models.Call, error) {
	var c models.Call
	var analysisRaw []byte
	err := row.Scan(
		&c.ID, &c.JobID, &c.AdminUserID, &c.ClientUserID, &c.RoomName, &c.Status,
		&c.RecordingPath, &analysisRaw, &c.CreatedAt, &c.UpdatedAt, &c.StartedAt, &c.EndedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(analysisRaw) > 0 {
		var a engine.Analysis
		if err := json.Unmarshal(analysisRaw, &a); err == nil {
			c.Analysis = &a
		}
	}
	return &c, nil
}
