// internal/workers/call/initiate-call/handler.go
package initiatecall

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"intentrisk-workers/internal/common/conferencing"
	"intentrisk-workers/internal/common/logger"
	"intentrisk-workers/internal/models"
	"intentrisk-workers/internal/store"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "initiate-call"
)

var (
	ErrRoomTokenFailed = errors.New("ROOM_TOKEN_FAILED")
)

type Handler struct {
	config *Config
	calls  *store.CallStore
	cache  *store.IncomingCallCache
	tokens *conferencing.TokenService
	logger logger.Logger
}

func NewHandler(config *Config, calls *store.CallStore, cache *store.IncomingCallCache, tokens *conferencing.TokenService, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		calls:  calls,
		cache:  cache,
		tokens: tokens,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err), 0)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		errorCode := "UNKNOWN_ERROR"
		retries := int32(0)
		if errors.Is(err, store.ErrActiveCallExists) {
			errorCode = "ACTIVE_CALL_EXISTS"
		} else if errors.Is(err, ErrRoomTokenFailed) {
			errorCode = "ROOM_TOKEN_FAILED"
			retries = 3
		} else {
			errorCode = "QUERY_EXECUTION_FAILED"
			retries = 3
		}
		h.failJob(client, job, errorCode, err.Error(), retries)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.JobID == "" || input.AdminUserID == "" || input.ClientUserID == "" {
		return nil, fmt.Errorf("jobId, adminUserId and clientUserId are required")
	}

	callID := uuid.New().String()
	roomName := "call-" + callID

	call := &models.Call{
		ID:           callID,
		JobID:        input.JobID,
		AdminUserID:  input.AdminUserID,
		ClientUserID: input.ClientUserID,
		RoomName:     roomName,
		Status:       models.CallRinging,
	}
	if err := h.calls.CreateRinging(ctx, call); err != nil {
		return nil, err
	}

	adminToken, err := h.tokens.MintToken(input.AdminUserID, roomName)
	if err != nil {
		return nil, fmt.Errorf("%w: admin token: %v", ErrRoomTokenFailed, err)
	}
	clientToken, err := h.tokens.MintToken(input.ClientUserID, roomName)
	if err != nil {
		return nil, fmt.Errorf("%w: client token: %v", ErrRoomTokenFailed, err)
	}

	createdAt := time.Now().UTC().Format(time.RFC3339)

	// Cache is how the client app discovers the ringing call; a cache
	// outage degrades to a missed call rather than failing the job.
	err = h.cache.Put(ctx, input.ClientUserID, models.IncomingCall{
		CallID:      callID,
		JobID:       input.JobID,
		AdminUserID: input.AdminUserID,
		RoomName:    roomName,
		ClientToken: clientToken,
		CreatedAt:   createdAt,
	})
	if err != nil {
		h.logger.Warn("failed to cache incoming call", map[string]interface{}{
			"callId": callID,
			"error":  err.Error(),
		})
	}

	h.logger.Info("call created", map[string]interface{}{
		"callId":       callID,
		"jobId":        input.JobID,
		"adminUserId":  input.AdminUserID,
		"clientUserId": input.ClientUserID,
	})

	return &Output{
		CallID:     callID,
		RoomName:   roomName,
		AdminToken: adminToken,
		CallStatus: string(models.CallRinging),
		CreatedAt:  createdAt,
	}, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	} else {
		h.logger.Info("job completed successfully", map[string]interface{}{
			"jobKey": job.Key,
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string, retries int32) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
		"retries":      retries,
	})

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
