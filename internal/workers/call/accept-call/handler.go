// internal/workers/call/accept-call/handler.go
package acceptcall

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
)

const (
	TaskType = "accept-call"
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
		h.failJob(client, job, mapErrorToCode(err), err.Error(), retriesFor(err))
		return
	}

	h.completeJob(client, job, output)
}

func mapErrorToCode(err error) string {
	switch {
	case errors.Is(err, store.ErrCallNotFound):
		return "CALL_NOT_FOUND"
	case errors.Is(err, store.ErrNotAddressedParty):
		return "NOT_CALL_PARTICIPANT"
	case errors.Is(err, store.ErrCallNotRinging):
		return "CALL_NOT_RINGING"
	case errors.Is(err, ErrRoomTokenFailed):
		return "ROOM_TOKEN_FAILED"
	default:
		return "QUERY_EXECUTION_FAILED"
	}
}

func retriesFor(err error) int32 {
	if errors.Is(err, ErrRoomTokenFailed) || mapErrorToCode(err) == "QUERY_EXECUTION_FAILED" {
		return 3
	}
	return 0
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if err := h.calls.Accept(ctx, input.CallID, input.UserID); err != nil {
		return nil, err
	}

	call, err := h.calls.GetByID(ctx, input.CallID)
	if err != nil {
		return nil, err
	}

	clientToken := h.cachedToken(ctx, call)
	if clientToken == "" {
		clientToken, err = h.tokens.MintToken(call.ClientUserID, call.RoomName)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRoomTokenFailed, err)
		}
	}

	if err := h.cache.Clear(ctx, call.ClientUserID); err != nil {
		h.logger.Warn("failed to clear incoming call cache", map[string]interface{}{
			"callId": call.ID,
			"error":  err.Error(),
		})
	}

	h.logger.Info("call accepted", map[string]interface{}{
		"callId": call.ID,
		"userId": input.UserID,
	})

	return &Output{
		CallID:      call.ID,
		RoomName:    call.RoomName,
		ClientToken: clientToken,
		CallStatus:  string(models.CallAccepted),
		AcceptedAt:  time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// cachedToken returns the token minted at initiation, if the cache entry
// is still present and belongs to this call.
func (h *Handler) cachedToken(ctx context.Context, call *models.Call) string {
	incoming, err := h.cache.Get(ctx, call.ClientUserID)
	if err != nil {
		h.logger.Warn("incoming call cache lookup failed", map[string]interface{}{
			"callId": call.ID,
			"error":  err.Error(),
		})
		return ""
	}
	if incoming == nil || incoming.CallID != call.ID {
		return ""
	}
	return incoming.ClientToken
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
