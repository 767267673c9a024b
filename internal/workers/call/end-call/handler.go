// internal/workers/call/end-call/handler.go
package endcall

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"intentrisk-workers/internal/common/logger"
	"intentrisk-workers/internal/models"
	"intentrisk-workers/internal/store"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "end-call"
)

type Handler struct {
	config *Config
	calls  *store.CallStore
	cache  *store.IncomingCallCache
	logger logger.Logger
}

func NewHandler(config *Config, calls *store.CallStore, cache *store.IncomingCallCache, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		calls:  calls,
		cache:  cache,
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
		errorCode := "QUERY_EXECUTION_FAILED"
		retries := int32(3)
		switch {
		case errors.Is(err, store.ErrCallNotFound):
			errorCode = "CALL_NOT_FOUND"
			retries = 0
		case errors.Is(err, store.ErrNotParticipant):
			errorCode = "NOT_CALL_PARTICIPANT"
			retries = 0
		case errors.Is(err, store.ErrCallNotActive):
			errorCode = "CALL_NOT_ACTIVE"
			retries = 0
		}
		h.failJob(client, job, errorCode, err.Error(), retries)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if err := h.calls.End(ctx, input.CallID, input.UserID); err != nil {
		return nil, err
	}

	// A call ended while still ringing leaves a stale cache entry behind.
	if call, err := h.calls.GetByID(ctx, input.CallID); err == nil {
		if err := h.cache.Clear(ctx, call.ClientUserID); err != nil {
			h.logger.Warn("failed to clear incoming call cache", map[string]interface{}{
				"callId": input.CallID,
				"error":  err.Error(),
			})
		}
	}

	h.logger.Info("call ended", map[string]interface{}{
		"callId": input.CallID,
		"userId": input.UserID,
	})

	return &Output{
		CallID:     input.CallID,
		CallStatus: string(models.CallEnded),
		EndedAt:    time.Now().UTC().Format(time.RFC3339),
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
