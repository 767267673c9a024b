// internal/workers/interview/invite-interview/handler.go
package inviteinterview

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
	"github.com/google/uuid"
)

const (
	TaskType = "invite-interview"
)

const invitedStatus = "invited_interview"

type Handler struct {
	config       *Config
	interviews   *store.InterviewStore
	applications *store.ApplicationStore
	logger       logger.Logger
}

func NewHandler(config *Config, interviews *store.InterviewStore, applications *store.ApplicationStore, log logger.Logger) *Handler {
	return &Handler{
		config:       config,
		interviews:   interviews,
		applications: applications,
		logger:       log.WithFields(map[string]interface{}{"taskType": TaskType}),
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
		if errors.Is(err, store.ErrApplicationNotFound) {
			errorCode = "APPLICATION_NOT_FOUND"
			retries = 0
		}
		h.failJob(client, job, errorCode, err.Error(), retries)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.JobID == "" || input.ClientID == "" {
		return nil, fmt.Errorf("jobId and clientId are required")
	}

	// An invitation without an application row has nothing to flip later.
	if _, err := h.applications.Get(ctx, input.JobID, input.ClientID); err != nil {
		return nil, err
	}

	iv := &models.Interview{
		ID:       uuid.New().String(),
		JobID:    input.JobID,
		ClientID: input.ClientID,
		AdminID:  input.AdminID,
	}
	if input.ScheduledAt != "" {
		t, err := time.Parse(time.RFC3339, input.ScheduledAt)
		if err != nil {
			return nil, fmt.Errorf("parse scheduledAt: %w", err)
		}
		iv.ScheduledAt = &t
	}
	iv.CreatedAt = time.Now().UTC()

	if err := h.interviews.Upsert(ctx, iv); err != nil {
		return nil, fmt.Errorf("upsert interview: %w", err)
	}

	if err := h.applications.MarkInvited(ctx, input.JobID, input.ClientID); err != nil {
		return nil, err
	}

	h.logger.Info("interview invitation recorded", map[string]interface{}{
		"interviewId": iv.ID,
		"jobId":       input.JobID,
		"clientId":    input.ClientID,
	})

	return &Output{
		InterviewID:       iv.ID,
		InterviewStatus:   string(models.InterviewPending),
		ApplicationStatus: invitedStatus,
		RecipientID:       input.ClientID,
		RecipientType:     "client",
		NotificationType:  "interview_invite",
		CreatedAt:         iv.CreatedAt.Format(time.RFC3339),
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
