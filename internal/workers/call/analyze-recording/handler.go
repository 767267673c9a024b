// internal/workers/call/analyze-recording/handler.go
package analyzerecording

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"intentrisk-workers/internal/audio"
	"intentrisk-workers/internal/common/logger"
	"intentrisk-workers/internal/common/metrics"
	"intentrisk-workers/internal/common/transcription"
	"intentrisk-workers/internal/common/validation"
	"intentrisk-workers/internal/engine"
	"intentrisk-workers/internal/models"
	"intentrisk-workers/internal/store"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "analyze-recording"
)

type Handler struct {
	config      *Config
	calls       *store.CallStore
	index       *store.AssessmentIndex
	engine      *engine.Engine
	transcriber *transcription.Client
	logger      logger.Logger
}

func NewHandler(config *Config, calls *store.CallStore, index *store.AssessmentIndex, eng *engine.Engine, transcriber *transcription.Client, log logger.Logger) *Handler {
	return &Handler{
		config:      config,
		calls:       calls,
		index:       index,
		engine:      eng,
		transcriber: transcriber,
		logger:      log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	startTime := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	input, err := h.parseInput(job)
	if err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, "VALIDATION_FAILED").Inc()
		h.failJob(client, job, "VALIDATION_FAILED", err.Error(), 0)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, input)
	if err != nil {
		errorCode := "QUERY_EXECUTION_FAILED"
		retries := int32(3)
		var vErr *audio.ValidationError
		switch {
		case errors.As(err, &vErr):
			errorCode = vErr.Code
			retries = 0
		case errors.Is(err, store.ErrCallNotFound):
			errorCode = "CALL_NOT_FOUND"
			retries = 0
		case errors.Is(err, store.ErrNotAddressedParty):
			errorCode = "NOT_CALL_PARTICIPANT"
			retries = 0
		case errors.Is(err, store.ErrCallNotEnded):
			errorCode = "CALL_NOT_ENDED"
			retries = 0
		}
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, errorCode).Inc()
		h.failJob(client, job, errorCode, err.Error(), retries)
		return
	}

	h.completeJob(client, job, output)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(startTime).Seconds())
}

func (h *Handler) parseInput(job entities.Job) (*Input, error) {
	variables, err := job.GetVariablesAsMap()
	if err != nil {
		return nil, fmt.Errorf("parse job variables: %w", err)
	}

	schema := GetInputSchema()
	validationResult := validation.ValidateInput(variables, schema)
	if !validationResult.Valid {
		return nil, fmt.Errorf("input validation failed: %v", validationResult.GetErrorMessages())
	}

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		return nil, fmt.Errorf("parse input: %w", err)
	}
	return &input, nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	call, err := h.calls.GetByID(ctx, input.CallID)
	if err != nil {
		return nil, err
	}
	// Only the assessed party may submit the recording.
	if input.UserID != call.ClientUserID {
		return nil, fmt.Errorf("%w: user %s is not the call client", store.ErrNotAddressedParty, input.UserID)
	}
	if call.Status != models.CallEnded {
		return nil, fmt.Errorf("%w: call %s is %s", store.ErrCallNotEnded, call.ID, call.Status)
	}

	raw, err := base64.StdEncoding.DecodeString(input.AudioBase64)
	if err != nil {
		return nil, &audio.ValidationError{
			Code:    audio.CodeInvalidBase64,
			Message: fmt.Sprintf("decode audio payload: %v", err),
		}
	}

	transcript := input.Transcript
	if transcript == "" {
		transcript = h.transcriber.Transcribe(ctx, raw)
	}

	analysis, err := h.engine.Assess(ctx, engine.AssessInput{
		Audio:          raw,
		Transcript:     transcript,
		ValidateUpload: true,
	})
	if err != nil {
		return nil, err
	}

	if err := h.calls.AttachAnalysis(ctx, call.ID, input.RecordingPath, &analysis); err != nil {
		return nil, err
	}

	if err := h.index.IndexAnalysis(ctx, "call", call.ID, call.JobID, &analysis); err != nil {
		h.logger.Warn("failed to index analysis", map[string]interface{}{
			"callId": call.ID,
			"error":  err.Error(),
		})
	}

	h.logger.Info("call recording analyzed", map[string]interface{}{
		"callId":       call.ID,
		"intent":       analysis.Label,
		"confidence":   analysis.Confidence,
		"modelVersion": analysis.ModelVersion,
	})

	return &Output{
		CallID:       call.ID,
		Intent:       analysis.Label,
		Confidence:   analysis.Confidence,
		Scores:       analysis.Scores,
		Reasons:      analysis.Reasons,
		ModelVersion: analysis.ModelVersion,
		AnalyzedAt:   analysis.AnalyzedAt.UTC().Format(time.RFC3339),
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
