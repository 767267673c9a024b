// internal/workers/interview/analyze-interview/handler.go
package analyzeinterview

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"intentrisk-workers/internal/audio"
	"intentrisk-workers/internal/classifier"
	"intentrisk-workers/internal/common/logger"
	"intentrisk-workers/internal/common/media"
	"intentrisk-workers/internal/common/metrics"
	"intentrisk-workers/internal/common/transcription"
	"intentrisk-workers/internal/common/validation"
	"intentrisk-workers/internal/engine"
	"intentrisk-workers/internal/store"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "analyze-interview"
)

type Handler struct {
	config       *Config
	interviews   *store.InterviewStore
	applications *store.ApplicationStore
	index        *store.AssessmentIndex
	engine       *engine.Engine
	demuxer      *media.Demuxer
	transcriber  *transcription.Client
	logger       logger.Logger
}

func NewHandler(config *Config, interviews *store.InterviewStore, applications *store.ApplicationStore, index *store.AssessmentIndex, eng *engine.Engine, demuxer *media.Demuxer, transcriber *transcription.Client, log logger.Logger) *Handler {
	return &Handler{
		config:       config,
		interviews:   interviews,
		applications: applications,
		index:        index,
		engine:       eng,
		demuxer:      demuxer,
		transcriber:  transcriber,
		logger:       log.WithFields(map[string]interface{}{"taskType": TaskType}),
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
		case errors.Is(err, store.ErrInterviewNotFound):
			errorCode = "INTERVIEW_NOT_FOUND"
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
	iv, err := h.interviews.GetByID(ctx, input.InterviewID)
	if err != nil {
		return nil, err
	}

	if input.VideoBase64 == "" {
		return nil, &audio.ValidationError{Code: audio.CodeEmptyAudio, Message: "video payload is empty"}
	}
	video, err := base64.StdEncoding.DecodeString(input.VideoBase64)
	if err != nil {
		return nil, &audio.ValidationError{
			Code:    audio.CodeInvalidBase64,
			Message: fmt.Sprintf("decode video payload: %v", err),
		}
	}

	// Demux failures degrade to a text-only (or fully zero) assessment
	// rather than failing the job; the video itself is never persisted.
	wavAudio, err := h.demuxer.ExtractAudio(ctx, video)
	if err != nil {
		h.logger.Warn("audio extraction failed, assessing without acoustic features", map[string]interface{}{
			"interviewId": iv.ID,
			"error":       err.Error(),
		})
		wavAudio = nil
	}

	var duration float64
	if len(wavAudio) > 0 {
		if samples, rate, err := audio.DecodeWAV(wavAudio); err == nil && rate > 0 {
			duration = float64(len(samples)) / float64(rate)
		}
	}

	transcript := input.Transcript
	if transcript == "" && len(wavAudio) > 0 {
		transcript = h.transcriber.Transcribe(ctx, wavAudio)
	}

	analysis, err := h.engine.Assess(ctx, engine.AssessInput{
		Audio:      wavAudio,
		Transcript: transcript,
	})
	if err != nil {
		return nil, err
	}

	decision, appStatus := engine.InterviewDecision(classifier.Label(analysis.Label))

	if err := h.interviews.Complete(ctx, iv.ID, duration, decision, &analysis); err != nil {
		return nil, err
	}
	if err := h.applications.SetStatus(ctx, iv.JobID, iv.ClientID, string(appStatus)); err != nil {
		if errors.Is(err, store.ErrApplicationNotFound) {
			h.logger.Warn("no application row to update", map[string]interface{}{
				"interviewId": iv.ID,
				"jobId":       iv.JobID,
			})
		} else {
			return nil, err
		}
	}

	if err := h.index.IndexAnalysis(ctx, "interview", iv.ID, iv.JobID, &analysis); err != nil {
		h.logger.Warn("failed to index analysis", map[string]interface{}{
			"interviewId": iv.ID,
			"error":       err.Error(),
		})
	}

	h.logger.Info("interview analyzed", map[string]interface{}{
		"interviewId":  iv.ID,
		"decision":     decision,
		"intent":       analysis.Label,
		"confidence":   analysis.Confidence,
		"modelVersion": analysis.ModelVersion,
	})

	return &Output{
		InterviewID:       iv.ID,
		InterviewStatus:   "completed",
		Decision:          decision,
		ApplicationStatus: string(appStatus),
		Intent:            analysis.Label,
		Confidence:        analysis.Confidence,
		ModelVersion:      analysis.ModelVersion,
		RecipientID:       iv.ClientID,
		RecipientType:     "client",
		NotificationType:  "decision_notice",
		AnalyzedAt:        analysis.AnalyzedAt.UTC().Format(time.RFC3339),
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
