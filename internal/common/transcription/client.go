// internal/common/transcription/client.go

// Package transcription calls the external speech-to-text collaborator.
// Transcripts are best-effort: analysis proceeds on an empty transcript
// when the collaborator is down, so callers never fail on this path.
package transcription

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	commonhttp "intentrisk-workers/internal/common/http"
	"intentrisk-workers/internal/common/logger"

	"github.com/cenkalti/backoff/v4"
)

// Client posts audio to the speech-to-text service.
type Client struct {
	baseURL    string
	apiKey     string
	http       *commonhttp.Client
	maxRetries uint64
	logger     logger.Logger
}

type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int
}

func NewClient(cfg Config, log logger.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		http:       commonhttp.NewClient(cfg.Timeout),
		maxRetries: uint64(cfg.MaxRetries),
		logger:     log,
	}
}

type transcriptResponse struct {
	Transcript string `json:"transcript"`
}

// Transcribe sends WAV audio and returns the transcript text. Transient
// failures are retried with exponential backoff; exhausting the retries
// returns an empty transcript and no error — degradation, not failure.
func (c *Client) Transcribe(ctx context.Context, wavAudio []byte) string {
	if c.baseURL == "" || len(wavAudio) == 0 {
		return ""
	}

	var transcript string
	operation := func() error {
		text, err := c.post(ctx, wavAudio)
		if err != nil {
			return err
		}
		transcript = text
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries),
		ctx,
	)
	if err := backoff.Retry(operation, policy); err != nil {
		c.logger.Warn("transcription unavailable, proceeding without transcript", map[string]interface{}{
			"error": err.Error(),
		})
		return ""
	}
	return transcript
}

func (c *Client) post(ctx context.Context, wavAudio []byte) (string, error) {
	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/v1/transcribe", bytes.NewReader(wavAudio))
	if err != nil {
		return "", backoff.Permanent(err)
	}
	req.Header.Set("Content-Type", "audio/wav")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.DoWithContext(ctx, req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return "", fmt.Errorf("transcription service returned %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		// Client errors will not improve on retry.
		return "", backoff.Permanent(fmt.Errorf("transcription service returned %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}

	var parsed transcriptResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", backoff.Permanent(fmt.Errorf("parse transcription response: %w", err))
	}
	return parsed.Transcript, nil
}
