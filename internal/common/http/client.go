// internal/common/http/client.go
package http

import (
	"context"
	"net/http"
	"time"
)

const defaultTimeout = 30 * time.Second

// Client is the shared outbound HTTP client for collaborator services
// (transcription, recording fetch). A zero timeout falls back to the
// default so a misconfigured worker cannot hang on a dead collaborator.
type Client struct {
	httpClient *http.Client
}

func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.httpClient.Do(req)
}

func (c *Client) DoWithContext(ctx context.Context, req *http.Request) (*http.Response, error) {
	req = req.WithContext(ctx)
	return c.httpClient.Do(req)
}
