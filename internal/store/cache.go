// internal/store/cache.go
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"intentrisk-workers/internal/models"

	"github.com/redis/go-redis/v9"
)

// incomingCallTTL keeps a ringing-call entry alive a little past the ring
// timeout so a late poll still sees the missed call being cleaned up.
const incomingCallTTL = 60 * time.Second

// IncomingCallCache holds the per-client ringing-call payload the client
// app polls while a call rings.
type IncomingCallCache struct {
	client *redis.Client
}

func NewIncomingCallCache(client *redis.Client) *IncomingCallCache {
	return &IncomingCallCache{client: client}
}

func incomingCallKey(clientUserID string) string {
	return "call:incoming:" + clientUserID
}

// Put stores the incoming-call payload for the addressed client.
func (c *IncomingCallCache) Put(ctx context.Context, clientUserID string, call models.IncomingCall) error {
	data, err := json.Marshal(call)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, incomingCallKey(clientUserID), data, incomingCallTTL).Err(); err != nil {
		return fmt.Errorf("cache incoming call: %w", err)
	}
	return nil
}

// Get returns the pending incoming call, or nil when none is ringing.
func (c *IncomingCallCache) Get(ctx context.Context, clientUserID string) (*models.IncomingCall, error) {
	raw, err := c.client.Get(ctx, incomingCallKey(clientUserID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var call models.IncomingCall
	if err := json.Unmarshal([]byte(raw), &call); err != nil {
		return nil, err
	}
	return &call, nil
}

// Clear removes the entry once the call is answered, rejected, or missed.
func (c *IncomingCallCache) Clear(ctx context.Context, clientUserID string) error {
	return c.client.Del(ctx, incomingCallKey(clientUserID)).Err()
}
