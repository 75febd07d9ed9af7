// Package cache provides a redis-backed JSON cache. It is an optimization
// layer only; the database stays the source of truth.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultStatusTTL matches the payment-status freshness window.
const DefaultStatusTTL = 30 * time.Second

// HandoffTTL bounds how long a configuration handoff hint survives the
// redirect through the auth flow.
const HandoffTTL = 15 * time.Minute

// Cache wraps a redis client with JSON encoding.
type Cache struct {
	rdb *redis.Client
}

// New creates a cache on the given redis client.
func New(rdb *redis.Client) *Cache {
	return &Cache{rdb: rdb}
}

// Get loads the value stored at key into dest. The second return value is
// false on a miss.
func (c *Cache) Get(ctx context.Context, key string, dest any) (bool, error) {
	payload, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}

	if err := json.Unmarshal(payload, dest); err != nil {
		return false, fmt.Errorf("cache decode %s: %w", key, err)
	}
	return true, nil
}

// Set stores value at key for ttl.
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}

	if err := c.rdb.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

// Delete removes key.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := c.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("cache delete %s: %w", key, err)
	}
	return nil
}

// SetHandoff records the configuration a user was working on before the
// login redirect.
func (c *Cache) SetHandoff(ctx context.Context, sessionID, configID string) error {
	return c.Set(ctx, handoffKey(sessionID), configID, HandoffTTL)
}

// TakeHandoff returns and clears the stored handoff hint.
func (c *Cache) TakeHandoff(ctx context.Context, sessionID string) (string, bool, error) {
	var configID string
	found, err := c.Get(ctx, handoffKey(sessionID), &configID)
	if err != nil || !found {
		return "", false, err
	}

	// Best effort: a stale hint expires on its own.
	_ = c.Delete(ctx, handoffKey(sessionID))
	return configID, true, nil
}

func handoffKey(sessionID string) string {
	return "handoff:" + sessionID
}
