// Package redis provides the TTL cache behind the read-only limit endpoints.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sendloop/sendloop/internal/billing"
)

type Cache struct {
	client *redis.Client
}

func New(ctx context.Context, addr, password string, db int) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis.New: ping: %w", err)
	}

	return &Cache{client: client}, nil
}

func (c *Cache) Close() error {
	if err := c.client.Close(); err != nil {
		return fmt.Errorf("redis.Cache.Close: %w", err)
	}
	return nil
}

// Get returns the cached snapshot for key. A miss is (zero, false, nil).
func (c *Cache) Get(ctx context.Context, key string) (billing.Snapshot, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return billing.Snapshot{}, false, nil
	}
	if err != nil {
		return billing.Snapshot{}, false, fmt.Errorf("redis.Cache.Get: %w", err)
	}

	var snap billing.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return billing.Snapshot{}, false, fmt.Errorf("redis.Cache.Get: decode: %w", err)
	}

	return snap, true, nil
}

// Set stores the snapshot under key with the given TTL.
func (c *Cache) Set(ctx context.Context, key string, snap billing.Snapshot, ttl time.Duration) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("redis.Cache.Set: encode: %w", err)
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis.Cache.Set: %w", err)
	}

	return nil
}
