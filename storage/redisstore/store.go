// Package redisstore implements tab storage on Redis. Each slot is a plain
// string key of the form <prefix>:<tab>:<key>.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/goGate/storage"
	"github.com/redis/go-redis/v9"
)

// DefaultPrefix is used when an empty prefix is configured.
const DefaultPrefix = "gg"

// Backend stores tab slots in Redis.
type Backend struct {
	redis  redis.UniversalClient
	prefix string
	tabTTL time.Duration
}

// New returns a Redis-backed tab storage backend. tabTTL bounds how long an
// untouched slot survives, mirroring a tab that was closed and never
// reopened; zero keeps slots until they are deleted.
func New(client redis.UniversalClient, prefix string, tabTTL time.Duration) *Backend {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if tabTTL < 0 {
		tabTTL = 0
	}
	return &Backend{
		redis:  client,
		prefix: prefix,
		tabTTL: tabTTL,
	}
}

// Tab returns the storage view for tabID.
func (b *Backend) Tab(tabID string) (storage.Storage, error) {
	id, err := storage.NormalizeTab(tabID)
	if err != nil {
		return nil, err
	}
	return &tab{backend: b, id: id}, nil
}

// Ping checks connectivity and reports round-trip latency.
func (b *Backend) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := b.redis.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", storage.ErrUnavailable, err)
	}
	return time.Since(start), nil
}

func (b *Backend) key(tabID, key string) string {
	return b.prefix + ":" + tabID + ":" + key
}

type tab struct {
	backend *Backend
	id      string
}

func (t *tab) Read(ctx context.Context, key string) (string, bool, error) {
	value, err := t.backend.redis.Get(ctx, t.backend.key(t.id, key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%w: %v", storage.ErrUnavailable, err)
	}
	return value, true, nil
}

func (t *tab) Write(ctx context.Context, key, value string) error {
	if err := t.backend.redis.Set(ctx, t.backend.key(t.id, key), value, t.backend.tabTTL).Err(); err != nil {
		return fmt.Errorf("%w: %v", storage.ErrUnavailable, err)
	}
	return nil
}

func (t *tab) Delete(ctx context.Context, key string) error {
	if err := t.backend.redis.Del(ctx, t.backend.key(t.id, key)).Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("%w: %v", storage.ErrUnavailable, err)
	}
	return nil
}
