package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"

	"github.com/OldStager01/monitor-platform/pkg/models"
)

const (
	DefaultSize = 1024
	DefaultTTL  = 10 * time.Minute
)

// AnalysisCache keeps the latest hotspot analysis per process.
type AnalysisCache interface {
	Get(ctx context.Context, processID int64) (*models.ThreadHotspotAnalysis, bool, error)
	Set(ctx context.Context, analysis *models.ThreadHotspotAnalysis) error
	Close() error
}

// MemoryCache is a size-bounded LRU whose entries also expire after a TTL.
type MemoryCache struct {
	lru *expirable.LRU[int64, *models.ThreadHotspotAnalysis]
}

func NewMemoryCache(size int, ttl time.Duration) *MemoryCache {
	if size <= 0 {
		size = DefaultSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryCache{
		lru: expirable.NewLRU[int64, *models.ThreadHotspotAnalysis](size, nil, ttl),
	}
}

func (c *MemoryCache) Get(_ context.Context, processID int64) (*models.ThreadHotspotAnalysis, bool, error) {
	analysis, ok := c.lru.Get(processID)
	return analysis, ok, nil
}

func (c *MemoryCache) Set(_ context.Context, analysis *models.ThreadHotspotAnalysis) error {
	c.lru.Add(analysis.ProcessID, analysis)
	return nil
}

func (c *MemoryCache) Len() int {
	return c.lru.Len()
}

func (c *MemoryCache) Close() error {
	c.lru.Purge()
	return nil
}

type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
	TTL       time.Duration
}

// RedisCache stores analyses as JSON so several API replicas share results.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisCache(cfg RedisConfig) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return NewRedisCacheWithClient(client, cfg.KeyPrefix, cfg.TTL)
}

func NewRedisCacheWithClient(client *redis.Client, prefix string, ttl time.Duration) *RedisCache {
	if prefix == "" {
		prefix = "monitor"
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCache{client: client, prefix: prefix, ttl: ttl}
}

func (c *RedisCache) key(processID int64) string {
	return fmt.Sprintf("%s:analysis:process:%d", c.prefix, processID)
}

func (c *RedisCache) Get(ctx context.Context, processID int64) (*models.ThreadHotspotAnalysis, bool, error) {
	data, err := c.client.Get(ctx, c.key(processID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cached analysis: %w", err)
	}

	var analysis models.ThreadHotspotAnalysis
	if err := json.Unmarshal(data, &analysis); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached analysis: %w", err)
	}
	return &analysis, true, nil
}

func (c *RedisCache) Set(ctx context.Context, analysis *models.ThreadHotspotAnalysis) error {
	data, err := json.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("failed to encode analysis: %w", err)
	}
	if err := c.client.Set(ctx, c.key(analysis.ProcessID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache analysis: %w", err)
	}
	return nil
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
