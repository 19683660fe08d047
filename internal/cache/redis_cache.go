package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/SAP-F-2025/activity-service/internal/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "activity:compiled:"

// ErrMiss is returned by Get when nothing is cached under the key.
var ErrMiss = errors.New("cache miss")

type CacheService interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, key string) error
	DeletePattern(ctx context.Context, pattern string) error
}

type redisCache struct {
	client *redis.Client
	logger *zap.Logger
}

func NewRedisCache(client *redis.Client, logger *zap.Logger) CacheService {
	return &redisCache{
		client: client,
		logger: logger,
	}
}

func (r *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		r.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

func (r *redisCache) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		r.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		return err
	}
	return json.Unmarshal(data, dest)
}

func (r *redisCache) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *redisCache) DeletePattern(ctx context.Context, pattern string) error {
	iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	r.logger.Debug("cache invalidate", zap.String("pattern", pattern), zap.Int("keys", len(keys)))
	return r.client.Del(ctx, keys...).Err()
}

// ActivityCache stores compiled activities keyed by name and a hash of the
// source, so an edited source never serves a stale compile.
type ActivityCache struct {
	store CacheService
	ttl   time.Duration
}

func NewActivityCache(store CacheService, ttl time.Duration) *ActivityCache {
	return &ActivityCache{store: store, ttl: ttl}
}

func ActivityKey(name, markdown string) string {
	sum := sha256.Sum256([]byte(markdown))
	return keyPrefix + name + ":" + hex.EncodeToString(sum[:8])
}

// Get returns the cached compile, or false. Cache errors count as misses.
func (c *ActivityCache) Get(ctx context.Context, name, markdown string) (*models.Activity, bool) {
	var act models.Activity
	if err := c.store.Get(ctx, ActivityKey(name, markdown), &act); err != nil {
		return nil, false
	}
	act.Source = markdown
	return &act, true
}

func (c *ActivityCache) Put(ctx context.Context, name, markdown string, act *models.Activity) {
	_ = c.store.Set(ctx, ActivityKey(name, markdown), act, c.ttl)
}

// Invalidate drops every cached compile of the activity.
func (c *ActivityCache) Invalidate(ctx context.Context, name string) error {
	return c.store.DeletePattern(ctx, keyPrefix+name+":*")
}
