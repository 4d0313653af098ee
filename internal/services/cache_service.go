// internal/services/cache_service.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/snapstudio/marketplace-backend/internal/config"
)

// Cache keys
const (
	CacheKeyHomepage = "snapstudio:homepage"
)

// CacheService is a read-through JSON cache. A service without a client
// caches nothing, and cache errors are logged and treated as misses.
type CacheService struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCacheService(cfg config.RedisConfig) *CacheService {
	if !cfg.Enabled() {
		return &CacheService{}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return NewCacheServiceWithClient(client, time.Duration(cfg.TTL)*time.Second)
}

func NewCacheServiceWithClient(client *redis.Client, ttl time.Duration) *CacheService {
	return &CacheService{client: client, ttl: ttl}
}

func (s *CacheService) Enabled() bool {
	return s != nil && s.client != nil
}

func (s *CacheService) Ping(ctx context.Context) error {
	if !s.Enabled() {
		return nil
	}
	return s.client.Ping(ctx).Err()
}

// GetJSON decodes the cached value of key into dest and reports whether it
// was found.
func (s *CacheService) GetJSON(ctx context.Context, key string, dest interface{}) bool {
	if !s.Enabled() {
		return false
	}

	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logrus.WithError(err).WithField("key", key).Warn("Cache read failed")
		}
		return false
	}

	if err := json.Unmarshal(data, dest); err != nil {
		logrus.WithError(err).WithField("key", key).Warn("Cache entry is corrupt")
		return false
	}
	return true
}

func (s *CacheService) SetJSON(ctx context.Context, key string, value interface{}) {
	if !s.Enabled() {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		logrus.WithError(err).WithField("key", key).Warn("Cache encode failed")
		return
	}

	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		logrus.WithError(err).WithField("key", key).Warn("Cache write failed")
	}
}

func (s *CacheService) Invalidate(ctx context.Context, keys ...string) {
	if !s.Enabled() || len(keys) == 0 {
		return
	}

	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		logrus.WithError(err).WithField("keys", keys).Warn("Cache invalidation failed")
	}
}

func (s *CacheService) Close() error {
	if !s.Enabled() {
		return nil
	}
	return s.client.Close()
}
