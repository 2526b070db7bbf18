package services

import (
	"context"
	"time"

	"ecoride/pkg/cache"
	"ecoride/pkg/logger"
)

type CacheService interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error)
	Ping(ctx context.Context) error
}

type cacheService struct {
	redis  *cache.RedisCache
	logger *logger.Logger
}

func NewCacheService(redis *cache.RedisCache, logger *logger.Logger) CacheService {
	return &cacheService{
		redis:  redis,
		logger: logger,
	}
}

func (s *cacheService) Get(ctx context.Context, key string, dest interface{}) error {
	return s.redis.Get(ctx, key, dest)
}

func (s *cacheService) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if err := s.redis.Set(ctx, key, value, expiration); err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("Failed to write cache entry")
		return err
	}
	return nil
}

func (s *cacheService) Delete(ctx context.Context, keys ...string) error {
	if err := s.redis.Delete(ctx, keys...); err != nil {
		s.logger.WithError(err).Warn("Failed to delete cache entries")
		return err
	}
	return nil
}

func (s *cacheService) Exists(ctx context.Context, key string) (bool, error) {
	return s.redis.Exists(ctx, key)
}

func (s *cacheService) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	return s.redis.SetNX(ctx, key, value, expiration)
}

func (s *cacheService) Ping(ctx context.Context) error {
	return s.redis.Ping(ctx)
}
