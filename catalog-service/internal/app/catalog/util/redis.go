package util

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"storefront/pkg/metrics"

	"github.com/redis/go-redis/v9"
)

const (
	metricsService = "catalog-service"
	countKeyPrefix = "catalog:count:"
)

// RedisCountCache кеширует количество документов по моделям
type RedisCountCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCountCache подключается к Redis и проверяет соединение
func NewRedisCountCache(addr, password string, db int, ttl time.Duration) (*RedisCountCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisCountCache{client: client, ttl: ttl}, nil
}

func (r *RedisCountCache) GetCount(ctx context.Context, model string) (int64, bool, error) {
	timer := metrics.NewRedisTimer(metricsService, metrics.RedisOpGet)
	defer timer.ObserveDuration()

	data, err := r.client.Get(ctx, countKeyPrefix+model).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.RecordCacheMiss(metricsService, countKeyPrefix)
			return 0, false, nil
		}
		metrics.RecordRedisError(metricsService, metrics.RedisOpGet)
		return 0, false, fmt.Errorf("failed to get count from cache: %w", err)
	}

	count, err := strconv.ParseInt(data, 10, 64)
	if err != nil {
		// Битое значение считаем промахом
		metrics.RecordCacheMiss(metricsService, countKeyPrefix)
		return 0, false, nil
	}

	metrics.RecordCacheHit(metricsService, countKeyPrefix)
	return count, true, nil
}

func (r *RedisCountCache) SetCount(ctx context.Context, model string, count int64) error {
	timer := metrics.NewRedisTimer(metricsService, metrics.RedisOpSet)
	defer timer.ObserveDuration()

	if err := r.client.Set(ctx, countKeyPrefix+model, count, r.ttl).Err(); err != nil {
		metrics.RecordRedisError(metricsService, metrics.RedisOpSet)
		return fmt.Errorf("failed to set count in cache: %w", err)
	}
	return nil
}

func (r *RedisCountCache) Invalidate(ctx context.Context, model string) error {
	timer := metrics.NewRedisTimer(metricsService, metrics.RedisOpDel)
	defer timer.ObserveDuration()

	if err := r.client.Del(ctx, countKeyPrefix+model).Err(); err != nil {
		metrics.RecordRedisError(metricsService, metrics.RedisOpDel)
		return fmt.Errorf("failed to delete count from cache: %w", err)
	}
	return nil
}

func (r *RedisCountCache) Close() error {
	return r.client.Close()
}
