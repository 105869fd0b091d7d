package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/KotFed0t/wealth_tracker/internal/cache"
	"github.com/KotFed0t/wealth_tracker/utils"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix     = "wealth_tracker:"
	scanBatchSize = 100
)

// RedisCache is the shared cache.Store used when several processes read the same ledger.
type RedisCache struct {
	redis *redis.Client
}

func NewRedisCache(redisClient *redis.Client) *RedisCache {
	return &RedisCache{redis: redisClient}
}

func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	res, err := r.redis.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, cache.ErrMiss
		}
		slog.Error(
			"failed on redis.Get",
			slog.String("rqID", utils.GetRequestIDFromCtx(ctx)),
			slog.String("err", err.Error()),
			slog.String("key", key),
		)
		return nil, err
	}

	return res, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	err := r.redis.Set(ctx, keyPrefix+key, value, ttl).Err()
	if err != nil {
		slog.Error(
			"failed on redis.Set",
			slog.String("rqID", utils.GetRequestIDFromCtx(ctx)),
			slog.String("err", err.Error()),
			slog.String("key", key),
		)
		return err
	}

	return nil
}

func (r *RedisCache) DeleteByPrefix(ctx context.Context, prefix string) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("DeleteByPrefix start", slog.String("rqID", rqID), slog.String("prefix", prefix))

	var cursor uint64
	deleted := 0
	for {
		keys, next, err := r.redis.Scan(ctx, cursor, keyPrefix+prefix+"*", scanBatchSize).Result()
		if err != nil {
			slog.Error("failed on redis.Scan", slog.String("rqID", rqID), slog.String("err", err.Error()))
			return err
		}

		if len(keys) > 0 {
			if err = r.redis.Del(ctx, keys...).Err(); err != nil {
				slog.Error("failed on redis.Del", slog.String("rqID", rqID), slog.String("err", err.Error()))
				return err
			}
			deleted += len(keys)
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	slog.Debug("DeleteByPrefix completed", slog.String("rqID", rqID), slog.Int("deleted", deleted))

	return nil
}
