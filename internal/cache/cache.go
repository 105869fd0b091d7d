package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/KotFed0t/wealth_tracker/utils"
)

var ErrMiss = errors.New("cache miss")

// Store keeps raw values with a time to live. Get returns ErrMiss for absent or expired keys.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeleteByPrefix(ctx context.Context, prefix string) error
}

// Key builds a cache key from a function identity and its arguments.
func Key(fn string, args ...any) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, fn)
	for _, arg := range args {
		switch v := arg.(type) {
		case time.Time:
			parts = append(parts, v.UTC().Format(time.RFC3339))
		default:
			parts = append(parts, fmt.Sprint(v))
		}
	}
	return strings.Join(parts, ":")
}

// GetOrLoad returns the cached value under key or calls load and stores its
// result for ttl. Load errors are returned and never cached. A broken store
// only costs a reload.
func GetOrLoad[T any](ctx context.Context, store Store, key string, ttl time.Duration, load func(ctx context.Context) (T, error)) (T, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	raw, err := store.Get(ctx, key)
	if err == nil {
		var cached T
		if err = json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
		slog.Warn("can't unmarshal cached value", slog.String("rqID", rqID), slog.String("key", key), slog.String("err", err.Error()))
	} else if !errors.Is(err, ErrMiss) {
		slog.Warn("cache get failed", slog.String("rqID", rqID), slog.String("key", key), slog.String("err", err.Error()))
	}

	value, err := load(ctx)
	if err != nil {
		return value, err
	}

	raw, err = json.Marshal(value)
	if err != nil {
		slog.Warn("can't marshal value for cache", slog.String("rqID", rqID), slog.String("key", key), slog.String("err", err.Error()))
		return value, nil
	}

	if err = store.Set(ctx, key, raw, ttl); err != nil {
		slog.Warn("cache set failed", slog.String("rqID", rqID), slog.String("key", key), slog.String("err", err.Error()))
	}

	return value, nil
}
