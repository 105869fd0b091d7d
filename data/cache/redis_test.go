package cache

import (
	"context"
	"testing"
	"time"

	"github.com/KotFed0t/wealth_tracker/internal/cache"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCache(client), mr
}

func TestRedisCacheSetGet(t *testing.T) {
	ctx := context.Background()
	rc, mr := newTestCache(t)

	require.NoError(t, rc.Set(ctx, "Quote:AAPL", []byte(`"190.5"`), time.Minute))

	got, err := rc.Get(ctx, "Quote:AAPL")
	require.NoError(t, err)
	assert.Equal(t, []byte(`"190.5"`), got)

	mr.FastForward(2 * time.Minute)
	_, err = rc.Get(ctx, "Quote:AAPL")
	assert.ErrorIs(t, err, cache.ErrMiss)
}

func TestRedisCacheDeleteByPrefix(t *testing.T) {
	ctx := context.Background()
	rc, _ := newTestCache(t)

	require.NoError(t, rc.Set(ctx, "Performance:^GSPC:2024-01-01", []byte("a"), time.Hour))
	require.NoError(t, rc.Set(ctx, "Performance:^SET:2024-01-01", []byte("b"), time.Hour))
	require.NoError(t, rc.Set(ctx, "Sector:AAPL", []byte("c"), time.Hour))

	require.NoError(t, rc.DeleteByPrefix(ctx, "Performance"))

	_, err := rc.Get(ctx, "Performance:^GSPC:2024-01-01")
	assert.ErrorIs(t, err, cache.ErrMiss)
	_, err = rc.Get(ctx, "Performance:^SET:2024-01-01")
	assert.ErrorIs(t, err, cache.ErrMiss)

	got, err := rc.Get(ctx, "Sector:AAPL")
	require.NoError(t, err)
	assert.Equal(t, []byte("c"), got)
}

func TestRedisCacheWorksWithGetOrLoad(t *testing.T) {
	ctx := context.Background()
	rc, _ := newTestCache(t)

	calls := 0
	load := func(ctx context.Context) (string, error) {
		calls++
		return "Technology", nil
	}

	for i := 0; i < 3; i++ {
		v, err := cache.GetOrLoad(ctx, rc, cache.Key("Sector", "AAPL"), time.Hour, load)
		require.NoError(t, err)
		assert.Equal(t, "Technology", v)
	}
	assert.Equal(t, 1, calls)
}
