package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func TestKey(t *testing.T) {
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "History:AAPL:2024-05-01T00:00:00Z", Key("History", "AAPL", day))
	assert.Equal(t, "Quote:BTC-USD", Key("Quote", "BTC-USD"))
	assert.Equal(t, "Performance", Key("Performance"))
}

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	store := NewMemory(clock)

	require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Minute))

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	clock.Advance(time.Minute)
	_, err = store.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestMemoryDeleteByPrefix(t *testing.T) {
	ctx := context.Background()
	store := NewMemory(nil)

	require.NoError(t, store.Set(ctx, "Performance:^GSPC", []byte("1"), time.Hour))
	require.NoError(t, store.Set(ctx, "Quote:AAPL", []byte("2"), time.Hour))
	require.NoError(t, store.DeleteByPrefix(ctx, "Performance"))

	_, err := store.Get(ctx, "Performance:^GSPC")
	assert.ErrorIs(t, err, ErrMiss)
	_, err = store.Get(ctx, "Quote:AAPL")
	assert.NoError(t, err)
}

func TestGetOrLoad(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	store := NewMemory(clock)

	calls := 0
	load := func(ctx context.Context) (int, error) {
		calls++
		return 42 + calls, nil
	}

	v, err := GetOrLoad(ctx, store, "answer", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, 43, v)

	v, err = GetOrLoad(ctx, store, "answer", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, 43, v)
	assert.Equal(t, 1, calls)

	clock.Advance(2 * time.Minute)
	v, err = GetOrLoad(ctx, store, "answer", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, 44, v)
	assert.Equal(t, 2, calls)
}

func TestGetOrLoadDoesNotCacheErrors(t *testing.T) {
	ctx := context.Background()
	store := NewMemory(nil)
	boom := errors.New("boom")

	_, err := GetOrLoad(ctx, store, "k", time.Minute, func(ctx context.Context) (string, error) {
		return "", boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = store.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}
