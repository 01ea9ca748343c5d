package local

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *LocalCache {
	t.Helper()
	c, err := NewCache(Config{GCInterval: time.Minute})
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func TestKV_SetGetDel(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	_, err := c.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, c.Set(ctx, "k", "v", 0))
	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)

	ok, err := c.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, c.Del(ctx, "k"))
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestKV_TTLExpiry(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v", 20*time.Millisecond))
	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)

	time.Sleep(30 * time.Millisecond)
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)

	ok, err := c.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestZSet_RevRangeOrder(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.ZAdd(ctx, "lb", 100, "a"))
	require.NoError(t, c.ZAdd(ctx, "lb", 300, "b"))
	require.NoError(t, c.ZAdd(ctx, "lb", 200, "c"))

	members, err := c.ZRevRange(ctx, "lb", 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c", "a"}, members)

	members, err = c.ZRevRange(ctx, "lb", 0, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, members)

	members, err = c.ZRevRange(ctx, "lb", 5, -1)
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestZSet_AddUpdatesScore(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.ZAdd(ctx, "lb", 100, "a"))
	require.NoError(t, c.ZAdd(ctx, "lb", 200, "b"))
	require.NoError(t, c.ZAdd(ctx, "lb", 500, "a"))

	score, err := c.ZScore(ctx, "lb", "a")
	require.NoError(t, err)
	assert.Equal(t, 500.0, score)

	members, err := c.ZRevRange(ctx, "lb", 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, members)
}

func TestZSet_DelRemovesSet(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.ZAdd(ctx, "lb", 100, "a"))
	require.NoError(t, c.Del(ctx, "lb"))

	_, err := c.ZScore(ctx, "lb", "a")
	assert.ErrorIs(t, err, ErrNotFound)
}
