package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aryan0dhankhar/tasktracker/internal/domain"
	"github.com/aryan0dhankhar/tasktracker/internal/infrastructure/redis"
)

func TestRedisProfileCache(t *testing.T) {
	s := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	c := NewRedisProfileCache(redis.Wrap(rdb), time.Minute, nil)
	ctx := context.Background()

	_, ok := c.Get(ctx, "u1")
	assert.False(t, ok)

	want := domain.PublicUser{ID: "u1", Username: "alice", Email: "a@x.io"}
	c.Set(ctx, want)

	got, ok := c.Get(ctx, "u1")
	require.True(t, ok)
	assert.Equal(t, want, got)
	assert.Equal(t, time.Minute, s.TTL("profile:u1"))

	s.FastForward(2 * time.Minute)
	_, ok = c.Get(ctx, "u1")
	assert.False(t, ok)
}

func TestRedisProfileCacheCorruptEntryIsMiss(t *testing.T) {
	s := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	require.NoError(t, s.Set("profile:u1", "{not json"))
	c := NewRedisProfileCache(redis.Wrap(rdb), time.Minute, nil)

	_, ok := c.Get(context.Background(), "u1")
	assert.False(t, ok)
}

func TestRedisProfileCacheOutageIsMiss(t *testing.T) {
	s := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: s.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	c := NewRedisProfileCache(redis.Wrap(rdb), time.Minute, nil)
	s.Close()

	c.Set(context.Background(), domain.PublicUser{ID: "u1"})
	_, ok := c.Get(context.Background(), "u1")
	assert.False(t, ok)
}

func TestMemoryProfileCache(t *testing.T) {
	c := NewMemoryProfileCache(time.Minute)
	ctx := context.Background()

	_, ok := c.Get(ctx, "u1")
	assert.False(t, ok)

	c.Set(ctx, domain.PublicUser{ID: "u1", Username: "alice"})
	got, ok := c.Get(ctx, "u1")
	require.True(t, ok)
	assert.Equal(t, "alice", got.Username)
}
