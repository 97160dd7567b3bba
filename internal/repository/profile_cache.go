package repository

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/aryan0dhankhar/tasktracker/internal/domain"
	"github.com/aryan0dhankhar/tasktracker/internal/infrastructure/redis"
	"github.com/aryan0dhankhar/tasktracker/pkg/cache"
)

const profileKeyPrefix = "profile:"

// RedisProfileCache stores public user profiles in Redis as JSON.
// Redis failures degrade to cache misses.
type RedisProfileCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisProfileCache creates a Redis-backed profile cache
func NewRedisProfileCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisProfileCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisProfileCache{client: client, ttl: ttl, logger: logger}
}

// Get returns the cached profile for userID
func (c *RedisProfileCache) Get(ctx context.Context, userID string) (domain.PublicUser, bool) {
	var profile domain.PublicUser
	raw, ok, err := c.client.Get(ctx, profileKeyPrefix+userID)
	if err != nil {
		c.logger.Warn("profile cache read failed",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return profile, false
	}
	if !ok {
		return profile, false
	}
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		c.logger.Warn("profile cache entry corrupt",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return profile, false
	}
	return profile, true
}

// Set stores profile under its id
func (c *RedisProfileCache) Set(ctx context.Context, profile domain.PublicUser) {
	data, err := json.Marshal(profile)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, profileKeyPrefix+profile.ID, data, c.ttl); err != nil {
		c.logger.Warn("profile cache write failed",
			slog.String("user_id", profile.ID),
			slog.String("error", err.Error()),
		)
	}
}

// MemoryProfileCache keeps profiles in process memory
type MemoryProfileCache struct {
	items *cache.Cache[domain.PublicUser]
	ttl   time.Duration
}

// NewMemoryProfileCache creates an in-process profile cache
func NewMemoryProfileCache(ttl time.Duration) *MemoryProfileCache {
	return &MemoryProfileCache{items: cache.New[domain.PublicUser](), ttl: ttl}
}

// Get returns the cached profile for userID
func (c *MemoryProfileCache) Get(_ context.Context, userID string) (domain.PublicUser, bool) {
	return c.items.Get(profileKeyPrefix + userID)
}

// Set stores profile under its id
func (c *MemoryProfileCache) Set(_ context.Context, profile domain.PublicUser) {
	c.items.Set(profileKeyPrefix+profile.ID, profile, c.ttl)
}
