package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aryan0dhankhar/tasktracker/internal/domain"
	"github.com/aryan0dhankhar/tasktracker/internal/handler"
	"github.com/aryan0dhankhar/tasktracker/internal/infrastructure/mongo"
	"github.com/aryan0dhankhar/tasktracker/internal/infrastructure/redis"
	"github.com/aryan0dhankhar/tasktracker/internal/reliability/retry"
	"github.com/aryan0dhankhar/tasktracker/internal/repository"
	"github.com/aryan0dhankhar/tasktracker/internal/service"
	"github.com/aryan0dhankhar/tasktracker/pkg/config"
	"github.com/aryan0dhankhar/tasktracker/pkg/database"
)

// backends groups the repositories the services run on and the
// connections that must be closed on shutdown
type backends struct {
	users    domain.UserRepository
	tasks    domain.TaskRepository
	profiles service.ProfileCache
	checks   map[string]handler.Pinger
	closers  []func(context.Context) error
}

func openBackends(ctx context.Context, cfg *config.Config, log *slog.Logger) (*backends, error) {
	be := &backends{checks: map[string]handler.Pinger{}}

	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pool, err := retry.Do(ctx, retry.DefaultConfig(), log, "connect postgres",
			func(ctx context.Context) (*database.ConnectionPool, error) {
				return database.NewConnectionPool(ctx, &cfg.DB, log)
			})
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		be.closers = append(be.closers, func(context.Context) error { return pool.Close() })

		if err := pool.Migrate(ctx); err != nil {
			be.close(log)
			return nil, fmt.Errorf("migrate: %w", err)
		}
		be.users = repository.NewPostgresUserRepository(pool.GetDB(), log)
		be.tasks = repository.NewPostgresTaskRepository(pool.GetDB(), log)
		be.checks["postgres"] = pool

	case config.DriverMongo:
		client, err := retry.Do(ctx, retry.DefaultConfig(), log, "connect mongo",
			func(ctx context.Context) (*mongo.Client, error) {
				return mongo.NewClient(ctx, cfg.MongoURI, cfg.MongoDatabase, log)
			})
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		be.closers = append(be.closers, client.Close)

		users := repository.NewMongoUserRepository(client.Database(), log)
		tasks := repository.NewMongoTaskRepository(client.Database(), log)
		if err := users.EnsureIndexes(ctx); err != nil {
			be.close(log)
			return nil, fmt.Errorf("user indexes: %w", err)
		}
		if err := tasks.EnsureIndexes(ctx); err != nil {
			be.close(log)
			return nil, fmt.Errorf("task indexes: %w", err)
		}
		be.users, be.tasks = users, tasks
		be.checks["mongo"] = client

	default:
		log.Warn("using in-memory store, data is lost on restart")
		be.users = repository.NewMemoryUserRepository()
		be.tasks = repository.NewMemoryTaskRepository()
	}

	if cfg.RedisURL == "" {
		be.profiles = repository.NewMemoryProfileCache(cfg.ProfileCacheTTL)
		return be, nil
	}

	rdb, err := retry.Do(ctx, retry.DefaultConfig(), log, "connect redis",
		func(ctx context.Context) (*redis.Client, error) {
			return redis.NewClient(ctx, cfg.RedisURL)
		})
	if err != nil {
		be.close(log)
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	be.closers = append(be.closers, func(context.Context) error { return rdb.Close() })
	be.profiles = repository.NewRedisProfileCache(rdb, cfg.ProfileCacheTTL, log)
	be.checks["redis"] = rdb

	return be, nil
}

func (b *backends) close(log *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](ctx); err != nil {
			log.Warn("closing backend failed", slog.String("error", err.Error()))
		}
	}
	b.closers = nil
}
