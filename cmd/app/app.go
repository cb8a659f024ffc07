package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"

	"blogstats/internal/cache"
	"blogstats/internal/config"
	"blogstats/internal/database"
	"blogstats/internal/repository"
	"blogstats/internal/service"
	"blogstats/internal/storage"
)

type Components struct {
	DB       *database.DB
	Repo     *repository.Repository
	Services *service.Service
	redis    *redis.Client
}

// App connects the configured backends and builds the services. Redis and MinIO are optional.
func App(ctx context.Context, cfg *config.Config) (*Components, error) {
	// connection DB
	db, err := database.ConnectDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	c := &Components{DB: db}

	var sidebarCache cache.Cache
	if cfg.Redis.Enabled {
		rdb, err := cache.NewRedisClient(ctx, cfg)
		if err != nil {
			// the sidebar still works without the cache
			log.WithError(err).Warn("redis unavailable, sidebar caching disabled")
		} else {
			c.redis = rdb
			sidebarCache = cache.NewRedisCache(rdb)
		}
	}

	var store storage.Storage
	if cfg.MinIO.Enabled {
		minioClient, err := storage.NewMinIOClient(ctx, cfg)
		if err != nil {
			db.CloseDB()
			c.closeRedis()
			return nil, fmt.Errorf("failed to initialize MinIO: %w", err)
		}
		store = minioClient
	}

	// enabling dependencies
	c.Repo = repository.NewRepository(db.DB)
	c.Services = service.NewService(c.Repo, cfg, sidebarCache, store)

	return c, nil
}

func (c *Components) Close() {
	c.closeRedis()
	if err := c.DB.CloseDB(); err != nil {
		log.WithError(err).Warn("failed to close database")
	}
}

func (c *Components) closeRedis() {
	if c.redis == nil {
		return
	}
	if err := c.redis.Close(); err != nil {
		log.WithError(err).Warn("failed to close redis")
	}
}

// SetupLogger applies the configured level and format to the standard logrus logger.
func SetupLogger(cfg *config.Config) error {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	log.SetLevel(level)
	log.SetOutput(os.Stderr)

	if cfg.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return nil
}
