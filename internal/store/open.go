package store

import (
	"context"
	"fmt"
	"io"

	"github.com/redis/go-redis/v9"

	"github.com/hpungsan/charsheet/internal/config"
	"github.com/hpungsan/charsheet/internal/db"
	"github.com/hpungsan/charsheet/internal/errors"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open builds the BlobStore selected by cfg.StorageBackend. The returned closer
// releases the backend's connections.
func Open(ctx context.Context, cfg *config.Config, baseDir string) (BlobStore, io.Closer, error) {
	switch cfg.StorageBackend {
	case "", config.BackendSQLite:
		database, err := db.Init(baseDir)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		db.ConfigurePool(database, cfg)
		s := NewSQLiteStore(database)
		return s, s, nil

	case config.BackendFile:
		dir := cfg.ResolveFileDir(baseDir)
		if dir == "" {
			return nil, nil, errors.NewInvalidRequest("file_dir is required for the file backend")
		}
		return NewFileStore(dir), nopCloser{}, nil

	case config.BackendRedis:
		if cfg.RedisAddr == "" {
			return nil, nil, errors.NewInvalidRequest("redis_addr is required for the redis backend")
		}
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, errors.NewStorage("connect", err)
		}
		s := NewRedisStore(client, "charsheet:")
		return s, s, nil

	case config.BackendMemory:
		return NewMemoryStore(), nopCloser{}, nil
	}

	return nil, nil, errors.NewInvalidRequest(
		fmt.Sprintf("unknown storage backend %q (want sqlite, file, redis or memory)", cfg.StorageBackend))
}
