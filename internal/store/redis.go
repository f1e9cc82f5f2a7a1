package store

import (
	"context"
	stderrors "errors"

	"github.com/redis/go-redis/v9"

	"github.com/hpungsan/charsheet/internal/errors"
)

// RedisStore keeps each slot in one redis string key, without expiry.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore stores slots as prefix+key.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		if stderrors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, errors.NewStorage("read", err)
	}
	return data, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, blob []byte) error {
	if err := s.client.Set(ctx, s.prefix+key, blob, 0).Err(); err != nil {
		return errors.NewStorage("write", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return errors.NewStorage("clear", err)
	}
	return nil
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
