package storage

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// DefaultProcessKey is where the serialized process list lives.
const DefaultProcessKey = "processes:json"

// RedisAdapter persists the process list as a single serialized value
// under one key.
type RedisAdapter struct {
	client *redis.Client
	key    string
}

func NewRedisAdapter(client *redis.Client, key string) *RedisAdapter {
	if key == "" {
		key = DefaultProcessKey
	}
	return &RedisAdapter{client: client, key: key}
}

func (r *RedisAdapter) Load(ctx context.Context) ([]byte, error) {
	raw, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return raw, nil
}

func (r *RedisAdapter) Save(ctx context.Context, raw []byte) error {
	return r.client.Set(ctx, r.key, raw, 0).Err()
}
