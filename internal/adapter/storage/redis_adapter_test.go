package storage

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getRedis(t *testing.T) *redis.Client {
	t.Helper()

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	return client
}

func TestLoad_MissingKey(t *testing.T) {
	client := getRedis(t)
	defer client.Close()

	adapter := NewRedisAdapter(client, fmt.Sprintf("test:processes:%d", time.Now().UnixNano()))

	raw, err := adapter.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	client := getRedis(t)
	defer client.Close()

	ctx := context.Background()
	key := fmt.Sprintf("test:processes:%d", time.Now().UnixNano())
	adapter := NewRedisAdapter(client, key)
	t.Cleanup(func() { client.Del(context.Background(), key) })

	payload := []byte(`[{"id":"p1","name":"Build","output_part_id":100}]`)
	require.NoError(t, adapter.Save(ctx, payload))

	raw, err := adapter.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, payload, raw)
}

func TestDefaultKey(t *testing.T) {
	adapter := NewRedisAdapter(nil, "")
	assert.Equal(t, DefaultProcessKey, adapter.key)
}
