package cart

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/grocerease/grocerease-backend/internal/config"
)

const cartKeyPrefix = "cart:"

// RedisSlot persists cart slots in Redis, one key per session, with a TTL so
// abandoned carts age out.
type RedisSlot struct {
	client *redis.Client
	ttl    time.Duration
}

var _ Slot = (*RedisSlot)(nil)

// NewRedisSlot connects a slot backend to Redis using the service config.
func NewRedisSlot(cfg config.RedisConfig) *RedisSlot {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &RedisSlot{client: client, ttl: cfg.CartTTL}
}

// NewRedisSlotWithClient wraps an existing client, used by tests.
func NewRedisSlotWithClient(client *redis.Client, ttl time.Duration) *RedisSlot {
	return &RedisSlot{client: client, ttl: ttl}
}

func (r *RedisSlot) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := r.client.Get(ctx, cartKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (r *RedisSlot) Set(ctx context.Context, key string, data []byte) error {
	return r.client.Set(ctx, cartKeyPrefix+key, data, r.ttl).Err()
}

func (r *RedisSlot) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, cartKeyPrefix+key).Err()
}

// Close releases the underlying client.
func (r *RedisSlot) Close() error {
	return r.client.Close()
}
