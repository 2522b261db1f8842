package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pkordes/haul-slips/internal/domain"
)

// keyPrefix namespaces lookup entries in a shared Redis database.
const keyPrefix = "haulslips:lookup:"

// Redis is a Store backed by Redis, for deployments that run several server
// instances against one upstream. Expiry is delegated to the Redis key TTL.
type Redis struct {
	rdb *redis.Client
}

// RedisConfig holds the connection settings for NewRedis.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedis connects to Redis and verifies the connection with a PING.
func NewRedis(ctx context.Context, cfg RedisConfig) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("cache.NewRedis: ping %s: %w", cfg.Addr, err)
	}
	return &Redis{rdb: rdb}, nil
}

func (r *Redis) Get(ctx context.Context, key string) ([]domain.LookupItem, bool, error) {
	data, err := r.rdb.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache.Redis.Get: %w", err)
	}

	var items []domain.LookupItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, false, fmt.Errorf("cache.Redis.Get: decode %s: %w", key, err)
	}
	return items, true, nil
}

func (r *Redis) Put(ctx context.Context, key string, items []domain.LookupItem, ttl time.Duration) error {
	if ttl <= 0 {
		// A zero expiration would make the key permanent in Redis.
		return r.rdb.Del(ctx, keyPrefix+key).Err()
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("cache.Redis.Put: encode %s: %w", key, err)
	}
	if err := r.rdb.Set(ctx, keyPrefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("cache.Redis.Put: %w", err)
	}
	return nil
}

// Close releases the Redis connection pool.
func (r *Redis) Close() error {
	return r.rdb.Close()
}
